package audio

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
	"github.com/labops-team/standup-assistant/internal/domain/repositories"
	"github.com/labops-team/standup-assistant/internal/infrastructure/storage"
	usecaseErrors "github.com/labops-team/standup-assistant/internal/usecase/errors"
	"github.com/labops-team/standup-assistant/pkg/config"
)

// extensionByMimeType maps accepted audio MIME types to stored file
// extensions. Unlisted but accepted subtypes fall back to webm, the format
// browsers record in by default.
var extensionByMimeType = map[string]string{
	"audio/webm":  "webm",
	"audio/mp4":   "m4a",
	"audio/mpeg":  "mp3",
	"audio/wav":   "wav",
	"audio/ogg":   "ogg",
	"audio/x-m4a": "m4a",
}

// StoredAudio describes a persisted audio file
type StoredAudio struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// AudioInfo is the lookup result for a standup's audio. Exists is false when
// the standup has no audio attached or the file is gone from disk.
type AudioInfo struct {
	Exists   bool   `json:"exists"`
	Filename string `json:"filename,omitempty"`
	Path     string `json:"path,omitempty"`
	URL      string `json:"url,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// CleanupResult reports an orphan sweep: how many files were removed and
// which removals failed. A partial failure does not abort the sweep.
type CleanupResult struct {
	DeletedCount int      `json:"deletedCount"`
	Errors       []string `json:"errors"`
}

// AudioStats aggregates the stored audio footprint
type AudioStats struct {
	TotalFiles        int     `json:"totalFiles"`
	TotalSizeBytes    int64   `json:"totalSizeBytes"`
	AvgSizeBytes      float64 `json:"avgSizeBytes"`
	TotalStandups     int64   `json:"totalStandups"`
	StandupsWithAudio int64   `json:"standupsWithAudio"`
}

// Service owns standup audio files: validation, storage under the content
// directory, URL bookkeeping on the standup row, and orphan cleanup.
type Service struct {
	store       *storage.LocalStore
	standupRepo repositories.StandupRepository
	publicPath  string
	maxSize     int64
	logger      *zap.Logger
}

// NewService creates the audio service
func NewService(store *storage.LocalStore, standupRepo repositories.StandupRepository, cfg *config.AudioConfig, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		standupRepo: standupRepo,
		publicPath:  strings.TrimSuffix(cfg.PublicPath, "/"),
		maxSize:     cfg.MaxSizeBytes,
		logger:      logger,
	}
}

// Validate rejects audio that is empty, over the size ceiling, or of an
// unsupported MIME type. A payload exactly at the ceiling is accepted. An
// empty MIME type is accepted deliberately: browser recorders routinely omit
// the Content-Type, and those uploads are stored as webm, the format browsers
// record in by default.
func (s *Service) Validate(size int64, mimeType string) error {
	if size == 0 {
		return usecaseErrors.ErrEmptyAudioBuffer
	}
	if size > s.maxSize {
		return fmt.Errorf("%w: audio file exceeds the %dMB limit",
			usecaseErrors.ErrAudioTooLarge, s.maxSize/(1024*1024))
	}
	if _, ok := extensionByMimeType[normalizeMimeType(mimeType)]; !ok && mimeType != "" {
		return fmt.Errorf("%w: %s", usecaseErrors.ErrUnsupportedMimeType, mimeType)
	}
	return nil
}

// Store validates and persists an audio buffer for a standup, names it
// {standupID}-{epochMillis}.{ext}, and records the public URL on the standup.
func (s *Service) Store(ctx context.Context, standupID uuid.UUID, data []byte, mimeType string) (*StoredAudio, error) {
	if err := s.Validate(int64(len(data)), mimeType); err != nil {
		return nil, err
	}

	standup, err := s.standupRepo.FindByID(ctx, standupID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up standup: %w", err)
	}
	if standup == nil {
		return nil, entities.ErrStandupNotFound
	}

	filename := fmt.Sprintf("%s-%d.%s", standupID, time.Now().UnixMilli(), extensionFor(mimeType))
	if err := s.store.Write(filename, data); err != nil {
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}

	url := s.publicPath + "/" + filename
	if err := s.standupRepo.UpdateAudioURL(ctx, standupID, &url); err != nil {
		// The file is already on disk; remove it so a failed update does not
		// leave an orphan behind.
		if rmErr := s.store.Remove(filename); rmErr != nil {
			s.logger.Warn("failed to remove audio after url update failure",
				zap.String("filename", filename), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("failed to record audio url: %w", err)
	}

	s.logger.Info("stored standup audio",
		zap.String("standup_id", standupID.String()),
		zap.String("filename", filename),
		zap.Int("size_bytes", len(data)),
	)

	return &StoredAudio{Filename: filename, URL: url, Size: int64(len(data))}, nil
}

// StoreFromBase64 decodes a base64 payload (with or without a data-URL
// prefix) and stores it like Store.
func (s *Service) StoreFromBase64(ctx context.Context, standupID uuid.UUID, encoded, mimeType string) (*StoredAudio, error) {
	data, mimeType, err := DecodeBase64(encoded, mimeType)
	if err != nil {
		return nil, err
	}
	return s.Store(ctx, standupID, data, mimeType)
}

// DecodeBase64 decodes a base64 audio payload, stripping a data-URL prefix
// when present. The prefix's MIME type is used only when none was supplied.
func DecodeBase64(encoded, mimeType string) ([]byte, string, error) {
	if idx := strings.Index(encoded, ";base64,"); idx != -1 {
		if mimeType == "" && strings.HasPrefix(encoded, "data:") {
			mimeType = encoded[len("data:"):idx]
		}
		encoded = encoded[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", usecaseErrors.ErrInvalidBase64, err)
	}
	return data, mimeType, nil
}

// Retrieve looks up a standup's audio. Absence is a normal result, not an
// error: Exists is false when no audio was ever attached or the file was
// cleaned up.
func (s *Service) Retrieve(ctx context.Context, standupID uuid.UUID) (*AudioInfo, error) {
	standup, err := s.standupRepo.FindByID(ctx, standupID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up standup: %w", err)
	}
	if standup == nil {
		return nil, entities.ErrStandupNotFound
	}
	if standup.AudioURL == nil || *standup.AudioURL == "" {
		return &AudioInfo{Exists: false}, nil
	}

	filename := path.Base(*standup.AudioURL)
	if !s.store.Exists(filename) {
		return &AudioInfo{Exists: false, Filename: filename, URL: *standup.AudioURL}, nil
	}
	size, err := s.store.Size(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat audio file: %w", err)
	}
	return &AudioInfo{
		Exists:   true,
		Filename: filename,
		Path:     s.store.Path(filename),
		URL:      *standup.AudioURL,
		Size:     size,
	}, nil
}

// Delete removes a standup's audio file and clears the stored URL. The file
// removal is best effort; a missing file still clears the URL.
func (s *Service) Delete(ctx context.Context, standupID uuid.UUID) error {
	standup, err := s.standupRepo.FindByID(ctx, standupID)
	if err != nil {
		return fmt.Errorf("failed to look up standup: %w", err)
	}
	if standup == nil {
		return entities.ErrStandupNotFound
	}
	if standup.AudioURL == nil || *standup.AudioURL == "" {
		return nil
	}

	filename := path.Base(*standup.AudioURL)
	if err := s.store.Remove(filename); err != nil {
		s.logger.Warn("failed to remove audio file",
			zap.String("filename", filename), zap.Error(err))
	}
	if err := s.standupRepo.UpdateAudioURL(ctx, standupID, nil); err != nil {
		return fmt.Errorf("failed to clear audio url: %w", err)
	}
	return nil
}

// DeleteFile removes a stored file by name without touching any standup row.
// Used when a soft-deleted standup's audio must go but the row keeps its URL
// for audit.
func (s *Service) DeleteFile(filename string) error {
	return s.store.Remove(filename)
}

// CleanupOrphans removes files in the content directory that no active
// standup references. Individual removal failures are collected, not fatal.
func (s *Service) CleanupOrphans(ctx context.Context) (*CleanupResult, error) {
	files, err := s.store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list audio files: %w", err)
	}

	urls, err := s.standupRepo.ActiveAudioURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load referenced audio urls: %w", err)
	}
	referenced := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		referenced[path.Base(u)] = struct{}{}
	}

	result := &CleanupResult{Errors: []string{}}
	for _, name := range files {
		if _, ok := referenced[name]; ok {
			continue
		}
		if err := s.store.Remove(name); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		result.DeletedCount++
	}

	if result.DeletedCount > 0 || len(result.Errors) > 0 {
		s.logger.Info("audio orphan sweep finished",
			zap.Int("deleted", result.DeletedCount),
			zap.Int("errors", len(result.Errors)),
		)
	}
	return result, nil
}

// Stats reports the audio footprint over files referenced by active standups,
// so orphans awaiting a sweep do not inflate the numbers. Referenced files
// missing from disk are skipped.
func (s *Service) Stats(ctx context.Context) (*AudioStats, error) {
	urls, err := s.standupRepo.ActiveAudioURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load referenced audio urls: %w", err)
	}

	stats := &AudioStats{}
	for _, u := range urls {
		size, err := s.store.Size(path.Base(u))
		if err != nil {
			continue
		}
		stats.TotalFiles++
		stats.TotalSizeBytes += size
	}
	if stats.TotalFiles > 0 {
		stats.AvgSizeBytes = float64(stats.TotalSizeBytes) / float64(stats.TotalFiles)
	}

	total, withAudio, err := s.standupRepo.CountWithAudio(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count standups: %w", err)
	}
	stats.TotalStandups = total
	stats.StandupsWithAudio = withAudio

	return stats, nil
}

// extensionFor maps a MIME type to its stored extension, defaulting to webm
func extensionFor(mimeType string) string {
	if ext, ok := extensionByMimeType[normalizeMimeType(mimeType)]; ok {
		return ext
	}
	return "webm"
}

// normalizeMimeType drops codec parameters ("audio/webm;codecs=opus") and
// normalizes case.
func normalizeMimeType(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
