package archive

import (
	"context"
	"fmt"
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

// DefaultExpiryThresholdDays is the "expiring soon" horizon
const DefaultExpiryThresholdDays = 7

// CreateInput carries the optional metadata recorded alongside a transcript
type CreateInput struct {
	AudioURL *string
	Duration *int
	Language string
}

// UpdateInput is a partial update; nil fields are left untouched. The word
// count is recomputed only when the transcript itself changes.
type UpdateInput struct {
	Transcript *string
	Language   *string
	Duration   *int
}

// CleanupResult reports a retention sweep
type CleanupResult struct {
	DeletedCount int      `json:"deletedCount"`
	Errors       []string `json:"errors"`
}

// ExportResult is a rendered transcript export
type ExportResult struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ObjectExporter uploads rendered exports to object storage
type ObjectExporter interface {
	UploadText(ctx context.Context, objectName string, content string) error
	ObjectURL(objectName string) string
}

// Service manages the transcript archive lifecycle: creation, retention,
// search, and export.
type Service struct {
	archiveRepo   repositories.ArchiveRepository
	standupRepo   repositories.StandupRepository
	exporter      ObjectExporter
	retentionDays int
	expiryDays    int
	logger        *zap.Logger
}

// NewService creates the archive service. The exporter may be nil when object
// storage is not configured; ExportToObjectStore then returns an error. A nil
// cleanup config falls back to the default retention and expiry windows.
func NewService(archiveRepo repositories.ArchiveRepository, standupRepo repositories.StandupRepository, exporter ObjectExporter, cfg *config.CleanupConfig, logger *zap.Logger) *Service {
	retentionDays := entities.DefaultRetentionDays
	expiryDays := DefaultExpiryThresholdDays
	if cfg != nil {
		if cfg.RetentionDays > 0 {
			retentionDays = cfg.RetentionDays
		}
		if cfg.ExpiryThreshold > 0 {
			expiryDays = cfg.ExpiryThreshold
		}
	}
	return &Service{
		archiveRepo:   archiveRepo,
		standupRepo:   standupRepo,
		exporter:      exporter,
		retentionDays: retentionDays,
		expiryDays:    expiryDays,
		logger:        logger,
	}
}

// Create archives a transcript for a standup. Each standup holds at most one
// archive; a second create surfaces ErrArchiveExists.
func (s *Service) Create(ctx context.Context, standupID uuid.UUID, transcript string, in CreateInput) (*entities.TranscriptArchive, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, usecaseErrors.ErrEmptyTranscript
	}

	archive := entities.NewTranscriptArchive(standupID, transcript, s.retentionDays)
	archive.AudioURL = in.AudioURL
	archive.Duration = in.Duration
	if in.Language != "" {
		archive.Language = in.Language
	}

	if err := s.archiveRepo.Create(ctx, archive); err != nil {
		return nil, err
	}

	s.logger.Info("archived transcript",
		zap.String("standup_id", standupID.String()),
		zap.Int("word_count", archive.WordCount),
		zap.Time("expires_at", archive.ExpiresAt),
	)
	return archive, nil
}

// GetByStandupID returns the standup's archive or ErrArchiveNotFound
func (s *Service) GetByStandupID(ctx context.Context, standupID uuid.UUID) (*entities.TranscriptArchive, error) {
	archive, err := s.archiveRepo.FindByStandupID(ctx, standupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive: %w", err)
	}
	if archive == nil {
		return nil, entities.ErrArchiveNotFound
	}
	return archive, nil
}

// Update applies a partial update. A changed transcript gets its word count
// recomputed; metadata-only updates never touch the count.
func (s *Service) Update(ctx context.Context, standupID uuid.UUID, in UpdateInput) (*entities.TranscriptArchive, error) {
	archive, err := s.GetByStandupID(ctx, standupID)
	if err != nil {
		return nil, err
	}

	if in.Transcript != nil {
		if strings.TrimSpace(*in.Transcript) == "" {
			return nil, usecaseErrors.ErrEmptyTranscript
		}
		archive.Transcript = *in.Transcript
		archive.WordCount = entities.CountWords(*in.Transcript)
	}
	if in.Language != nil {
		archive.Language = *in.Language
	}
	if in.Duration != nil {
		archive.Duration = in.Duration
	}

	if err := s.archiveRepo.Update(ctx, archive); err != nil {
		return nil, fmt.Errorf("failed to update archive: %w", err)
	}
	return archive, nil
}

// Delete removes the standup's archive
func (s *Service) Delete(ctx context.Context, standupID uuid.UUID) error {
	if _, err := s.GetByStandupID(ctx, standupID); err != nil {
		return err
	}
	if err := s.archiveRepo.Delete(ctx, standupID); err != nil {
		return fmt.Errorf("failed to delete archive: %w", err)
	}
	return nil
}

// ExtendRetention pushes the archive's expiry out by the given number of days
// from its current deadline. Repeated extensions compound.
func (s *Service) ExtendRetention(ctx context.Context, standupID uuid.UUID, additionalDays int) (*entities.TranscriptArchive, error) {
	if additionalDays <= 0 {
		return nil, usecaseErrors.ErrInvalidDays
	}
	archive, err := s.GetByStandupID(ctx, standupID)
	if err != nil {
		return nil, err
	}

	archive.ExtendRetention(additionalDays)
	if err := s.archiveRepo.Update(ctx, archive); err != nil {
		return nil, fmt.Errorf("failed to extend retention: %w", err)
	}

	s.logger.Info("extended transcript retention",
		zap.String("standup_id", standupID.String()),
		zap.Int("additional_days", additionalDays),
		zap.Time("expires_at", archive.ExpiresAt),
	)
	return archive, nil
}

// CleanupExpired deletes archives past their retention deadline. A failure on
// one archive is recorded and the sweep continues.
func (s *Service) CleanupExpired(ctx context.Context) (*CleanupResult, error) {
	expired, err := s.archiveRepo.FindExpired(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to find expired archives: %w", err)
	}

	result := &CleanupResult{Errors: []string{}}
	for _, archive := range expired {
		if err := s.archiveRepo.DeleteByID(ctx, archive.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", archive.ID, err))
			continue
		}
		result.DeletedCount++
	}

	if result.DeletedCount > 0 || len(result.Errors) > 0 {
		s.logger.Info("transcript retention sweep finished",
			zap.Int("deleted", result.DeletedCount),
			zap.Int("errors", len(result.Errors)),
		)
	}
	return result, nil
}

// GetExpiringSoon lists archives expiring within the threshold, soonest
// first. labID narrows the scope when given.
func (s *Service) GetExpiringSoon(ctx context.Context, labID *uuid.UUID, days int) ([]*entities.TranscriptArchive, error) {
	if days <= 0 {
		days = s.expiryDays
	}
	now := time.Now()
	archives, err := s.archiveRepo.FindExpiringBetween(ctx, labID, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring archives: %w", err)
	}
	return archives, nil
}

// Search runs a case-insensitive substring search over archived transcripts.
// Expired archives are excluded unless opts.IncludeExpired is set.
func (s *Service) Search(ctx context.Context, term string, opts repositories.ArchiveSearchOptions) ([]*entities.TranscriptArchive, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, usecaseErrors.ErrInvalidInput
	}
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}
	return s.archiveRepo.Search(ctx, term, opts)
}

// ExportTranscript renders a plain-text export of the archive together with
// the standup's metadata.
func (s *Service) ExportTranscript(ctx context.Context, standupID uuid.UUID) (*ExportResult, error) {
	archive, err := s.GetByStandupID(ctx, standupID)
	if err != nil {
		return nil, err
	}
	standup, err := s.standupRepo.FindByIDWithRelations(ctx, standupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load standup: %w", err)
	}
	if standup == nil {
		return nil, entities.ErrStandupNotFound
	}

	labName := "unknown"
	if standup.Lab != nil {
		labName = standup.Lab.Name
	}

	var b strings.Builder
	b.WriteString("STANDUP TRANSCRIPT\n")
	b.WriteString("==================\n\n")
	fmt.Fprintf(&b, "Standup ID: %s\n", standup.ID)
	fmt.Fprintf(&b, "Lab:        %s\n", labName)
	fmt.Fprintf(&b, "Date:       %s\n", standup.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Word count: %d\n", archive.WordCount)
	fmt.Fprintf(&b, "Archived:   %s\n", archive.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Expires:    %s\n", archive.ExpiresAt.Format(time.RFC3339))
	b.WriteString("\n------------------\n\n")
	b.WriteString(archive.Transcript)
	b.WriteString("\n")

	return &ExportResult{
		Filename: fmt.Sprintf("standup-transcript-%s.txt", standupID),
		Content:  b.String(),
	}, nil
}

// ExportToObjectStore renders the export and uploads it to object storage,
// returning the object URL.
func (s *Service) ExportToObjectStore(ctx context.Context, standupID uuid.UUID) (string, error) {
	if s.exporter == nil {
		return "", fmt.Errorf("object storage is not configured")
	}
	export, err := s.ExportTranscript(ctx, standupID)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("exports/%s.txt", standupID)
	if err := s.exporter.UploadText(ctx, objectName, export.Content); err != nil {
		return "", fmt.Errorf("failed to upload transcript export: %w", err)
	}

	url := s.exporter.ObjectURL(objectName)
	s.logger.Info("exported transcript to object storage",
		zap.String("standup_id", standupID.String()),
		zap.String("object", objectName),
	)
	return url, nil
}

// Stats aggregates archive numbers, optionally scoped to a lab
func (s *Service) Stats(ctx context.Context, labID *uuid.UUID) (*repositories.ArchiveStats, error) {
	return s.archiveRepo.Stats(ctx, labID, s.expiryDays)
}

var _ ObjectExporter = (*storage.MinIOClient)(nil)
