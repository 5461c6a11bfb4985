package standup

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
	"github.com/labops-team/standup-assistant/internal/domain/repositories"
	"github.com/labops-team/standup-assistant/internal/usecase/archive"
	"github.com/labops-team/standup-assistant/internal/usecase/audio"
	usecaseErrors "github.com/labops-team/standup-assistant/internal/usecase/errors"
	"github.com/labops-team/standup-assistant/pkg/ai"
)

// Stage names the pipeline step a processing failure occurred in
type Stage string

const (
	StageStoreAudio Stage = "store_audio"
	StageTranscribe Stage = "transcribe"
	StageArchive    Stage = "archive"
	StageExtract    Stage = "extract"
	StagePersist    Stage = "persist"
)

// StageError tags a pipeline failure with the step it happened in, so the
// caller can tell a rejected upload from a dead transcription provider from a
// broken database.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Transcriber converts audio bytes to transcript text
type Transcriber interface {
	Transcribe(ctx context.Context, audioData []byte, filename string, opts ai.TranscribeOptions) (*ai.TranscriptionResult, error)
}

// Extractor turns a transcript into the raw extraction model response
type Extractor interface {
	GenerateStandupExtraction(ctx context.Context, transcript string) (string, error)
}

// AudioStore persists and removes standup audio
type AudioStore interface {
	Store(ctx context.Context, standupID uuid.UUID, data []byte, mimeType string) (*audio.StoredAudio, error)
	DeleteFile(filename string) error
}

// Archiver manages transcript archives for the pipeline
type Archiver interface {
	Create(ctx context.Context, standupID uuid.UUID, transcript string, in archive.CreateInput) (*entities.TranscriptArchive, error)
	GetByStandupID(ctx context.Context, standupID uuid.UUID) (*entities.TranscriptArchive, error)
	Search(ctx context.Context, term string, opts repositories.ArchiveSearchOptions) ([]*entities.TranscriptArchive, error)
}

// Locker serializes processing runs per standup
type Locker interface {
	Acquire(ctx context.Context, standupID uuid.UUID) (bool, error)
	Release(ctx context.Context, standupID uuid.UUID) error
}

// ProcessResult is the outcome of a full pipeline run
type ProcessResult struct {
	Standup *entities.Standup           `json:"standup"`
	Archive *entities.TranscriptArchive `json:"archive"`
	Summary string                      `json:"summary"`
}

// Service orchestrates the standup processing pipeline and the standup CRUD
// operations around it.
type Service struct {
	standupRepo  repositories.StandupRepository
	artifactRepo repositories.ArtifactRepository
	userRepo     repositories.UserRepository
	audioStore   AudioStore
	archiver     Archiver
	transcriber  Transcriber
	extractor    Extractor
	parser       *Parser
	lock         Locker
	maxRetries   uint64
	logger       *zap.Logger
}

// NewService creates the standup orchestrator
func NewService(
	standupRepo repositories.StandupRepository,
	artifactRepo repositories.ArtifactRepository,
	userRepo repositories.UserRepository,
	audioStore AudioStore,
	archiver Archiver,
	transcriber Transcriber,
	extractor Extractor,
	lock Locker,
	maxRetries uint64,
	logger *zap.Logger,
) *Service {
	return &Service{
		standupRepo:  standupRepo,
		artifactRepo: artifactRepo,
		userRepo:     userRepo,
		audioStore:   audioStore,
		archiver:     archiver,
		transcriber:  transcriber,
		extractor:    extractor,
		parser:       NewParser(),
		lock:         lock,
		maxRetries:   maxRetries,
		logger:       logger,
	}
}

// ProcessAudio runs the full pipeline for a standup: store the audio,
// transcribe it, archive the transcript, extract artifacts, and persist them
// in one transaction. Each stage commits before the next runs; a failure
// leaves the completed stages in place (stored audio survives a transcription
// failure, the archive survives an extraction failure) so a later retry can
// resume from the transcript instead of re-uploading.
func (s *Service) ProcessAudio(ctx context.Context, standupID uuid.UUID, audioData []byte, mimeType string) (*ProcessResult, error) {
	acquired, err := s.lock.Acquire(ctx, standupID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire processing lock: %w", err)
	}
	if !acquired {
		return nil, entities.ErrProcessingLocked
	}
	defer func() {
		if err := s.lock.Release(ctx, standupID); err != nil {
			s.logger.Warn("failed to release processing lock",
				zap.String("standup_id", standupID.String()), zap.Error(err))
		}
	}()

	standup, err := s.standupRepo.FindByID(ctx, standupID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up standup: %w", err)
	}
	if standup == nil {
		return nil, entities.ErrStandupNotFound
	}

	stored, err := s.audioStore.Store(ctx, standupID, audioData, mimeType)
	if err != nil {
		return nil, &StageError{Stage: StageStoreAudio, Err: err}
	}

	transcription, err := s.transcriber.Transcribe(ctx, audioData, stored.Filename, ai.TranscribeOptions{})
	if err != nil {
		// The stored audio stays; a retry can re-transcribe without a new
		// upload.
		return nil, &StageError{Stage: StageTranscribe, Err: err}
	}

	arch, err := s.archiver.Create(ctx, standupID, transcription.Transcript, archive.CreateInput{
		AudioURL: &stored.URL,
		Duration: transcription.Duration,
		Language: transcription.Language,
	})
	if err != nil {
		return nil, &StageError{Stage: StageArchive, Err: err}
	}

	extraction, err := s.runExtraction(ctx, transcription.Transcript)
	if err != nil {
		// Audio and archive are already durable; this is the documented
		// partial state ReprocessExtraction recovers from.
		return nil, &StageError{Stage: StageExtract, Err: err}
	}

	loaded, err := s.persistExtraction(ctx, standupID, extraction)
	if err != nil {
		return nil, &StageError{Stage: StagePersist, Err: err}
	}

	s.logger.Info("standup pipeline completed",
		zap.String("standup_id", standupID.String()),
		zap.Int("word_count", arch.WordCount),
		zap.Int("action_items", len(extraction.ActionItems)),
		zap.Int("blockers", len(extraction.Blockers)),
		zap.Int("decisions", len(extraction.Decisions)),
	)

	return &ProcessResult{Standup: loaded, Archive: arch, Summary: extraction.Summary}, nil
}

// ReprocessExtraction re-runs extraction and persistence from the archived
// transcript, recovering a standup stuck in the audio+archive partial state
// without another upload or transcription.
func (s *Service) ReprocessExtraction(ctx context.Context, standupID uuid.UUID) (*ProcessResult, error) {
	acquired, err := s.lock.Acquire(ctx, standupID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire processing lock: %w", err)
	}
	if !acquired {
		return nil, entities.ErrProcessingLocked
	}
	defer func() {
		if err := s.lock.Release(ctx, standupID); err != nil {
			s.logger.Warn("failed to release processing lock",
				zap.String("standup_id", standupID.String()), zap.Error(err))
		}
	}()

	arch, err := s.archiver.GetByStandupID(ctx, standupID)
	if err != nil {
		return nil, err
	}

	extraction, err := s.runExtraction(ctx, arch.Transcript)
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}

	loaded, err := s.persistExtraction(ctx, standupID, extraction)
	if err != nil {
		return nil, &StageError{Stage: StagePersist, Err: err}
	}

	return &ProcessResult{Standup: loaded, Archive: arch, Summary: extraction.Summary}, nil
}

// runExtraction calls the extraction model with bounded retries. A malformed
// response counts as a failure and is retried like a transport error.
func (s *Service) runExtraction(ctx context.Context, transcript string) (*entities.StandupExtraction, error) {
	operation := func() (*entities.StandupExtraction, error) {
		raw, err := s.extractor.GenerateStandupExtraction(ctx, transcript)
		if err != nil {
			return nil, err
		}
		return s.parser.ParseExtraction(raw)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries), ctx)
	extraction, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		return nil, fmt.Errorf("extraction failed after retries: %w", err)
	}
	return extraction, nil
}

// persistExtraction maps extraction output to entities and saves them in one
// transaction. Extracted participant names replace the existing set, never
// merge into it; an extraction that named nobody leaves the set alone.
func (s *Service) persistExtraction(ctx context.Context, standupID uuid.UUID, extraction *entities.StandupExtraction) (*entities.Standup, error) {
	artifacts := repositories.ExtractionArtifacts{}
	if len(extraction.Participants) > 0 {
		// A non-nil set replaces the stored participants wholesale; when the
		// extraction named nobody the existing set stays untouched.
		artifacts.ParticipantUserIDs = make([]uuid.UUID, 0, len(extraction.Participants))
	}

	// The normalized document is kept on the standup row; a marshal failure
	// here only costs the audit copy, never the artifacts.
	if raw, err := json.Marshal(extraction); err == nil {
		artifacts.RawExtraction = datatypes.JSON(raw)
	} else {
		s.logger.Warn("failed to encode extraction document",
			zap.String("standup_id", standupID.String()), zap.Error(err))
	}

	for _, item := range extraction.ActionItems {
		actionItem := entities.NewActionItem(standupID, item.Description)
		if user := s.resolveUserByName(ctx, item.Assignee); user != nil {
			actionItem.AssigneeID = &user.ID
		}
		if item.DueDate != "" {
			if due, err := time.Parse("2006-01-02", item.DueDate); err == nil {
				actionItem.DueDate = &due
			} else {
				s.logger.Warn("ignoring unparseable due date",
					zap.String("standup_id", standupID.String()),
					zap.String("due_date", item.DueDate))
			}
		}
		artifacts.ActionItems = append(artifacts.ActionItems, actionItem)
	}

	for _, b := range extraction.Blockers {
		blocker := entities.NewBlocker(standupID, b.Description)
		blocker.Resolved = b.Resolved
		artifacts.Blockers = append(artifacts.Blockers, blocker)
	}

	for _, d := range extraction.Decisions {
		artifacts.Decisions = append(artifacts.Decisions, entities.NewDecision(standupID, d.Description))
	}

	seen := make(map[uuid.UUID]struct{})
	for _, name := range extraction.Participants {
		user := s.resolveUserByName(ctx, name)
		if user == nil {
			s.logger.Info("participant name did not resolve to a user",
				zap.String("standup_id", standupID.String()),
				zap.String("name", name))
			continue
		}
		if _, ok := seen[user.ID]; ok {
			continue
		}
		seen[user.ID] = struct{}{}
		artifacts.ParticipantUserIDs = append(artifacts.ParticipantUserIDs, user.ID)
	}

	return s.artifactRepo.SaveExtraction(ctx, standupID, artifacts)
}

// resolveUserByName resolves a free-text name to a user: exact full-name
// match first, then first-name match. No match means unassigned, never an
// error.
func (s *Service) resolveUserByName(ctx context.Context, name string) *entities.User {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	user, err := s.userRepo.FindByName(ctx, name)
	if err != nil {
		s.logger.Warn("user lookup by name failed", zap.String("name", name), zap.Error(err))
		return nil
	}
	if user != nil {
		return user
	}

	firstName := strings.Fields(name)[0]
	user, err = s.userRepo.FindByFirstName(ctx, firstName)
	if err != nil {
		s.logger.Warn("user lookup by first name failed", zap.String("name", firstName), zap.Error(err))
		return nil
	}
	return user
}

// CreateStandup registers a standup instance for a lab meeting
func (s *Service) CreateStandup(ctx context.Context, labID uuid.UUID, date time.Time) (*entities.Standup, error) {
	standup := entities.NewStandup(labID, date)
	if err := s.standupRepo.Create(ctx, standup); err != nil {
		return nil, fmt.Errorf("failed to create standup: %w", err)
	}
	return standup, nil
}

// GetStandupByID loads a standup with all relations
func (s *Service) GetStandupByID(ctx context.Context, id uuid.UUID) (*entities.Standup, error) {
	standup, err := s.standupRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load standup: %w", err)
	}
	if standup == nil {
		return nil, entities.ErrStandupNotFound
	}
	return standup, nil
}

// GetStandupsByLab pages through a lab's standups
func (s *Service) GetStandupsByLab(ctx context.Context, labID uuid.UUID, opts repositories.StandupListOptions) ([]*entities.Standup, int64, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}
	switch opts.OrderBy {
	case "":
		opts.OrderBy = "date"
	case "date", "created_at":
	default:
		return nil, 0, usecaseErrors.ErrInvalidOrderBy
	}
	return s.standupRepo.FindByLab(ctx, labID, opts)
}

// UpdateStandup changes a standup's meeting date
func (s *Service) UpdateStandup(ctx context.Context, id uuid.UUID, date time.Time) (*entities.Standup, error) {
	standup, err := s.standupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up standup: %w", err)
	}
	if standup == nil {
		return nil, entities.ErrStandupNotFound
	}

	standup.Date = date
	if err := s.standupRepo.Update(ctx, standup); err != nil {
		return nil, fmt.Errorf("failed to update standup: %w", err)
	}
	return standup, nil
}

// DeleteStandup soft-deletes the standup row and hard-deletes its audio file.
// Returns false when the standup does not exist; the audio removal is best
// effort and never blocks the delete.
func (s *Service) DeleteStandup(ctx context.Context, id uuid.UUID) (bool, error) {
	standup, err := s.standupRepo.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to look up standup: %w", err)
	}
	if standup == nil {
		return false, nil
	}

	if err := s.standupRepo.SoftDelete(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete standup: %w", err)
	}

	if standup.AudioURL != nil && *standup.AudioURL != "" {
		filename := baseName(*standup.AudioURL)
		if err := s.audioStore.DeleteFile(filename); err != nil {
			s.logger.Warn("failed to remove audio for deleted standup",
				zap.String("standup_id", id.String()),
				zap.String("filename", filename),
				zap.Error(err))
		}
	}

	return true, nil
}

// GetStandupStats aggregates standup numbers for a lab
func (s *Service) GetStandupStats(ctx context.Context, labID uuid.UUID) (*repositories.StandupStats, error) {
	return s.standupRepo.Stats(ctx, labID)
}

// SearchStandups finds standups whose archived transcripts contain the term,
// newest meeting first.
func (s *Service) SearchStandups(ctx context.Context, term string, labID *uuid.UUID, limit, offset int) ([]*entities.Standup, error) {
	archives, err := s.archiver.Search(ctx, term, repositories.ArchiveSearchOptions{
		LabID:  labID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	if len(archives) == 0 {
		return []*entities.Standup{}, nil
	}

	ids := make([]uuid.UUID, 0, len(archives))
	for _, a := range archives {
		ids = append(ids, a.StandupID)
	}
	standups, err := s.standupRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load matched standups: %w", err)
	}

	sort.Slice(standups, func(i, j int) bool {
		return standups[i].Date.After(standups[j].Date)
	})
	return standups, nil
}

// UpdateActionItemStatus toggles an action item's completion flag. Failures
// are logged and reported as false rather than propagated.
func (s *Service) UpdateActionItemStatus(ctx context.Context, id uuid.UUID, completed bool) bool {
	if err := s.artifactRepo.UpdateActionItemCompleted(ctx, id, completed); err != nil {
		s.logger.Warn("failed to update action item status",
			zap.String("action_item_id", id.String()), zap.Error(err))
		return false
	}
	return true
}

// UpdateBlockerStatus toggles a blocker's resolved flag. Failures are logged
// and reported as false rather than propagated.
func (s *Service) UpdateBlockerStatus(ctx context.Context, id uuid.UUID, resolved bool) bool {
	if err := s.artifactRepo.UpdateBlockerResolved(ctx, id, resolved); err != nil {
		s.logger.Warn("failed to update blocker status",
			zap.String("blocker_id", id.String()), zap.Error(err))
		return false
	}
	return true
}

// baseName returns the last path segment of a URL or path
func baseName(p string) string {
	if idx := strings.LastIndex(p, "/"); idx != -1 {
		return p[idx+1:]
	}
	return p
}
