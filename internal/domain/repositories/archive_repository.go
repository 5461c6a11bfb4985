package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
)

// ArchiveSearchOptions controls transcript search
type ArchiveSearchOptions struct {
	LabID          *uuid.UUID
	Limit          int
	Offset         int
	IncludeExpired bool
}

// ArchiveStats is the aggregate reported for transcript archives
type ArchiveStats struct {
	TotalArchives  int64            `json:"total_archives"`
	TotalWords     int64            `json:"total_words"`
	TotalDuration  int64            `json:"total_duration_seconds"`
	AvgWordCount   float64          `json:"avg_word_count"`
	ExpiringSoon   int64            `json:"expiring_soon"`
	AlreadyExpired int64            `json:"already_expired"`
	ByLanguage     map[string]int64 `json:"by_language"`
}

// ArchiveRepository handles transcript archive persistence
type ArchiveRepository interface {
	Create(ctx context.Context, archive *entities.TranscriptArchive) error
	FindByStandupID(ctx context.Context, standupID uuid.UUID) (*entities.TranscriptArchive, error)
	Update(ctx context.Context, archive *entities.TranscriptArchive) error
	Delete(ctx context.Context, standupID uuid.UUID) error
	FindExpired(ctx context.Context, now time.Time) ([]*entities.TranscriptArchive, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	FindExpiringBetween(ctx context.Context, labID *uuid.UUID, from, to time.Time) ([]*entities.TranscriptArchive, error)
	Search(ctx context.Context, term string, opts ArchiveSearchOptions) ([]*entities.TranscriptArchive, error)
	Stats(ctx context.Context, labID *uuid.UUID, expiryThresholdDays int) (*ArchiveStats, error)
}
