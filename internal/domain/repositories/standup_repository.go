package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
)

// StandupListOptions controls pagination and ordering for lab-scoped listings
type StandupListOptions struct {
	Limit   int
	Offset  int
	OrderBy string // "date" or "created_at"
	Desc    bool
}

// StandupStats is the read-only reporting aggregate for a lab
type StandupStats struct {
	TotalStandups         int64   `json:"total_standups"`
	TotalActionItems      int64   `json:"total_action_items"`
	CompletedActionItems  int64   `json:"completed_action_items"`
	TotalBlockers         int64   `json:"total_blockers"`
	ResolvedBlockers      int64   `json:"resolved_blockers"`
	AvgActionItemsPerMeet float64 `json:"avg_action_items_per_standup"`
}

// StandupRepository handles standup persistence
type StandupRepository interface {
	Create(ctx context.Context, standup *entities.Standup) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Standup, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*entities.Standup, error)
	FindByLab(ctx context.Context, labID uuid.UUID, opts StandupListOptions) ([]*entities.Standup, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Standup, error)
	Update(ctx context.Context, standup *entities.Standup) error
	UpdateAudioURL(ctx context.Context, id uuid.UUID, audioURL *string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ActiveAudioURLs(ctx context.Context) ([]string, error)
	Stats(ctx context.Context, labID uuid.UUID) (*StandupStats, error)
	CountWithAudio(ctx context.Context) (total int64, withAudio int64, err error)
}
