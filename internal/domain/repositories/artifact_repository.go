package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
)

// ExtractionArtifacts bundles the rows persisted by one extraction run
type ExtractionArtifacts struct {
	ActionItems []*entities.ActionItem
	Blockers    []*entities.Blocker
	Decisions   []*entities.Decision
	// RawExtraction is the normalized extraction document stored on the
	// standup row; empty means leave the stored document alone.
	RawExtraction datatypes.JSON
	// ParticipantUserIDs is the full replacement set; nil means extraction
	// named no participants and the existing set is left untouched.
	ParticipantUserIDs []uuid.UUID
}

// ArtifactRepository persists extraction artifacts atomically
type ArtifactRepository interface {
	// SaveExtraction inserts all artifact rows for a standup inside a single
	// transaction, replacing the participant set when one is given, and
	// returns the fully loaded standup. Any failure rolls the whole
	// transaction back.
	SaveExtraction(ctx context.Context, standupID uuid.UUID, artifacts ExtractionArtifacts) (*entities.Standup, error)
	UpdateActionItemCompleted(ctx context.Context, id uuid.UUID, completed bool) error
	UpdateBlockerResolved(ctx context.Context, id uuid.UUID, resolved bool) error
}
