package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
	"github.com/labops-team/standup-assistant/internal/domain/repositories"
)

// artifactRepository implements the ArtifactRepository interface using GORM
type artifactRepository struct {
	db *gorm.DB
}

// NewArtifactRepository creates a new artifact repository
func NewArtifactRepository(db *gorm.DB) repositories.ArtifactRepository {
	return &artifactRepository{db: db}
}

// SaveExtraction persists all extraction artifacts for a standup in one
// transaction. Participants are replaced wholesale, not merged: each
// processing run supersedes prior participant inference. The fully loaded
// standup is returned as the transaction result.
func (r *artifactRepository) SaveExtraction(ctx context.Context, standupID uuid.UUID, artifacts repositories.ExtractionArtifacts) (*entities.Standup, error) {
	var loaded entities.Standup

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(artifacts.ActionItems) > 0 {
			if err := tx.Create(artifacts.ActionItems).Error; err != nil {
				return fmt.Errorf("failed to insert action items: %w", err)
			}
		}
		if len(artifacts.Blockers) > 0 {
			if err := tx.Create(artifacts.Blockers).Error; err != nil {
				return fmt.Errorf("failed to insert blockers: %w", err)
			}
		}
		if len(artifacts.Decisions) > 0 {
			if err := tx.Create(artifacts.Decisions).Error; err != nil {
				return fmt.Errorf("failed to insert decisions: %w", err)
			}
		}

		if len(artifacts.RawExtraction) > 0 {
			if err := tx.
				Model(&entities.Standup{}).
				Where("id = ?", standupID).
				Update("extraction", artifacts.RawExtraction).Error; err != nil {
				return fmt.Errorf("failed to record extraction document: %w", err)
			}
		}

		if artifacts.ParticipantUserIDs != nil {
			if err := tx.
				Where("standup_id = ?", standupID).
				Delete(&entities.StandupParticipant{}).Error; err != nil {
				return fmt.Errorf("failed to clear participants: %w", err)
			}
			for _, userID := range artifacts.ParticipantUserIDs {
				participant := entities.NewStandupParticipant(standupID, userID)
				if err := tx.Create(participant).Error; err != nil {
					return fmt.Errorf("failed to insert participant: %w", err)
				}
			}
		}

		if err := tx.
			Preload("Lab").
			Preload("Archive").
			Preload("ActionItems.Assignee").
			Preload("Blockers").
			Preload("Decisions").
			Preload("Participants.User").
			Where("id = ?", standupID).
			First(&loaded).Error; err != nil {
			return fmt.Errorf("failed to load standup: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &loaded, nil
}

// UpdateActionItemCompleted toggles the completed flag on an action item
func (r *artifactRepository) UpdateActionItemCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	result := r.db.WithContext(ctx).
		Model(&entities.ActionItem{}).
		Where("id = ?", id).
		Update("completed", completed)
	if result.Error != nil {
		return fmt.Errorf("failed to update action item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("action item not found")
	}
	return nil
}

// UpdateBlockerResolved toggles the resolved flag on a blocker
func (r *artifactRepository) UpdateBlockerResolved(ctx context.Context, id uuid.UUID, resolved bool) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Blocker{}).
		Where("id = ?", id).
		Update("resolved", resolved)
	if result.Error != nil {
		return fmt.Errorf("failed to update blocker: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("blocker not found")
	}
	return nil
}
