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

// standupRepository implements the StandupRepository interface using GORM
type standupRepository struct {
	db *gorm.DB
}

// NewStandupRepository creates a new standup repository
func NewStandupRepository(db *gorm.DB) repositories.StandupRepository {
	return &standupRepository{db: db}
}

// Create creates a new standup
func (r *standupRepository) Create(ctx context.Context, standup *entities.Standup) error {
	if err := r.db.WithContext(ctx).Create(standup).Error; err != nil {
		return fmt.Errorf("failed to create standup: %w", err)
	}
	return nil
}

// FindByID retrieves an active standup by ID without relations
func (r *standupRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Standup, error) {
	var standup entities.Standup
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&standup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find standup: %w", err)
	}
	return &standup, nil
}

// FindByIDWithRelations retrieves an active standup with all owned relations
func (r *standupRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*entities.Standup, error) {
	var standup entities.Standup
	if err := r.db.WithContext(ctx).
		Preload("Lab").
		Preload("Archive").
		Preload("ActionItems.Assignee").
		Preload("Blockers").
		Preload("Decisions").
		Preload("Participants.User").
		Where("id = ? AND is_active = ?", id, true).
		First(&standup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find standup: %w", err)
	}
	return &standup, nil
}

// FindByLab lists active standups for a lab with pagination
func (r *standupRepository) FindByLab(ctx context.Context, labID uuid.UUID, opts repositories.StandupListOptions) ([]*entities.Standup, int64, error) {
	orderBy := "date"
	if opts.OrderBy == "created_at" {
		orderBy = "created_at"
	}
	direction := "ASC"
	if opts.Desc {
		direction = "DESC"
	}

	base := r.db.WithContext(ctx).
		Model(&entities.Standup{}).
		Where("lab_id = ? AND is_active = ?", labID, true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count standups: %w", err)
	}

	query := base.
		Preload("Archive").
		Preload("ActionItems").
		Preload("Blockers").
		Order(fmt.Sprintf("%s %s", orderBy, direction))

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var standups []*entities.Standup
	if err := query.Find(&standups).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list standups: %w", err)
	}
	return standups, total, nil
}

// FindByIDs loads the given active standups with full relations, preserving no
// particular order; callers re-order as needed.
func (r *standupRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Standup, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var standups []*entities.Standup
	if err := r.db.WithContext(ctx).
		Preload("Lab").
		Preload("Archive").
		Preload("ActionItems.Assignee").
		Preload("Blockers").
		Preload("Decisions").
		Preload("Participants.User").
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&standups).Error; err != nil {
		return nil, fmt.Errorf("failed to load standups: %w", err)
	}
	return standups, nil
}

// Update updates a standup
func (r *standupRepository) Update(ctx context.Context, standup *entities.Standup) error {
	if err := r.db.WithContext(ctx).Save(standup).Error; err != nil {
		return fmt.Errorf("failed to update standup: %w", err)
	}
	return nil
}

// UpdateAudioURL sets or clears the standup's audio URL
func (r *standupRepository) UpdateAudioURL(ctx context.Context, id uuid.UUID, audioURL *string) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Standup{}).
		Where("id = ?", id).
		Update("audio_url", audioURL).Error; err != nil {
		return fmt.Errorf("failed to update audio URL: %w", err)
	}
	return nil
}

// SoftDelete flips the active flag; the row stays for audit purposes
func (r *standupRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Standup{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to soft delete standup: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrStandupNotFound
	}
	return nil
}

// ActiveAudioURLs returns the audio URLs of every active standup that has one
func (r *standupRepository) ActiveAudioURLs(ctx context.Context) ([]string, error) {
	var urls []string
	if err := r.db.WithContext(ctx).
		Model(&entities.Standup{}).
		Where("is_active = ? AND audio_url IS NOT NULL", true).
		Pluck("audio_url", &urls).Error; err != nil {
		return nil, fmt.Errorf("failed to list audio URLs: %w", err)
	}
	return urls, nil
}

// Stats aggregates standup and artifact counts for a lab
func (r *standupRepository) Stats(ctx context.Context, labID uuid.UUID) (*repositories.StandupStats, error) {
	stats := &repositories.StandupStats{}

	db := r.db.WithContext(ctx)
	if err := db.Model(&entities.Standup{}).
		Where("lab_id = ? AND is_active = ?", labID, true).
		Count(&stats.TotalStandups).Error; err != nil {
		return nil, fmt.Errorf("failed to count standups: %w", err)
	}

	standupScope := db.Model(&entities.Standup{}).
		Select("id").
		Where("lab_id = ? AND is_active = ?", labID, true)

	if err := db.Model(&entities.ActionItem{}).
		Where("standup_id IN (?)", standupScope).
		Count(&stats.TotalActionItems).Error; err != nil {
		return nil, fmt.Errorf("failed to count action items: %w", err)
	}
	if err := db.Model(&entities.ActionItem{}).
		Where("standup_id IN (?) AND completed = ?", standupScope, true).
		Count(&stats.CompletedActionItems).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed action items: %w", err)
	}
	if err := db.Model(&entities.Blocker{}).
		Where("standup_id IN (?)", standupScope).
		Count(&stats.TotalBlockers).Error; err != nil {
		return nil, fmt.Errorf("failed to count blockers: %w", err)
	}
	if err := db.Model(&entities.Blocker{}).
		Where("standup_id IN (?) AND resolved = ?", standupScope, true).
		Count(&stats.ResolvedBlockers).Error; err != nil {
		return nil, fmt.Errorf("failed to count resolved blockers: %w", err)
	}

	if stats.TotalStandups > 0 {
		stats.AvgActionItemsPerMeet = float64(stats.TotalActionItems) / float64(stats.TotalStandups)
	}
	return stats, nil
}

// CountWithAudio returns the total active standups and how many carry audio
func (r *standupRepository) CountWithAudio(ctx context.Context) (int64, int64, error) {
	var total, withAudio int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Standup{}).
		Where("is_active = ?", true).
		Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count standups: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Model(&entities.Standup{}).
		Where("is_active = ? AND audio_url IS NOT NULL", true).
		Count(&withAudio).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count standups with audio: %w", err)
	}
	return total, withAudio, nil
}
