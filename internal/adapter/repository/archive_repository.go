package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
	"github.com/labops-team/standup-assistant/internal/domain/repositories"
)

// archiveRepository implements the ArchiveRepository interface using GORM
type archiveRepository struct {
	db *gorm.DB
}

// NewArchiveRepository creates a new transcript archive repository
func NewArchiveRepository(db *gorm.DB) repositories.ArchiveRepository {
	return &archiveRepository{db: db}
}

// Create inserts a new archive. The unique index on standup_id rejects a
// second archive for the same standup.
func (r *archiveRepository) Create(ctx context.Context, archive *entities.TranscriptArchive) error {
	if archive == nil {
		return errors.New("archive cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(archive).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return entities.ErrArchiveExists
		}
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}

// FindByStandupID retrieves the archive for a standup, (nil, nil) if absent
func (r *archiveRepository) FindByStandupID(ctx context.Context, standupID uuid.UUID) (*entities.TranscriptArchive, error) {
	var archive entities.TranscriptArchive
	if err := r.db.WithContext(ctx).
		Where("standup_id = ?", standupID).
		First(&archive).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find archive: %w", err)
	}
	return &archive, nil
}

// Update saves the archive row
func (r *archiveRepository) Update(ctx context.Context, archive *entities.TranscriptArchive) error {
	if archive == nil {
		return errors.New("archive cannot be nil")
	}
	if err := r.db.WithContext(ctx).Save(archive).Error; err != nil {
		return fmt.Errorf("failed to update archive: %w", err)
	}
	return nil
}

// Delete removes the archive for a standup
func (r *archiveRepository) Delete(ctx context.Context, standupID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("standup_id = ?", standupID).
		Delete(&entities.TranscriptArchive{}).Error; err != nil {
		return fmt.Errorf("failed to delete archive: %w", err)
	}
	return nil
}

// FindExpired returns every archive whose expiry has passed
func (r *archiveRepository) FindExpired(ctx context.Context, now time.Time) ([]*entities.TranscriptArchive, error) {
	var archives []*entities.TranscriptArchive
	if err := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Find(&archives).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired archives: %w", err)
	}
	return archives, nil
}

// DeleteByID removes a single archive row
func (r *archiveRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Delete(&entities.TranscriptArchive{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete archive: %w", err)
	}
	return nil
}

// FindExpiringBetween returns archives whose expiry falls in [from, to),
// soonest first, optionally scoped to a lab.
func (r *archiveRepository) FindExpiringBetween(ctx context.Context, labID *uuid.UUID, from, to time.Time) ([]*entities.TranscriptArchive, error) {
	query := r.db.WithContext(ctx).
		Where("expires_at > ? AND expires_at <= ?", from, to).
		Order("expires_at ASC")

	if labID != nil {
		query = query.Where(
			"standup_id IN (?)",
			r.db.Model(&entities.Standup{}).Select("id").Where("lab_id = ? AND is_active = ?", *labID, true),
		)
	}

	var archives []*entities.TranscriptArchive
	if err := query.Find(&archives).Error; err != nil {
		return nil, fmt.Errorf("failed to find expiring archives: %w", err)
	}
	return archives, nil
}

// Search performs a case-insensitive substring search over transcript text
func (r *archiveRepository) Search(ctx context.Context, term string, opts repositories.ArchiveSearchOptions) ([]*entities.TranscriptArchive, error) {
	pattern := "%" + escapeLike(term) + "%"
	query := r.db.WithContext(ctx).
		Where("transcript ILIKE ?", pattern)

	if !opts.IncludeExpired {
		query = query.Where("expires_at > ?", time.Now())
	}
	if opts.LabID != nil {
		query = query.Where(
			"standup_id IN (?)",
			r.db.Model(&entities.Standup{}).Select("id").Where("lab_id = ? AND is_active = ?", *opts.LabID, true),
		)
	}

	query = query.Order("created_at DESC")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var archives []*entities.TranscriptArchive
	if err := query.Find(&archives).Error; err != nil {
		return nil, fmt.Errorf("failed to search archives: %w", err)
	}
	return archives, nil
}

// Stats aggregates word/duration totals and expiry counts
func (r *archiveRepository) Stats(ctx context.Context, labID *uuid.UUID, expiryThresholdDays int) (*repositories.ArchiveStats, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&entities.TranscriptArchive{})
		if labID != nil {
			q = q.Where(
				"standup_id IN (?)",
				r.db.Model(&entities.Standup{}).Select("id").Where("lab_id = ? AND is_active = ?", *labID, true),
			)
		}
		return q
	}

	stats := &repositories.ArchiveStats{ByLanguage: make(map[string]int64)}

	var totals struct {
		Count    int64
		Words    int64
		Duration int64
	}
	if err := scope().
		Select("COUNT(*) AS count, COALESCE(SUM(word_count), 0) AS words, COALESCE(SUM(duration), 0) AS duration").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate archives: %w", err)
	}
	stats.TotalArchives = totals.Count
	stats.TotalWords = totals.Words
	stats.TotalDuration = totals.Duration
	if totals.Count > 0 {
		stats.AvgWordCount = float64(totals.Words) / float64(totals.Count)
	}

	now := time.Now()
	threshold := now.AddDate(0, 0, expiryThresholdDays)
	if err := scope().
		Where("expires_at > ? AND expires_at <= ?", now, threshold).
		Count(&stats.ExpiringSoon).Error; err != nil {
		return nil, fmt.Errorf("failed to count expiring archives: %w", err)
	}
	if err := scope().
		Where("expires_at <= ?", now).
		Count(&stats.AlreadyExpired).Error; err != nil {
		return nil, fmt.Errorf("failed to count expired archives: %w", err)
	}

	var byLang []struct {
		Language string
		Count    int64
	}
	if err := scope().
		Select("language, COUNT(*) AS count").
		Group("language").
		Scan(&byLang).Error; err != nil {
		return nil, fmt.Errorf("failed to group archives by language: %w", err)
	}
	for _, row := range byLang {
		stats.ByLanguage[row.Language] = row.Count
	}

	return stats, nil
}

// escapeLike escapes LIKE metacharacters in a user-supplied search term
func escapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, `%`, `\%`)
	term = strings.ReplaceAll(term, `_`, `\_`)
	return term
}

// isUniqueViolation recognizes a Postgres unique-constraint failure without
// importing the driver error types everywhere.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}
