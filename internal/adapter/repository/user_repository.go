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

// userRepository implements the UserRepository interface using GORM
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) repositories.UserRepository {
	return &userRepository{db: db}
}

// FindByID finds a user by ID
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return &user, nil
}

// FindByName matches the full name case-insensitively
func (r *userRepository) FindByName(ctx context.Context, name string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND is_active = ?", name, true).
		Order("created_at ASC").
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by name: %w", err)
	}
	return &user, nil
}

// FindByFirstName matches the first name token case-insensitively
func (r *userRepository) FindByFirstName(ctx context.Context, firstName string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(SPLIT_PART(name, ' ', 1)) = LOWER(?) AND is_active = ?", firstName, true).
		Order("created_at ASC").
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by first name: %w", err)
	}
	return &user, nil
}
