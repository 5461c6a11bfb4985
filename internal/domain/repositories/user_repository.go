package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
)

// UserRepository reads lab members for name resolution
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	// FindByName matches the full name case-insensitively. Returns (nil, nil)
	// when no user matches.
	FindByName(ctx context.Context, name string) (*entities.User, error)
	// FindByFirstName matches the first whitespace-delimited name token
	// case-insensitively. Returns (nil, nil) when no user matches.
	FindByFirstName(ctx context.Context, firstName string) (*entities.User, error)
}
