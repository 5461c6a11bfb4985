package entities

import (
	"time"

	"github.com/google/uuid"
)

// Blocker is an impediment extracted from a standup transcript
type Blocker struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StandupID   uuid.UUID `json:"standup_id" gorm:"type:uuid;not null;index"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Resolved    bool      `json:"resolved" gorm:"default:false;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Blocker
func (Blocker) TableName() string {
	return "blockers"
}

// NewBlocker creates a blocker for a standup
func NewBlocker(standupID uuid.UUID, description string) *Blocker {
	return &Blocker{
		ID:          uuid.New(),
		StandupID:   standupID,
		Description: description,
	}
}
