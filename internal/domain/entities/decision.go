package entities

import (
	"time"

	"github.com/google/uuid"
)

// Decision is an append-only log entry extracted from a standup transcript
type Decision struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StandupID   uuid.UUID `json:"standup_id" gorm:"type:uuid;not null;index"`
	Description string    `json:"description" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Decision
func (Decision) TableName() string {
	return "decisions"
}

// NewDecision creates a decision record for a standup
func NewDecision(standupID uuid.UUID, description string) *Decision {
	return &Decision{
		ID:          uuid.New(),
		StandupID:   standupID,
		Description: description,
	}
}
