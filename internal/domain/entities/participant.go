package entities

import (
	"time"

	"github.com/google/uuid"
)

// StandupParticipant links a user to a standup they were heard in. The set is
// fully replaced whenever extraction identifies a new participant list; it is
// never merged incrementally.
type StandupParticipant struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StandupID uuid.UUID `json:"standup_id" gorm:"type:uuid;not null;index:idx_standup_user,unique"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_standup_user,unique"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for StandupParticipant
func (StandupParticipant) TableName() string {
	return "standup_participants"
}

// NewStandupParticipant creates a participant link
func NewStandupParticipant(standupID, userID uuid.UUID) *StandupParticipant {
	return &StandupParticipant{
		ID:        uuid.New(),
		StandupID: standupID,
		UserID:    userID,
	}
}
