package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Lab is the owning research group of a standup. Lab management itself lives
// outside this service; only the fields the pipeline reads are modeled here.
type Lab struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Lab
func (Lab) TableName() string {
	return "labs"
}

// Standup represents a single team status-meeting instance
type Standup struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LabID    uuid.UUID `json:"lab_id" gorm:"type:uuid;not null;index"`
	Lab      *Lab      `json:"lab,omitempty" gorm:"foreignKey:LabID"`
	Date     time.Time `json:"date" gorm:"not null;index"`
	AudioURL *string   `json:"audio_url,omitempty" gorm:"type:varchar(500)"`
	IsActive bool      `json:"is_active" gorm:"default:true;not null;index"`

	// Extraction holds the last normalized extraction document as written by
	// the pipeline, kept for audit and reprocessing comparison.
	Extraction datatypes.JSON `json:"extraction,omitempty" gorm:"type:jsonb"`

	Archive      *TranscriptArchive   `json:"archive,omitempty" gorm:"foreignKey:StandupID"`
	ActionItems  []ActionItem         `json:"action_items,omitempty" gorm:"foreignKey:StandupID"`
	Blockers     []Blocker            `json:"blockers,omitempty" gorm:"foreignKey:StandupID"`
	Decisions    []Decision           `json:"decisions,omitempty" gorm:"foreignKey:StandupID"`
	Participants []StandupParticipant `json:"participants,omitempty" gorm:"foreignKey:StandupID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Standup
func (Standup) TableName() string {
	return "standups"
}

// NewStandup creates a new standup for a lab meeting
func NewStandup(labID uuid.UUID, date time.Time) *Standup {
	return &Standup{
		ID:       uuid.New(),
		LabID:    labID,
		Date:     date,
		IsActive: true,
	}
}

// Deactivate flips the soft-delete flag. The audio blob is removed separately:
// structured data is deleted logically, blob data physically.
func (s *Standup) Deactivate() {
	s.IsActive = false
}
