package entities

import (
	"time"

	"github.com/google/uuid"
)

// ActionItem is a task extracted from a standup transcript
type ActionItem struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StandupID   uuid.UUID  `json:"standup_id" gorm:"type:uuid;not null;index"`
	Description string     `json:"description" gorm:"type:text;not null"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty" gorm:"type:uuid;index"`
	Assignee    *User      `json:"assignee,omitempty" gorm:"foreignKey:AssigneeID"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed" gorm:"default:false;not null"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for ActionItem
func (ActionItem) TableName() string {
	return "action_items"
}

// NewActionItem creates an action item for a standup
func NewActionItem(standupID uuid.UUID, description string) *ActionItem {
	return &ActionItem{
		ID:          uuid.New(),
		StandupID:   standupID,
		Description: description,
	}
}
