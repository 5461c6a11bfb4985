package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultRetentionDays is the sliding retention window for archived transcripts.
const DefaultRetentionDays = 30

// TranscriptArchive is the durable, time-limited record of a standup's
// transcribed text. Exactly one archive exists per standup; the unique index
// on standup_id enforces the invariant at the database level.
type TranscriptArchive struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StandupID  uuid.UUID `json:"standup_id" gorm:"type:uuid;not null;uniqueIndex"`
	Transcript string    `json:"transcript" gorm:"type:text;not null"`
	WordCount  int       `json:"word_count" gorm:"not null"`
	AudioURL   *string   `json:"audio_url,omitempty" gorm:"type:varchar(500)"`
	Duration   *int      `json:"duration,omitempty"` // seconds
	Language   string    `json:"language" gorm:"type:varchar(20);default:'en';not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null;index"`
}

// TableName specifies the table name for TranscriptArchive
func (TranscriptArchive) TableName() string {
	return "transcript_archives"
}

// NewTranscriptArchive creates an archive with the derived word count and the
// default retention window.
func NewTranscriptArchive(standupID uuid.UUID, transcript string, retentionDays int) *TranscriptArchive {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	now := time.Now()
	return &TranscriptArchive{
		ID:         uuid.New(),
		StandupID:  standupID,
		Transcript: transcript,
		WordCount:  CountWords(transcript),
		Language:   "en",
		CreatedAt:  now,
		ExpiresAt:  now.AddDate(0, 0, retentionDays),
	}
}

// CountWords returns the number of whitespace-delimited non-empty tokens.
func CountWords(transcript string) int {
	return len(strings.Fields(transcript))
}

// IsExpired reports whether the archive is past its retention deadline.
func (a *TranscriptArchive) IsExpired(now time.Time) bool {
	return !a.ExpiresAt.After(now)
}

// ExtendRetention pushes the expiry out from the current deadline, never from
// now, so repeated extensions compound instead of silently shortening a
// previously extended window.
func (a *TranscriptArchive) ExtendRetention(additionalDays int) {
	if additionalDays <= 0 {
		additionalDays = DefaultRetentionDays
	}
	a.ExpiresAt = a.ExpiresAt.AddDate(0, 0, additionalDays)
}
