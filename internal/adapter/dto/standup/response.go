package standup

import (
	"time"

	"github.com/labops-team/standup-assistant/internal/domain/entities"
)

// ProcessAudioResponse is returned after a successful pipeline run
type ProcessAudioResponse struct {
	Standup   *entities.Standup `json:"standup"`
	Summary   string            `json:"summary"`
	WordCount int               `json:"word_count"`
	ExpiresAt time.Time         `json:"transcript_expires_at"`
}

// ExportResponse points at an uploaded transcript export
type ExportResponse struct {
	URL string `json:"url"`
}

// DeleteResponse reports whether a delete removed anything
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// StatusResponse reports a status toggle outcome
type StatusResponse struct {
	Updated bool `json:"updated"`
}
