package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/labops-team/standup-assistant/internal/usecase/archive"
	"github.com/labops-team/standup-assistant/internal/usecase/audio"
)

// Maintenance exposes the cleanup jobs as ad-hoc admin endpoints. The same
// jobs run on a schedule; both are idempotent.
type Maintenance struct {
	archives *archive.Service
	audio    *audio.Service
	logger   *zap.Logger
}

// NewMaintenance creates a maintenance handler
func NewMaintenance(archives *archive.Service, audioSvc *audio.Service, logger *zap.Logger) *Maintenance {
	return &Maintenance{archives: archives, audio: audioSvc, logger: logger}
}

// CleanupTranscripts deletes archives past their retention deadline
func (h *Maintenance) CleanupTranscripts(c echo.Context) error {
	result, err := h.archives.CleanupExpired(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, result)
}

// CleanupAudio removes audio files no active standup references
func (h *Maintenance) CleanupAudio(c echo.Context) error {
	result, err := h.audio.CleanupOrphans(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, result)
}

// AudioStats reports the stored audio footprint
func (h *Maintenance) AudioStats(c echo.Context) error {
	stats, err := h.audio.Stats(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, stats)
}
