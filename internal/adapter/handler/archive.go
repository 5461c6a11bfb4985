package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/labops-team/standup-assistant/errors"
	dto "github.com/labops-team/standup-assistant/internal/adapter/dto/standup"
	"github.com/labops-team/standup-assistant/internal/domain/repositories"
	"github.com/labops-team/standup-assistant/internal/usecase/archive"
)

// Transcript handles the transcript archive endpoints
type Transcript struct {
	archives *archive.Service
	logger   *zap.Logger
}

// NewTranscript creates a transcript handler
func NewTranscript(archives *archive.Service, logger *zap.Logger) *Transcript {
	return &Transcript{archives: archives, logger: logger}
}

// Get returns a standup's archived transcript
func (h *Transcript) Get(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	found, err := h.archives.GetByStandupID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, found)
}

// Update applies a partial update to the archive
func (h *Transcript) Update(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.UpdateTranscriptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	updated, err := h.archives.Update(c.Request().Context(), id, archive.UpdateInput{
		Transcript: req.Transcript,
		Language:   req.Language,
		Duration:   req.Duration,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, updated)
}

// Delete removes a standup's archive
func (h *Transcript) Delete(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.archives.Delete(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, dto.DeleteResponse{Deleted: true})
}

// ExtendRetention pushes the archive expiry out by the requested days
func (h *Transcript) ExtendRetention(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.ExtendRetentionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	extended, err := h.archives.ExtendRetention(c.Request().Context(), id, req.Days)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, extended)
}

// Export downloads the rendered transcript export
func (h *Transcript) Export(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	export, err := h.archives.ExportTranscript(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename+`"`)
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(export.Content))
}

// ExportToObjectStore uploads the export to object storage and returns its URL
func (h *Transcript) ExportToObjectStore(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	url, err := h.archives.ExportToObjectStore(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, dto.ExportResponse{URL: url})
}

// Search runs a substring search over archived transcripts
func (h *Transcript) Search(c echo.Context) error {
	var req dto.SearchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	var labID *uuid.UUID
	if req.LabID != "" {
		parsed, err := uuid.Parse(req.LabID)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid lab_id"))
		}
		labID = &parsed
	}
	limit, offset, _ := pageToOffset(req.Page, req.PageSize)

	archives, err := h.archives.Search(c.Request().Context(), req.Query, repositories.ArchiveSearchOptions{
		LabID:          labID,
		Limit:          limit,
		Offset:         offset,
		IncludeExpired: req.IncludeExpired,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, archives)
}

// Expiring lists archives approaching their retention deadline
func (h *Transcript) Expiring(c echo.Context) error {
	var labID *uuid.UUID
	if labParam := c.QueryParam("lab_id"); labParam != "" {
		parsed, err := uuid.Parse(labParam)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid lab_id"))
		}
		labID = &parsed
	}

	days := 0
	if daysParam := c.QueryParam("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil || parsed < 0 {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("days must be a non-negative number"))
		}
		days = parsed
	}

	archives, err := h.archives.GetExpiringSoon(c.Request().Context(), labID, days)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, archives)
}

// Stats reports transcript archive aggregates for a lab
func (h *Transcript) Stats(c echo.Context) error {
	labID, err := parseUUIDParam(c, "labId")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	stats, err := h.archives.Stats(c.Request().Context(), &labID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, stats)
}
