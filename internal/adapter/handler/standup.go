package handler

import (
	stdErrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/labops-team/standup-assistant/errors"
	"github.com/labops-team/standup-assistant/internal/adapter/dto/common"
	dto "github.com/labops-team/standup-assistant/internal/adapter/dto/standup"
	"github.com/labops-team/standup-assistant/internal/domain/entities"
	"github.com/labops-team/standup-assistant/internal/domain/repositories"
	"github.com/labops-team/standup-assistant/internal/usecase/audio"
	"github.com/labops-team/standup-assistant/internal/usecase/standup"
)

// Standup handles the standup lifecycle and pipeline endpoints
type Standup struct {
	standups *standup.Service
	audio    *audio.Service
	logger   *zap.Logger
}

// NewStandup creates a standup handler
func NewStandup(standups *standup.Service, audioSvc *audio.Service, logger *zap.Logger) *Standup {
	return &Standup{standups: standups, audio: audioSvc, logger: logger}
}

// Create registers a standup for a lab meeting
func (h *Standup) Create(c echo.Context) error {
	var req dto.CreateStandupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	labID, err := uuid.Parse(req.LabID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid lab_id"))
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("date must be in YYYY-MM-DD format"))
	}

	created, err := h.standups.CreateStandup(c.Request().Context(), labID, date)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusCreated, created)
}

// Get loads a standup with all its artifacts
func (h *Standup) Get(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	loaded, err := h.standups.GetStandupByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, loaded)
}

// Update changes a standup's meeting date
func (h *Standup) Update(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.UpdateStandupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("date must be in YYYY-MM-DD format"))
	}

	updated, err := h.standups.UpdateStandup(c.Request().Context(), id, date)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, updated)
}

// Delete soft-deletes a standup and removes its audio file
func (h *Standup) Delete(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	deleted, err := h.standups.DeleteStandup(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if !deleted {
		return HandleError(h.logger, c, errors.ErrStandupNotFound(id.String()))
	}
	return HandleSuccess(h.logger, c, http.StatusOK, dto.DeleteResponse{Deleted: true})
}

// ListByLab pages through a lab's standups
func (h *Standup) ListByLab(c echo.Context) error {
	labID, err := parseUUIDParam(c, "labId")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.ListStandupsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}
	limit, offset, page := pageToOffset(req.Page, req.PageSize)

	standups, total, err := h.standups.GetStandupsByLab(c.Request().Context(), labID, repositories.StandupListOptions{
		Limit:   limit,
		Offset:  offset,
		OrderBy: req.OrderBy,
		Desc:    req.SortOrder != "asc",
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, common.ListResponse{
		Data:       standups,
		Pagination: common.NewPagination(page, limit, total),
	})
}

// Stats reports lab-level standup aggregates
func (h *Standup) Stats(c echo.Context) error {
	labID, err := parseUUIDParam(c, "labId")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	stats, err := h.standups.GetStandupStats(c.Request().Context(), labID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, stats)
}

// Search finds standups by transcript content, newest first
func (h *Standup) Search(c echo.Context) error {
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

	standups, err := h.standups.SearchStandups(c.Request().Context(), req.Query, labID, limit, offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, standups)
}

// UploadAudio accepts a standup recording as a multipart file or a base64
// JSON payload and runs the full processing pipeline on it.
func (h *Standup) UploadAudio(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	data, mimeType, err := h.readAudioPayload(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	// Reject bad uploads before any pipeline work starts.
	if err := h.audio.Validate(int64(len(data)), mimeType); err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.standups.ProcessAudio(c.Request().Context(), id, data, mimeType)
	if err != nil {
		return HandleError(h.logger, c, mapPipelineError(id, err))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, dto.ProcessAudioResponse{
		Standup:   result.Standup,
		Summary:   result.Summary,
		WordCount: result.Archive.WordCount,
		ExpiresAt: result.Archive.ExpiresAt,
	})
}

// GetAudio reports the standup's stored audio location
func (h *Standup) GetAudio(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	info, err := h.audio.Retrieve(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, http.StatusOK, info)
}

// Reprocess re-runs extraction from the archived transcript
func (h *Standup) Reprocess(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.standups.ReprocessExtraction(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, mapPipelineError(id, err))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, dto.ProcessAudioResponse{
		Standup:   result.Standup,
		Summary:   result.Summary,
		WordCount: result.Archive.WordCount,
		ExpiresAt: result.Archive.ExpiresAt,
	})
}

// UpdateActionItemStatus toggles an action item's completion flag
func (h *Standup) UpdateActionItemStatus(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	updated := h.standups.UpdateActionItemStatus(c.Request().Context(), id, req.Done)
	return HandleSuccess(h.logger, c, http.StatusOK, dto.StatusResponse{Updated: updated})
}

// UpdateBlockerStatus toggles a blocker's resolved flag
func (h *Standup) UpdateBlockerStatus(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	updated := h.standups.UpdateBlockerStatus(c.Request().Context(), id, req.Done)
	return HandleSuccess(h.logger, c, http.StatusOK, dto.StatusResponse{Updated: updated})
}

// readAudioPayload reads the upload from either a multipart "audio" part or a
// base64 JSON body.
func (h *Standup) readAudioPayload(c echo.Context) ([]byte, string, error) {
	if fileHeader, err := c.FormFile("audio"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, "", errors.ErrInvalidPayload()
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", errors.ErrInvalidPayload()
		}
		return data, fileHeader.Header.Get("Content-Type"), nil
	}

	var req dto.UploadAudioRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, "", err
	}
	data, mimeType, err := audio.DecodeBase64(req.Audio, req.MimeType)
	if err != nil {
		return nil, "", errors.ErrAudioInvalid("Invalid base64 audio payload")
	}
	return data, mimeType, nil
}

// mapPipelineError translates a pipeline failure into an AppError tagged with
// the failing stage.
func mapPipelineError(standupID uuid.UUID, err error) error {
	var stageErr *standup.StageError
	if !stdErrors.As(err, &stageErr) {
		return err
	}

	var appErr errors.AppError
	switch stageErr.Stage {
	case standup.StageStoreAudio:
		appErr = errors.ErrAudioStoreFailed(stageErr.Err)
	case standup.StageTranscribe:
		appErr = errors.ErrTranscriptionFailed(stageErr.Err)
	case standup.StageArchive:
		if stdErrors.Is(stageErr.Err, entities.ErrArchiveExists) {
			appErr = errors.ErrArchiveAlreadyExists(standupID.String())
		} else {
			appErr = errors.ErrInternal(stageErr.Err)
		}
	case standup.StageExtract:
		appErr = errors.ErrExtractionFailed(stageErr.Err)
	case standup.StagePersist:
		appErr = errors.ErrDBTransactionFailed(stageErr.Err)
	default:
		appErr = errors.ErrInternal(stageErr.Err)
	}

	return appErr.WithDetail("stage", string(stageErr.Stage))
}
