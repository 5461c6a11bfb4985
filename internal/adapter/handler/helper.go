package handler

import (
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/labops-team/standup-assistant/errors"
	"github.com/labops-team/standup-assistant/internal/domain/entities"
	usecaseErrors "github.com/labops-team/standup-assistant/internal/usecase/errors"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response
func HandleSuccess(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := success{
		Code:    status,
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging. Domain sentinel errors
// and AppErrors map to their HTTP codes; anything else is a 500.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) {
		appErr = mapDomainError(err)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Any("app_code", appErr.Code),
			zap.Error(err),
		)
	}

	info := ""
	if appErr.Raw != nil {
		info = appErr.Raw.Error()
	}

	body := errs{
		Code:    appErr.Code,
		Message: appErr.Message,
		Info:    info,
		Details: appErr.Details,
	}

	return c.JSON(appErr.HTTPCode, body)
}

// mapDomainError translates entity sentinel errors into AppErrors so handlers
// can return usecase errors unmodified.
func mapDomainError(err error) errors.AppError {
	switch {
	case stdErrors.Is(err, entities.ErrStandupNotFound):
		return errors.ErrNotFound("Standup")
	case stdErrors.Is(err, entities.ErrArchiveNotFound):
		return errors.ErrNotFound("Transcript archive")
	case stdErrors.Is(err, entities.ErrUserNotFound):
		return errors.ErrNotFound("User")
	case stdErrors.Is(err, entities.ErrLabNotFound):
		return errors.ErrNotFound("Lab")
	case stdErrors.Is(err, entities.ErrArchiveExists):
		return errors.ErrAlreadyExists("Transcript archive")
	case stdErrors.Is(err, entities.ErrProcessingLocked):
		return errors.ErrStandupProcessingLocked("")
	case stdErrors.Is(err, entities.ErrEmptyTranscript),
		stdErrors.Is(err, usecaseErrors.ErrEmptyTranscript):
		return errors.ErrInvalidArgument("Transcript text is empty")
	case stdErrors.Is(err, entities.ErrInvalidAudio):
		return errors.ErrAudioInvalid("Invalid audio upload")
	case stdErrors.Is(err, usecaseErrors.ErrAudioTooLarge):
		return errors.ErrAudioTooLarge(err.Error())
	case stdErrors.Is(err, usecaseErrors.ErrEmptyAudioBuffer),
		stdErrors.Is(err, usecaseErrors.ErrUnsupportedMimeType),
		stdErrors.Is(err, usecaseErrors.ErrInvalidBase64):
		return errors.ErrAudioInvalid(err.Error())
	case stdErrors.Is(err, usecaseErrors.ErrInvalidOrderBy),
		stdErrors.Is(err, usecaseErrors.ErrInvalidDays),
		stdErrors.Is(err, usecaseErrors.ErrInvalidInput):
		return errors.ErrInvalidArgument(err.Error())
	default:
		return errors.ErrInternal(err)
	}
}

// parseUUIDParam reads and parses a UUID path parameter
func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument("Invalid " + name + " parameter").WithDetail(name, c.Param(name))
	}
	return id, nil
}

// bindAndValidate binds the request payload and runs struct validation
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidPayload()
	}
	if err := c.Validate(req); err != nil {
		return errors.ErrInvalidArgument(err.Error())
	}
	return nil
}

// pageToOffset converts 1-based page parameters to limit/offset
func pageToOffset(page, pageSize int) (limit, offset int, normalizedPage int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize, page
}
