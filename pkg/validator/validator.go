package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a CustomValidator with the service's custom rules registered
func New() *CustomValidator {
	v := validator.New()
	// Must* panics only on an invalid registration, which is a programming
	// error, not a runtime condition.
	if err := v.RegisterValidation("audiomime", validateAudioMime); err != nil {
		panic(err)
	}
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// validateAudioMime accepts audio/* MIME types, with or without codec
// parameters ("audio/webm;codecs=opus"). The per-subtype allow-list is
// enforced by the audio service; this rule only rejects payloads that
// declare a non-audio type outright.
func validateAudioMime(fl validator.FieldLevel) bool {
	mimeType := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return strings.HasPrefix(mimeType, "audio/")
}
