package errors

import "errors"

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input")
)

// Standup errors
var (
	ErrInvalidOrderBy  = errors.New("order by must be date or created_at")
	ErrEmptyTranscript = errors.New("transcript is empty")
)

// Audio errors
var (
	ErrEmptyAudioBuffer    = errors.New("audio buffer is empty")
	ErrAudioTooLarge       = errors.New("audio file too large")
	ErrUnsupportedMimeType = errors.New("unsupported audio MIME type")
	ErrInvalidBase64       = errors.New("invalid base64 audio payload")
)

// Archive errors
var (
	ErrInvalidDays = errors.New("days must be a positive number")
)
