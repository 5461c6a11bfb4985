package entities

import "errors"

// Domain errors
var (
	ErrStandupNotFound  = errors.New("standup not found")
	ErrArchiveNotFound  = errors.New("transcript archive not found")
	ErrArchiveExists    = errors.New("transcript archive already exists for standup")
	ErrUserNotFound     = errors.New("user not found")
	ErrLabNotFound      = errors.New("lab not found")
	ErrEmptyTranscript  = errors.New("transcript text is empty")
	ErrInvalidAudio     = errors.New("invalid audio upload")
	ErrProcessingLocked = errors.New("standup processing already in progress")
)
