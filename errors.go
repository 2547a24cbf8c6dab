package chatmd

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates an attachment or message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrUnknownFormat indicates an unsupported output format was requested.
	ErrUnknownFormat = errors.New("unknown format")
)
