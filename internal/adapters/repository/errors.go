package repository

import "errors"

// Sentinel kinds for history errors.
var (
	ErrUnknownBackend = errors.New("unknown history backend")
	ErrMissingPath    = errors.New("history path is required")
	ErrMissingID      = errors.New("history entry id is required")
	ErrClosed         = errors.New("history store is closed")
)
