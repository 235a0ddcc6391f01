package ports

import "errors"

var (
	// ErrSessionNotFound is returned when no session record exists for an ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCorrupt is returned when a stored session record cannot be decoded.
	ErrSessionCorrupt = errors.New("session record corrupt")
)
