package codec

import "errors"

var (
	// ErrNoAccelerator is returned when no acceleration backend is
	// registered; callers should fall back to a software decode path
	ErrNoAccelerator = errors.New("no acceleration backend registered")

	// ErrBackendNotFound is returned when a named backend is not in the
	// registry
	ErrBackendNotFound = errors.New("acceleration backend not found")

	// ErrSessionClosed is returned when a closed session is used
	ErrSessionClosed = errors.New("decode session is closed")

	// ErrInvalidParameter is returned when session parameters are invalid
	ErrInvalidParameter = errors.New("invalid parameter")
)
