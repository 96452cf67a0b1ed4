package ports

import "errors"

var (
	// ErrNotFound reports a session or event the store does not hold.
	ErrNotFound = errors.New("session record not found")
	// ErrConflict reports an event id that is already stored.
	ErrConflict = errors.New("session record already exists")
)
