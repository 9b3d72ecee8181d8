package inventory

import "errors"

var (
	// ErrNotStarted is returned when the recorder is used before Start.
	ErrNotStarted = errors.New("inventory: recorder not started")

	// ErrAlreadyStarted is returned by Start on a recorder with an open run.
	ErrAlreadyStarted = errors.New("inventory: recorder already started")
)
