package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means the transaction lost a race with a concurrent writer and may be retried.
	ErrConflict = errors.New("concurrent update conflict")
	// ErrUnavailable means the store could not be reached.
	ErrUnavailable = errors.New("store unavailable")
)
