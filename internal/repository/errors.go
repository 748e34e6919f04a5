// Package repository holds the errors shared by the Result Store backends.
package repository

import "errors"

var (
	// ErrNotFound is returned for unknown ids and for terminal records past
	// their time-to-live.
	ErrNotFound = errors.New("job not found")

	// ErrNotClaimable is returned by MarkRunning when the record is not
	// PENDING (already claimed, finished, or missing).
	ErrNotClaimable = errors.New("job not claimable")

	// ErrInvalidTransition is returned by Put when the write would move a
	// record backwards or overwrite a terminal record.
	ErrInvalidTransition = errors.New("invalid job state transition")

	ErrDuplicate = errors.New("job already exists")

	// ErrUnavailable wraps driver errors that mean the backend could not be
	// reached; the operation may succeed if retried.
	ErrUnavailable = errors.New("result store unavailable")
)
