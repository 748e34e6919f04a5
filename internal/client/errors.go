package client

import (
	"errors"

	"flight-hold-service/internal/service"
)

var (
	// ErrNotFound is what a JobSource returns for an unknown job id.
	ErrNotFound = service.ErrNotFound

	// ErrExpired is returned by Poller.Wait when the record disappeared,
	// either because its result outlived the time-to-live or because the id
	// was never known. It is never retried.
	ErrExpired = errors.New("job result expired or unknown")

	ErrTimeout = errors.New("timed out waiting for job")
)
