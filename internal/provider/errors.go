package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"flight-hold-service/internal/entity"
)

// TransientError is a provider failure worth retrying: timeouts, rate
// limits, upstream 5xx.
type TransientError struct {
	Op      string
	Payload json.RawMessage
	Err     error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient provider error: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError is a provider failure that will not succeed on retry:
// malformed requests, authentication failures.
type FatalError struct {
	Op      string
	Payload json.RawMessage
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: fatal provider error: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err must not be retried. Unclassified errors
// are retryable.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// Payload returns the provider-reported error body carried by err, or a
// `{"message": ...}` rendering of err when the provider sent none.
func Payload(err error) json.RawMessage {
	var te *TransientError
	if errors.As(err, &te) && len(te.Payload) > 0 {
		return te.Payload
	}
	var fe *FatalError
	if errors.As(err, &fe) && len(fe.Payload) > 0 {
		return fe.Payload
	}
	return entity.ErrorPayload(err.Error())
}
