package provider_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"flight-hold-service/internal/provider"
)

func TestIsFatal(t *testing.T) {
	fatal := &provider.FatalError{Op: "search", Err: errors.New("bad request")}
	transient := &provider.TransientError{Op: "search", Err: errors.New("429")}

	assert.True(t, provider.IsFatal(fatal))
	assert.True(t, provider.IsFatal(fmt.Errorf("wrapped: %w", fatal)))
	assert.False(t, provider.IsFatal(transient))
	assert.False(t, provider.IsFatal(errors.New("something odd")))
	assert.False(t, provider.IsFatal(context.DeadlineExceeded))
	assert.False(t, provider.IsFatal(nil))
}

func TestPayload(t *testing.T) {
	withBody := &provider.FatalError{Op: "hold", Payload: json.RawMessage(`{"errors":[{"code":477}]}`), Err: errors.New("400")}
	assert.JSONEq(t, `{"errors":[{"code":477}]}`, string(provider.Payload(withBody)))

	plain := errors.New("connection reset")
	assert.JSONEq(t, `{"message":"connection reset"}`, string(provider.Payload(plain)))
}
