package amadeus

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/provider"
)

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError || status == http.StatusRequestTimeout
}

// classifyStatus maps a non-success HTTP response to a provider error.
// 408, 429 and 5xx are transient; every other status is fatal.
func classifyStatus(op string, status int, body []byte) error {
	err := fmt.Errorf("unexpected status %d", status)
	payload := errorBody(status, body)
	if isRetryableStatus(status) {
		return &provider.TransientError{Op: op, Payload: payload, Err: err}
	}
	return &provider.FatalError{Op: op, Payload: payload, Err: err}
}

// classifyTransport maps errors from the HTTP round trip, including token
// retrieval failures surfaced by the oauth2 transport.
func classifyTransport(op string, err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) && rErr.Response != nil {
		status := rErr.Response.StatusCode
		if !isRetryableStatus(status) {
			return &provider.FatalError{Op: op, Payload: errorBody(status, rErr.Body), Err: fmt.Errorf("token: %w", err)}
		}
		return &provider.TransientError{Op: op, Payload: errorBody(status, rErr.Body), Err: fmt.Errorf("token: %w", err)}
	}
	return &provider.TransientError{Op: op, Err: err}
}

// errorBody keeps the provider's JSON error document verbatim when there is
// one, so clients can display it.
func errorBody(status int, body []byte) json.RawMessage {
	if len(body) > 0 && json.Valid(body) {
		return json.RawMessage(body)
	}
	return entity.ErrorPayload(fmt.Sprintf("status %d: %s", status, http.StatusText(status)))
}
