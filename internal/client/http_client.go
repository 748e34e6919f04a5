package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"flight-hold-service/internal/entity"
)

// APIError is a non-success response from the job API.
type APIError struct {
	Status  int
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Field, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// HTTPClient talks to the job API served by flightholdd.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Submit posts req and returns the id of the queued job. Validation
// failures come back as *APIError with Field set.
func (c *HTTPClient) Submit(ctx context.Context, req entity.JobRequest) (uuid.UUID, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return uuid.Nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp struct {
		JobID uuid.UUID `json:"job_id"`
	}
	if err := c.do(httpReq, http.StatusAccepted, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.JobID, nil
}

// GetJob fetches the record for id. Unknown and expired ids return
// ErrNotFound.
func (c *HTTPClient) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs/"+id.String(), nil)
	if err != nil {
		return nil, err
	}

	var job entity.Job
	if err := c.do(httpReq, http.StatusOK, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *HTTPClient) do(req *http.Request, want int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != want {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
