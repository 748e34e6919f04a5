package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/repository/memory"
	"flight-hold-service/internal/service"
	httptransport "flight-hold-service/internal/transport/http"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.JobRepository) {
	t.Helper()
	repo := memory.NewJobRepository(time.Hour)
	svc := service.NewJobService(repo, service.NewMemoryQueue(8), nil)
	srv := httptest.NewServer(httptransport.Routes(httptransport.NewHandler(svc, nil), nil))
	t.Cleanup(srv.Close)
	return srv, repo
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSubmit_PrintsJobID(t *testing.T) {
	srv, repo := newTestServer(t)

	out, err := run(t, "--api", srv.URL, "submit", "--from", "JFK", "--to", "LHR", "--date", "2025-06-01")
	require.NoError(t, err)

	var resp map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	id, err := uuid.Parse(resp["job_id"])
	require.NoError(t, err)

	job, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatePending, job.State)
	assert.Equal(t, entity.CabinEconomy, job.Request.SeatClass)
}

func TestSubmit_ValidationError(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := run(t, "--api", srv.URL, "submit", "--from", "JFK", "--to", "LHR", "--date", "06/01/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "departure_date")
}

func TestWait_PrintsOutcome(t *testing.T) {
	srv, repo := newTestServer(t)

	job := entity.NewJob(entity.JobRequest{FromLocation: "JFK", ToLocation: "LHR"}, time.Now().UTC())
	job.Finish(entity.NotFoundOutcome(nil), time.Now().UTC())
	require.NoError(t, repo.Create(context.Background(), job))

	out, err := run(t, "--api", srv.URL, "--interval", "10ms", "wait", job.ID.String())
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"not_found"}`, out)
}

func TestStatus_UnknownJob(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := run(t, "--api", srv.URL, "status", uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestWait_ExpiredJob(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := run(t, "--api", srv.URL, "--interval", "10ms", "wait", uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}
