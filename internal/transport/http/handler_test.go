package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/repository/memory"
	"flight-hold-service/internal/service"
	httptransport "flight-hold-service/internal/transport/http"
)

// ---- helpers ----

type testAPI struct {
	router http.Handler
	repo   *memory.JobRepository
	queue  *service.MemoryQueue
}

func newTestAPI() *testAPI {
	repo := memory.NewJobRepository(time.Hour)
	queue := service.NewMemoryQueue(16)
	svc := service.NewJobService(repo, queue, nil)
	h := httptransport.NewHandler(svc, nil)
	return &testAPI{router: httptransport.Routes(h, nil), repo: repo, queue: queue}
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// seed stores job directly, bypassing the queue.
func (a *testAPI) seed(t *testing.T, job *entity.Job) {
	t.Helper()
	if err := a.repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

const validBody = `{"from_location":"jfk","to_location":"LHR","departure_date":"2025-06-01","num_passengers":1,"seat_class":"economy"}`

// ---- tests ----

func TestHTTP_SubmitJob_202_AndPending(t *testing.T) {
	api := newTestAPI()

	rr := api.do(http.MethodPost, "/jobs", validBody)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d, body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json response: %v, body=%s", err, rr.Body.String())
	}
	if _, err := uuid.Parse(resp.JobID); err != nil {
		t.Fatalf("expected uuid job_id, got %q", resp.JobID)
	}
	if api.queue.Len() != 1 {
		t.Fatalf("expected 1 queued id, got %d", api.queue.Len())
	}

	rr2 := api.do(http.MethodGet, "/jobs/"+resp.JobID, "")
	if rr2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr2.Code, rr2.Body.String())
	}

	var got map[string]any
	if err := json.Unmarshal(rr2.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v, body=%s", err, rr2.Body.String())
	}
	if got["state"] != "PENDING" {
		t.Fatalf("expected state=PENDING, got %v", got["state"])
	}
	if _, ok := got["result"]; ok {
		t.Fatalf("pending job must not carry a result, got %v", got["result"])
	}
	req, _ := got["request"].(map[string]any)
	if req["from_location"] != "JFK" || req["seat_class"] != "ECONOMY" {
		t.Fatalf("expected normalized request, got %v", req)
	}
}

func TestHTTP_SubmitJob_400_NamesField(t *testing.T) {
	api := newTestAPI()

	body := `{"from_location":"JFK","to_location":"LHR","departure_date":"2025-06-01","num_passengers":0,"seat_class":"ECONOMY"}`
	rr := api.do(http.MethodPost, "/jobs", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d, body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Field != "num_passengers" {
		t.Fatalf("expected field=num_passengers, got %q", resp.Field)
	}
	if api.queue.Len() != 0 {
		t.Fatalf("invalid request must not be queued")
	}
}

func TestHTTP_SubmitJob_400_InvalidJSON(t *testing.T) {
	rr := newTestAPI().do(http.MethodPost, "/jobs", `{"from_location":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHTTP_GetJob_404_And_400(t *testing.T) {
	api := newTestAPI()

	if rr := api.do(http.MethodGet, "/jobs/"+uuid.NewString(), ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr := api.do(http.MethodGet, "/jobs/not-a-uuid", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHTTP_GetJob_404_WhenExpired(t *testing.T) {
	api := newTestAPI()

	old := time.Now().UTC().Add(-2 * time.Hour)
	job := entity.NewJob(entity.JobRequest{FromLocation: "JFK", ToLocation: "LHR"}, old)
	job.Finish(entity.NotFoundOutcome(nil), old)
	api.seed(t, job)

	if rr := api.do(http.MethodGet, "/jobs/"+job.ID.String(), ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for expired job, got %d", rr.Code)
	}
}

func TestHTTP_GetJobResult_409_WhenNotFinished(t *testing.T) {
	api := newTestAPI()

	job := entity.NewJob(entity.JobRequest{FromLocation: "JFK", ToLocation: "LHR"}, time.Now().UTC())
	job.State = entity.StateRunning
	job.Stage = entity.StageSearch
	api.seed(t, job)

	rr := api.do(http.MethodGet, "/jobs/"+job.ID.String()+"/result", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestHTTP_GetJobResult_200_WhenFinished(t *testing.T) {
	api := newTestAPI()

	job := entity.NewJob(entity.JobRequest{FromLocation: "JFK", ToLocation: "LHR"}, time.Now().UTC())
	job.Finish(entity.HoldFailedOutcome(
		[]entity.Offer{entity.Offer(`{"id":"1"}`)},
		json.RawMessage(`{"code":"SEGMENT_SELL_FAILURE"}`),
	), time.Now().UTC())
	api.seed(t, job)

	rr := api.do(http.MethodGet, "/jobs/"+job.ID.String()+"/result", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}

	var got struct {
		Status string            `json:"status"`
		Offers []json.RawMessage `json:"offers"`
		Error  json.RawMessage   `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Status != "hold_failed" || len(got.Offers) != 1 {
		t.Fatalf("unexpected outcome: %s", rr.Body.String())
	}
	if string(got.Error) != `{"code":"SEGMENT_SELL_FAILURE"}` {
		t.Fatalf("expected provider error payload, got %s", got.Error)
	}
}

func TestHTTP_Health(t *testing.T) {
	rr := newTestAPI().do(http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", rr.Code, rr.Body.String())
	}
}
