package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/service"
)

type Handler struct {
	jobSvc *service.JobService
	logger *slog.Logger
}

func NewHandler(jobSvc *service.JobService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{jobSvc: jobSvc, logger: logger}
}

type submitJobDTO struct {
	FromLocation  string `json:"from_location" example:"JFK"`
	ToLocation    string `json:"to_location" example:"LHR"`
	DepartureDate string `json:"departure_date" example:"2025-06-01"`
	NumPassengers int    `json:"num_passengers" example:"1"`
	SeatClass     string `json:"seat_class" example:"ECONOMY"`
}

type submitJobResp struct {
	JobID string `json:"job_id"`
}

type jobResp struct {
	JobID        string            `json:"job_id"`
	State        entity.JobState   `json:"state"`
	Stage        entity.Stage      `json:"stage,omitempty"`
	AttemptCount int               `json:"attempt_count"`
	Request      entity.JobRequest `json:"request"`
	Result       *entity.Outcome   `json:"result,omitempty"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
	FinishedAt   string            `json:"finished_at,omitempty"`
}

func toJobResp(j *entity.Job) jobResp {
	resp := jobResp{
		JobID:        j.ID.String(),
		State:        j.State,
		Stage:        j.Stage,
		AttemptCount: j.AttemptCount,
		Request:      j.Request,
		CreatedAt:    j.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    j.UpdatedAt.Format(time.RFC3339Nano),
	}
	if j.State.Terminal() {
		resp.Result = j.Result
	}
	if j.FinishedAt != nil {
		resp.FinishedAt = j.FinishedAt.Format(time.RFC3339Nano)
	}
	return resp
}

// SubmitJob godoc
// @Summary Submit a flight search-and-hold job
// @Description Validates the request, stores a PENDING job and queues it for a worker.
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body submitJobDTO true "search request"
// @Success 202 {object} submitJobResp
// @Failure 400 {object} apiError
// @Failure 500 {object} apiError
// @Router /jobs [post]
func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var dto submitJobDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	id, err := h.jobSvc.Submit(r.Context(), entity.JobRequest{
		FromLocation:  dto.FromLocation,
		ToLocation:    dto.ToLocation,
		DepartureDate: dto.DepartureDate,
		NumPassengers: dto.NumPassengers,
		SeatClass:     entity.CabinClass(dto.SeatClass),
	})
	if err != nil {
		var vErr *entity.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, apiError{Message: vErr.Error(), Field: vErr.Field})
			return
		}
		h.logger.ErrorContext(r.Context(), "submit job failed", "error", err)
		writeErr(w, http.StatusInternalServerError, "could not submit job")
		return
	}

	writeJSON(w, http.StatusAccepted, submitJobResp{JobID: id.String()})
}

// GetJob godoc
// @Summary Get job by id
// @Tags jobs
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} jobResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /jobs/{id} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toJobResp(j))
}

// GetJobResult godoc
// @Summary Get job outcome
// @Description Returns the outcome of a finished job: held, hold_failed or not_found.
// @Tags jobs
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} entity.Outcome
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /jobs/{id}/result [get]
func (h *Handler) GetJobResult(w http.ResponseWriter, r *http.Request) {
	j, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if !j.State.Terminal() || j.Result == nil {
		writeErr(w, http.StatusConflict, "job not finished")
		return
	}
	writeJSON(w, http.StatusOK, j.Result)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*entity.Job, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	j, err := h.jobSvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "job not found")
			return nil, false
		}
		h.logger.ErrorContext(r.Context(), "get job failed", "job_id", id.String(), "error", err)
		writeErr(w, http.StatusInternalServerError, "could not read job")
		return nil, false
	}
	return j, true
}
