package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/repository"
)

var (
	ErrNotFound = repository.ErrNotFound

	// ErrNoJob is returned by Claim when nothing claimable arrived.
	ErrNoJob = errors.New("no job available")
)

// Result Store port (implementations: postgresql.JobRepository,
// memory.JobRepository).
type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	Put(ctx context.Context, job *entity.Job) error
	MarkRunning(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	FailStale(ctx context.Context, updatedBefore time.Time, out entity.Outcome) (int64, error)
}

// JobService is the dispatcher: it accepts submissions and hands claimed
// jobs to executors.
type JobService struct {
	repo   JobRepository
	queue  Queue
	logger *slog.Logger
	now    func() time.Time
}

func NewJobService(repo JobRepository, queue Queue, logger *slog.Logger) *JobService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{repo: repo, queue: queue, logger: logger, now: time.Now}
}

// Submit validates req, stores a PENDING record and enqueues it. Invalid
// requests fail with *entity.ValidationError and leave no record.
func (s *JobService) Submit(ctx context.Context, req entity.JobRequest) (uuid.UUID, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	job := entity.NewJob(req, s.now().UTC())
	if err := s.repo.Create(ctx, job); err != nil {
		return uuid.Nil, fmt.Errorf("store job: %w", err)
	}

	if err := s.queue.Enqueue(ctx, job.ID.String()); err != nil {
		s.logger.ErrorContext(ctx, "enqueue failed", "job_id", job.ID.String(), "error", err)

		// The record exists; finalize it so pollers do not wait forever.
		job.Finish(entity.NotFoundOutcome(entity.ErrorPayload("enqueue failed: "+err.Error())), s.now().UTC())
		if putErr := s.repo.Put(context.WithoutCancel(ctx), job); putErr != nil {
			return uuid.Nil, fmt.Errorf("enqueue job: %w", errors.Join(err, putErr))
		}
		return uuid.Nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.logger.InfoContext(ctx, "job submitted",
		"job_id", job.ID.String(),
		"from", req.FromLocation,
		"to", req.ToLocation,
		"date", req.DepartureDate,
	)
	return job.ID, nil
}

func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return s.repo.GetByID(ctx, id)
}

// Claim waits up to wait for a queued id and atomically moves its record
// from PENDING to RUNNING. The returned job belongs to the caller alone.
// Ids whose record is no longer PENDING are acknowledged and skipped.
func (s *JobService) Claim(ctx context.Context, wait time.Duration) (*entity.Job, error) {
	jobID, err := s.queue.ClaimBlocking(ctx, wait)
	if err != nil {
		if errors.Is(err, ErrQueueEmpty) {
			return nil, ErrNoJob
		}
		return nil, err
	}

	id, err := uuid.Parse(jobID)
	if err != nil {
		s.logger.WarnContext(ctx, "dropping malformed queue entry", "job_id", jobID, "error", err)
		s.ack(ctx, jobID)
		return nil, ErrNoJob
	}

	job, err := s.repo.MarkRunning(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotClaimable) {
			s.logger.InfoContext(ctx, "skipping already claimed job", "job_id", jobID)
			s.ack(ctx, jobID)
			return nil, ErrNoJob
		}
		// Leave the id in processing; the queue reaper returns it.
		return nil, fmt.Errorf("claim job %s: %w", jobID, err)
	}
	return job, nil
}

// Ack releases the queue delivery of a job whose execution has ended.
func (s *JobService) Ack(ctx context.Context, id uuid.UUID) error {
	return s.queue.Ack(ctx, id.String())
}

func (s *JobService) ack(ctx context.Context, jobID string) {
	if err := s.queue.Ack(ctx, jobID); err != nil {
		s.logger.ErrorContext(ctx, "ack failed", "job_id", jobID, "error", err)
	}
}
