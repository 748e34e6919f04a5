// Package memory is an in-process Result Store for single-process
// deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/repository"
)

type JobRepository struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*entity.Job
	ttl  time.Duration
	now  func() time.Time
}

type Option func(*JobRepository)

// WithClock replaces time.Now, used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(r *JobRepository) { r.now = now }
}

func NewJobRepository(ttl time.Duration, opts ...Option) *JobRepository {
	r := &JobRepository{
		jobs: make(map[uuid.UUID]*entity.Job),
		ttl:  ttl,
		now:  time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *JobRepository) Create(_ context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.ID]; ok {
		return repository.ErrDuplicate
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *JobRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok || j.Expired(r.cutoff()) {
		return nil, repository.ErrNotFound
	}
	return j.Clone(), nil
}

func (r *JobRepository) Put(_ context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.jobs[job.ID]; ok {
		if cur.State.Terminal() && cur.State == job.State && entity.SameOutcome(cur.Result, job.Result) {
			return nil // repeated final write
		}
		if !entity.CanTransition(cur.State, job.State) {
			return repository.ErrInvalidTransition
		}
		next := job.Clone()
		next.Request = cur.Request
		next.CreatedAt = cur.CreatedAt
		r.jobs[job.ID] = next
		return nil
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *JobRepository) MarkRunning(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok || j.State != entity.StatePending {
		return nil, repository.ErrNotClaimable
	}
	j.State = entity.StateRunning
	j.UpdatedAt = r.now().UTC()
	return j.Clone(), nil
}

func (r *JobRepository) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, j := range r.jobs {
		if j.Expired(cutoff) {
			delete(r.jobs, id)
			n++
		}
	}
	return n, nil
}

func (r *JobRepository) FailStale(_ context.Context, updatedBefore time.Time, out entity.Outcome) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	var n int64
	for _, j := range r.jobs {
		if j.State == entity.StateRunning && j.UpdatedAt.Before(updatedBefore) {
			j.Finish(out, now)
			n++
		}
	}
	return n, nil
}

func (r *JobRepository) cutoff() time.Time {
	return r.now().UTC().Add(-r.ttl)
}
