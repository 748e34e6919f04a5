package client

import (
	"sync"

	"github.com/google/uuid"

	"flight-hold-service/internal/entity"
)

// Session is the state a caller keeps between submitting a job and showing
// its outcome. The zero value is ready to use and safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	JobID       uuid.UUID
	LastOutcome *entity.Outcome
}

// Start forgets any previous job and begins tracking id.
func (s *Session) Start(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.JobID = id
	s.LastOutcome = nil
}

// Record stores the outcome of job if it is the tracked, terminal job.
// It reports whether the session changed.
func (s *Session) Record(job *entity.Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job == nil || job.ID != s.JobID || !job.State.Terminal() || job.Result == nil {
		return false
	}
	out := *job.Result
	s.LastOutcome = &out
	return true
}

// Pending reports whether a job is tracked and has no outcome yet.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.JobID != uuid.Nil && s.LastOutcome == nil
}

// Consume returns the recorded outcome once and clears the session.
func (s *Session) Consume() (entity.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LastOutcome == nil {
		return entity.Outcome{}, false
	}
	out := *s.LastOutcome
	s.LastOutcome = nil
	s.JobID = uuid.Nil
	return out, true
}
