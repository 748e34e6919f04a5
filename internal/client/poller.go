// Package client implements the submit-then-poll protocol used by callers
// of the dispatcher, in-process or over HTTP.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"flight-hold-service/internal/entity"
)

const (
	DefaultInterval = 2 * time.Second
	DefaultTimeout  = 5 * time.Minute
)

// JobSource reads job records. It must return ErrNotFound for unknown or
// expired ids.
type JobSource interface {
	GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error)
}

// SourceFunc adapts a function such as service.JobService.Get to JobSource.
type SourceFunc func(ctx context.Context, id uuid.UUID) (*entity.Job, error)

func (f SourceFunc) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return f(ctx, id)
}

type Poller struct {
	source   JobSource
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

type PollerOption func(*Poller)

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithTimeout(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewPoller(source JobSource, opts ...PollerOption) *Poller {
	p := &Poller{
		source:   source,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Wait polls id until it reaches SUCCEEDED or FAILED and returns the
// terminal record. Other read errors are logged and retried on the next
// tick. The poller never writes to the record.
func (p *Poller) Wait(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var lastErr error
	for {
		job, err := p.source.GetJob(ctx, id)
		switch {
		case err == nil:
			if job.State.Terminal() {
				return job, nil
			}
			lastErr = nil
		case errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("job %s: %w", id, ErrExpired)
		case ctx.Err() == nil:
			lastErr = err
			p.logger.WarnContext(ctx, "poll failed", "job_id", id.String(), "error", err)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				if lastErr != nil {
					return nil, fmt.Errorf("job %s: %w (last error: %v)", id, ErrTimeout, lastErr)
				}
				return nil, fmt.Errorf("job %s: %w", id, ErrTimeout)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
