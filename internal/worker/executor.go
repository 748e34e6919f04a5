package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/provider"
	"flight-hold-service/internal/repository"
)

const (
	DefaultMaxAttempts = 1
	DefaultRetryDelay  = 10 * time.Second

	storeWriteRetries = 3
	storeWriteDelay   = 200 * time.Millisecond
)

// JobStore is the part of the Result Store the executor writes to.
type JobStore interface {
	Put(ctx context.Context, job *entity.Job) error
}

type ExecutorConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

// Executor runs the search, price and hold pipeline for claimed jobs.
type Executor struct {
	provider provider.BookingProvider
	store    JobStore
	profile  provider.TravelerProfile
	cfg      ExecutorConfig
	logger   *slog.Logger
	now      func() time.Time
}

func NewExecutor(
	p provider.BookingProvider,
	store JobStore,
	profile provider.TravelerProfile,
	cfg ExecutorConfig,
	logger *slog.Logger,
) *Executor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		provider: p,
		store:    store,
		profile:  profile,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// stageFailure records why an attempt ended without an outcome. A nil err
// at SEARCH means the provider returned zero offers.
type stageFailure struct {
	stage  entity.Stage
	offers []entity.Offer
	err    error
}

func (f *stageFailure) Error() string {
	if f.err == nil {
		return fmt.Sprintf("%s: no offers", f.stage)
	}
	return fmt.Sprintf("%s: %v", f.stage, f.err)
}

func (f *stageFailure) fatal() bool {
	return provider.IsFatal(f.err)
}

// ErrJobLost is returned by Run when the record was finalized by someone
// else, usually the reaper, while the pipeline was still running.
var ErrJobLost = errors.New("job no longer owned by executor")

// Run executes job, which must already be RUNNING and owned by the caller.
// Every return path that reaches the store leaves the record terminal; the
// returned error reports a failure to store the final outcome or ErrJobLost.
func (e *Executor) Run(ctx context.Context, job *entity.Job) error {
	start := e.now()
	log := e.logger.With("job_id", job.ID.String())

	var (
		out  *entity.Outcome
		last *stageFailure
		lost error
	)

	op := func() error {
		job.AttemptCount++
		if err := e.progress(ctx, log, job, entity.StageSearch); err != nil {
			lost = err
			return backoff.Permanent(err)
		}
		log.InfoContext(ctx, "attempt started", "attempt", job.AttemptCount, "stage", job.Stage)

		res, fail, err := e.attempt(ctx, log, job)
		if err != nil {
			lost = err
			return backoff.Permanent(err)
		}
		if fail == nil {
			out = &res
			return nil
		}
		last = fail
		log.WarnContext(ctx, "attempt failed",
			"attempt", job.AttemptCount,
			"stage", fail.stage,
			"error", fail.Error(),
		)
		if fail.fatal() {
			return backoff.Permanent(fail)
		}
		return fail
	}

	// Retry errors are already captured in last; the outcome is derived
	// from the last failure rather than from the returned error.
	_ = backoff.Retry(op, e.retryPolicy(ctx))

	if lost != nil {
		log.WarnContext(ctx, "job abandoned",
			"attempt", job.AttemptCount,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", lost,
		)
		return fmt.Errorf("job %s: %w", job.ID, lost)
	}

	switch {
	case out == nil:
		res := failureOutcome(last)
		out = &res
		if last != nil {
			job.Stage = last.stage
		}
	case out.Status == entity.OutcomeHeld:
		job.Stage = entity.StageFinalize
	}

	job.Finish(*out, e.now().UTC())
	if err := e.storeFinal(ctx, job); err != nil {
		log.ErrorContext(ctx, "store outcome failed",
			"status", out.Status,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return fmt.Errorf("store outcome for job %s: %w", job.ID, err)
	}

	log.InfoContext(ctx, "job finished",
		"state", job.State,
		"stage", job.Stage,
		"status", out.Status,
		"attempt", job.AttemptCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// attempt runs the stages once. It returns either the outcome or the
// failure that ended the attempt. A non-nil error means the job was lost
// and no further provider call may be made.
func (e *Executor) attempt(ctx context.Context, log *slog.Logger, job *entity.Job) (entity.Outcome, *stageFailure, error) {
	offers, err := e.provider.Search(ctx, provider.QueryFromRequest(job.Request))
	if err != nil {
		return entity.Outcome{}, &stageFailure{stage: entity.StageSearch, err: err}, nil
	}
	if len(offers) == 0 {
		return entity.Outcome{}, &stageFailure{stage: entity.StageSearch}, nil
	}
	log.InfoContext(ctx, "offers found", "attempt", job.AttemptCount, "offers", len(offers))

	if err := e.progress(ctx, log, job, entity.StagePriceAndHold); err != nil {
		return entity.Outcome{}, nil, err
	}

	priced, err := e.provider.Price(ctx, offers[0])
	if err != nil {
		return entity.Outcome{}, &stageFailure{stage: entity.StagePriceAndHold, offers: offers, err: err}, nil
	}

	hold, err := e.provider.Hold(ctx, priced, e.profile)
	if err != nil {
		return entity.Outcome{}, &stageFailure{stage: entity.StagePriceAndHold, offers: offers, err: err}, nil
	}
	if hold.Failed() {
		return entity.HoldFailedOutcome(offers, hold.Error), nil, nil
	}
	return entity.HeldOutcome(offers, hold.Details), nil, nil
}

// progress persists the current stage and attempt count. It returns
// ErrJobLost once the record is terminal; any other write failure only
// costs visibility and is logged.
func (e *Executor) progress(ctx context.Context, log *slog.Logger, job *entity.Job, stage entity.Stage) error {
	job.Stage = stage
	job.UpdatedAt = e.now().UTC()
	err := e.store.Put(ctx, job)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrInvalidTransition):
		return fmt.Errorf("%w: %w", ErrJobLost, err)
	}
	log.WarnContext(ctx, "store progress failed", "attempt", job.AttemptCount, "stage", stage, "error", err)
	return nil
}

func (e *Executor) storeFinal(ctx context.Context, job *entity.Job) error {
	put := func() error {
		err := e.store.Put(ctx, job)
		if errors.Is(err, repository.ErrInvalidTransition) {
			return backoff.Permanent(err)
		}
		return err
	}
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(storeWriteDelay), storeWriteRetries)
	return backoff.Retry(put, backoff.WithContext(bo, ctx))
}

func (e *Executor) retryPolicy(ctx context.Context) backoff.BackOff {
	bo := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(e.cfg.RetryDelay),
		uint64(e.cfg.MaxAttempts-1),
	)
	return backoff.WithContext(bo, ctx)
}

func failureOutcome(f *stageFailure) entity.Outcome {
	if f == nil {
		return entity.NotFoundOutcome(nil)
	}
	if f.stage == entity.StageSearch {
		if f.err == nil {
			return entity.NotFoundOutcome(nil)
		}
		return entity.NotFoundOutcome(provider.Payload(f.err))
	}
	return entity.HoldFailedOutcome(f.offers, provider.Payload(f.err))
}
