package worker

import (
	"context"
	"log/slog"
	"time"

	"flight-hold-service/internal/entity"
)

// LostExecutorMessage is the error message stored on RUNNING jobs whose
// executor stopped reporting progress.
const LostExecutorMessage = "executor lost"

type ReaperStore interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	FailStale(ctx context.Context, updatedBefore time.Time, out entity.Outcome) (int64, error)
}

type Requeuer interface {
	RequeueStale(ctx context.Context, limit int64) (int64, error)
}

type ReaperConfig struct {
	Interval       time.Duration
	ResultTTL      time.Duration
	RunningTimeout time.Duration
	RequeueBatch   int64
}

// Reaper periodically drops expired results, finalizes jobs whose executor
// disappeared, and returns unacknowledged queue deliveries to the queue.
type Reaper struct {
	store  ReaperStore
	queue  Requeuer
	cfg    ReaperConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewReaper(store ReaperStore, queue Requeuer, cfg ReaperConfig, logger *slog.Logger) *Reaper {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	if cfg.RunningTimeout <= 0 {
		cfg.RunningTimeout = 15 * time.Minute
	}
	if cfg.RequeueBatch <= 0 {
		cfg.RequeueBatch = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reaper{store: store, queue: queue, cfg: cfg, logger: logger, now: time.Now}
}

func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Failures are logged and retried on the next tick.
func (r *Reaper) Sweep(ctx context.Context) {
	now := r.now().UTC()

	if n, err := r.store.DeleteExpired(ctx, now.Add(-r.cfg.ResultTTL)); err != nil {
		r.logger.ErrorContext(ctx, "delete expired failed", "error", err)
	} else if n > 0 {
		r.logger.InfoContext(ctx, "deleted expired jobs", "count", n)
	}

	lost := entity.NotFoundOutcome(entity.ErrorPayload(LostExecutorMessage))
	if n, err := r.store.FailStale(ctx, now.Add(-r.cfg.RunningTimeout), lost); err != nil {
		r.logger.ErrorContext(ctx, "fail stale failed", "error", err)
	} else if n > 0 {
		r.logger.WarnContext(ctx, "finalized lost jobs", "count", n)
	}

	if r.queue == nil {
		return
	}
	if n, err := r.queue.RequeueStale(ctx, r.cfg.RequeueBatch); err != nil {
		r.logger.ErrorContext(ctx, "requeue failed", "error", err)
	} else if n > 0 {
		r.logger.InfoContext(ctx, "requeued jobs from processing", "count", n)
	}
}
