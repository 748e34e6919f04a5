package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/service"
)

// Dispatcher hands out claimed jobs. Implemented by service.JobService.
type Dispatcher interface {
	Claim(ctx context.Context, wait time.Duration) (*entity.Job, error)
	Ack(ctx context.Context, id uuid.UUID) error
}

type Runner interface {
	Run(ctx context.Context, job *entity.Job) error
}

type Pool struct {
	dispatcher   Dispatcher
	runner       Runner
	workers      int
	claimTimeout time.Duration
	errorDelay   time.Duration
	logger       *slog.Logger
}

func NewPool(dispatcher Dispatcher, runner Runner, workers int, claimTimeout time.Duration, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if claimTimeout <= 0 {
		claimTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		dispatcher:   dispatcher,
		runner:       runner,
		workers:      workers,
		claimTimeout: claimTimeout,
		errorDelay:   time.Second,
		logger:       logger,
	}
}

// Run claims jobs until ctx is cancelled and then waits for the jobs that
// are running. Those jobs run on a context detached from ctx so a shutdown
// never leaves a claimed record without an outcome.
func (p *Pool) Run(ctx context.Context) {
	p.logger.InfoContext(ctx, "worker pool started", "workers", p.workers)

	runCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p.loop(ctx, runCtx, n)
		}(i + 1)
	}

	wg.Wait()
	p.logger.Info("worker pool stopped")
}

// loop claims a job only while its worker is idle, so a job turns RUNNING
// right before it starts.
func (p *Pool) loop(ctx, runCtx context.Context, worker int) {
	for ctx.Err() == nil {
		job, err := p.dispatcher.Claim(ctx, p.claimTimeout)
		if err != nil {
			if errors.Is(err, service.ErrNoJob) || ctx.Err() != nil {
				continue
			}
			p.logger.ErrorContext(ctx, "claim failed", "worker", worker, "error", err)
			select {
			case <-time.After(p.errorDelay):
			case <-ctx.Done():
			}
			continue
		}
		p.execute(runCtx, worker, job)
	}
}

func (p *Pool) execute(ctx context.Context, worker int, job *entity.Job) {
	if err := p.runner.Run(ctx, job); err != nil {
		p.logger.ErrorContext(ctx, "run job failed", "worker", worker, "job_id", job.ID.String(), "error", err)
	}

	// Ack in any case: the record is terminal, or the reaper finalizes it as
	// lost and a redelivered id is skipped by Claim.
	if err := p.dispatcher.Ack(ctx, job.ID); err != nil {
		p.logger.ErrorContext(ctx, "ack failed", "worker", worker, "job_id", job.ID.String(), "error", err)
	}
}
