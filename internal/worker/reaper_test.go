package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/repository"
	"flight-hold-service/internal/repository/memory"
	"flight-hold-service/internal/service"
	"flight-hold-service/internal/worker"
)

func TestReaper_Sweep(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewJobRepository(time.Hour)
	queue := service.NewMemoryQueue(8)

	old := time.Now().UTC().Add(-2 * time.Hour)

	expired := entity.NewJob(jfkToLHR(), old)
	expired.Finish(entity.NotFoundOutcome(nil), old)
	require.NoError(t, repo.Create(ctx, expired))

	fresh := entity.NewJob(jfkToLHR(), time.Now().UTC())
	fresh.Finish(entity.NotFoundOutcome(nil), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, fresh))

	lost := entity.NewJob(jfkToLHR(), old)
	lost.State = entity.StateRunning
	require.NoError(t, repo.Create(ctx, lost))

	// Delivered but never acknowledged.
	require.NoError(t, queue.Enqueue(ctx, lost.ID.String()))
	_, err := queue.ClaimBlocking(ctx, time.Second)
	require.NoError(t, err)
	require.Zero(t, queue.Len())

	r := worker.NewReaper(repo, queue, worker.ReaperConfig{
		ResultTTL:      time.Hour,
		RunningTimeout: time.Minute,
	}, nil)
	r.Sweep(ctx)

	n, err := repo.DeleteExpired(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n, "expired record was not removed")

	_, err = repo.GetByID(ctx, fresh.ID)
	assert.NoError(t, err)

	got, err := repo.GetByID(ctx, lost.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StateFailed, got.State)
	require.NotNil(t, got.Result)
	assert.Equal(t, entity.OutcomeNotFound, got.Result.Status)
	assert.JSONEq(t, `{"message":"executor lost"}`, string(got.Result.Error))

	assert.Equal(t, 1, queue.Len())
}

func TestReaper_LateExecutorCannotOverwriteLostJob(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewJobRepository(time.Hour)

	old := time.Now().UTC().Add(-time.Hour)
	job := entity.NewJob(jfkToLHR(), old)
	job.State = entity.StateRunning
	require.NoError(t, repo.Create(ctx, job))

	worker.NewReaper(repo, nil, worker.ReaperConfig{RunningTimeout: time.Minute}, nil).Sweep(ctx)

	job.Finish(entity.HeldOutcome(nil, nil), time.Now().UTC())
	assert.ErrorIs(t, repo.Put(ctx, job), repository.ErrInvalidTransition)
}

func TestReaper_RunStopsOnCancel(t *testing.T) {
	repo := memory.NewJobRepository(time.Hour)
	r := worker.NewReaper(repo, service.NewMemoryQueue(1), worker.ReaperConfig{Interval: time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
