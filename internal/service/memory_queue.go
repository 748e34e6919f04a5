package service

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is a channel-backed Queue for single-process deployments.
// It tracks claimed-but-unacked ids so RequeueStale behaves like the Redis
// processing list.
type MemoryQueue struct {
	ch chan string

	mu       sync.Mutex
	inflight map[string]int
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryQueue{
		ch:       make(chan string, capacity),
		inflight: make(map[string]int),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, jobID string) error {
	select {
	case q.ch <- jobID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case id := <-q.ch:
		q.mu.Lock()
		q.inflight[id]++
		q.mu.Unlock()
		return id, nil
	case <-timer.C:
		return "", ErrQueueEmpty
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (q *MemoryQueue) Ack(_ context.Context, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n := q.inflight[jobID]; n > 1 {
		q.inflight[jobID] = n - 1
	} else {
		delete(q.inflight, jobID)
	}
	return nil
}

// RequeueStale moves up to limit unacked deliveries back to the queue, one
// entry per delivery as RPOPLPUSH does on the processing list.
func (q *MemoryQueue) RequeueStale(_ context.Context, limit int64) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var moved int64
	for id, n := range q.inflight {
		for ; n > 0; n-- {
			if moved >= limit {
				q.inflight[id] = n
				return moved, nil
			}
			select {
			case q.ch <- id:
				moved++
			default:
				q.inflight[id] = n
				return moved, nil
			}
		}
		delete(q.inflight, id)
	}
	return moved, nil
}

// Len reports ids waiting to be claimed.
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}
