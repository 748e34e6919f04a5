package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by ClaimBlocking when nothing arrived in time.
var ErrQueueEmpty = errors.New("queue empty")

type Queue interface {
	Enqueue(ctx context.Context, jobID string) error
	ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error)
	Ack(ctx context.Context, jobID string) error
	RequeueStale(ctx context.Context, limit int64) (int64, error)
}

type QueueKeys struct {
	QueueKey      string
	ProcessingKey string
}

// redisQueue implements a reliable queue using Redis lists.
// Claim: BRPOPLPUSH queue -> processing
// Ack:   LREM from processing
// Delivery is at-least-once; JobService.Claim turns it into at-most-one
// execution through the store's conditional PENDING -> RUNNING update.
type redisQueue struct {
	rdb  redis.UniversalClient
	keys QueueKeys
}

func NewRedisQueue(rdb redis.UniversalClient, keys QueueKeys) Queue {
	return &redisQueue{rdb: rdb, keys: keys}
}

func (q *redisQueue) Enqueue(ctx context.Context, jobID string) error {
	return q.rdb.LPush(ctx, q.keys.QueueKey, jobID).Err()
}

func (q *redisQueue) ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = time.Second
	}

	id, err := q.rdb.BRPopLPush(ctx, q.keys.QueueKey, q.keys.ProcessingKey, timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrQueueEmpty
		}
		return "", err
	}
	return id, nil
}

func (q *redisQueue) Ack(ctx context.Context, jobID string) error {
	return q.rdb.LRem(ctx, q.keys.ProcessingKey, 1, jobID).Err()
}

// RequeueStale moves items from processing back to queue.
// It's a simple "reaper": ids whose job was already claimed are dropped
// again by JobService.Claim.
func (q *redisQueue) RequeueStale(ctx context.Context, limit int64) (int64, error) {
	var moved int64
	for i := int64(0); i < limit; i++ {
		id, err := q.rdb.RPopLPush(ctx, q.keys.ProcessingKey, q.keys.QueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				break
			}
			return moved, err
		}
		if id != "" {
			moved++
		}
	}
	return moved, nil
}
