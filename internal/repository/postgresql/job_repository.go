package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/repository"
)

var ErrNotFound = repository.ErrNotFound

type JobRepository struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

// NewJobRepository returns a store whose terminal records stop being
// visible ttl after they finish.
func NewJobRepository(pool *pgxpool.Pool, ttl time.Duration) *JobRepository {
	return &JobRepository{pool: pool, ttl: ttl, now: time.Now}
}

const jobColumns = `id, state, stage, attempt_count, request, result, created_at, updated_at, finished_at`

func (r *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	reqJSON, resultJSON, err := marshalJob(job)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO jobs (` + jobColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err = r.pool.Exec(ctx, q,
		job.ID, string(job.State), string(job.Stage), job.AttemptCount,
		reqJSON, resultJSON, job.CreatedAt, job.UpdatedAt, job.FinishedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return repository.ErrDuplicate
		}
		return wrapErr("insert job", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	const q = `
SELECT ` + jobColumns + `
FROM jobs
WHERE id = $1
  AND (finished_at IS NULL OR finished_at >= $2);
`
	job, err := scanJob(r.pool.QueryRow(ctx, q, id, r.cutoff()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapErr("get job", err)
	}
	return job, nil
}

// Put upserts job by id. The conflict clause only lets non-terminal rows
// move forward, so a stale writer can never revert a finished record.
func (r *JobRepository) Put(ctx context.Context, job *entity.Job) error {
	reqJSON, resultJSON, err := marshalJob(job)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO jobs (` + jobColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	state         = EXCLUDED.state,
	stage         = EXCLUDED.stage,
	attempt_count = EXCLUDED.attempt_count,
	result        = EXCLUDED.result,
	updated_at    = EXCLUDED.updated_at,
	finished_at   = EXCLUDED.finished_at
WHERE jobs.state IN ('PENDING', 'RUNNING')
  AND NOT (jobs.state = 'RUNNING' AND EXCLUDED.state = 'PENDING');
`
	tag, err := r.pool.Exec(ctx, q,
		job.ID, string(job.State), string(job.Stage), job.AttemptCount,
		reqJSON, resultJSON, job.CreatedAt, job.UpdatedAt, job.FinishedAt,
	)
	if err != nil {
		return wrapErr("put job", err)
	}
	if tag.RowsAffected() == 0 {
		return r.checkRepeatedFinal(ctx, job, resultJSON)
	}
	return nil
}

// checkRepeatedFinal treats a refused write as success when the stored row
// already holds the same terminal state and outcome.
func (r *JobRepository) checkRepeatedFinal(ctx context.Context, job *entity.Job, resultJSON []byte) error {
	const q = `SELECT state, result IS NOT DISTINCT FROM $2::jsonb FROM jobs WHERE id = $1;`
	var (
		stateText  string
		sameResult bool
	)
	if err := r.pool.QueryRow(ctx, q, job.ID, resultJSON).Scan(&stateText, &sameResult); err != nil {
		return wrapErr("put job", err)
	}
	cur := entity.JobState(stateText)
	if cur.Terminal() && cur == job.State && sameResult {
		return nil
	}
	return repository.ErrInvalidTransition
}

// MarkRunning atomically moves a PENDING row to RUNNING. Concurrent
// callers race on the row lock; only one sees the row returned.
func (r *JobRepository) MarkRunning(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	const q = `
UPDATE jobs
SET state = 'RUNNING', updated_at = $2
WHERE id = $1 AND state = 'PENDING'
RETURNING ` + jobColumns + `;
`
	job, err := scanJob(r.pool.QueryRow(ctx, q, id, r.now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotClaimable
		}
		return nil, wrapErr("mark running", err)
	}
	return job, nil
}

func (r *JobRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM jobs WHERE state IN ('SUCCEEDED', 'FAILED') AND finished_at < $1;`

	tag, err := r.pool.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, wrapErr("delete expired", err)
	}
	return tag.RowsAffected(), nil
}

// FailStale finalizes RUNNING rows whose executor stopped reporting
// progress before updatedBefore.
func (r *JobRepository) FailStale(ctx context.Context, updatedBefore time.Time, out entity.Outcome) (int64, error) {
	resultJSON, err := json.Marshal(out)
	if err != nil {
		return 0, fmt.Errorf("marshal outcome: %w", err)
	}

	const q = `
UPDATE jobs
SET state = 'FAILED', result = $2, updated_at = $3, finished_at = $3
WHERE state = 'RUNNING' AND updated_at < $1;
`
	tag, err := r.pool.Exec(ctx, q, updatedBefore, resultJSON, r.now().UTC())
	if err != nil {
		return 0, wrapErr("fail stale", err)
	}
	return tag.RowsAffected(), nil
}

// wrapErr tags connection-class failures with repository.ErrUnavailable.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsConnectionException(pgErr.Code) {
		return fmt.Errorf("%s: %w: %w", op, repository.ErrUnavailable, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%s: %w: %w", op, repository.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *JobRepository) cutoff() time.Time {
	return r.now().UTC().Add(-r.ttl)
}

func marshalJob(job *entity.Job) (reqJSON, resultJSON []byte, err error) {
	reqJSON, err = json.Marshal(job.Request)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal request: %w", err)
	}
	if job.Result != nil {
		resultJSON, err = json.Marshal(job.Result)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal result: %w", err)
		}
	}
	return reqJSON, resultJSON, nil
}

func scanJob(row pgx.Row) (*entity.Job, error) {
	var (
		job         entity.Job
		stateText   string
		stageText   string
		reqBytes    []byte
		resultBytes []byte
		finishedAt  *time.Time
	)

	if err := row.Scan(
		&job.ID,
		&stateText,
		&stageText,
		&job.AttemptCount,
		&reqBytes,
		&resultBytes, // NULL => nil
		&job.CreatedAt,
		&job.UpdatedAt,
		&finishedAt, // NULL => nil
	); err != nil {
		return nil, err
	}

	job.State = entity.JobState(stateText)
	job.Stage = entity.Stage(stageText)
	job.FinishedAt = finishedAt
	if err := json.Unmarshal(reqBytes, &job.Request); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if resultBytes != nil {
		var out entity.Outcome
		if err := json.Unmarshal(resultBytes, &out); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		job.Result = &out
	}
	return &job, nil
}
