package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// JobQuerier holds the background job statements. They are kept apart from
// Querier because only the worker and its enqueuers use them.
type JobQuerier interface {
	EnqueueJob(ctx context.Context, arg EnqueueJobParams) (Job, error)
	DequeueJob(ctx context.Context) (Job, error)
	UpdateJobStarted(ctx context.Context, id uuid.UUID) error
	UpdateJobCompleted(ctx context.Context, id uuid.UUID) error
	UpdateJobFailed(ctx context.Context, arg UpdateJobFailedParams) error
	RecoverStaleJobs(ctx context.Context, thresholdSeconds float64) (int64, error)
}

var _ JobQuerier = (*Queries)(nil)

const jobColumns = `id, job_type, payload, status, priority, attempts, max_attempts, error_message, scheduled_at, started_at, completed_at, created_at`

func scanJob(row scanner, i *Job) error {
	return row.Scan(
		&i.ID,
		&i.JobType,
		&i.Payload,
		&i.Status,
		&i.Priority,
		&i.Attempts,
		&i.MaxAttempts,
		&i.ErrorMessage,
		&i.ScheduledAt,
		&i.StartedAt,
		&i.CompletedAt,
		&i.CreatedAt,
	)
}

const enqueueJob = `-- name: EnqueueJob :one
INSERT INTO jobs (job_type, payload, priority, max_attempts, scheduled_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + jobColumns

type EnqueueJobParams struct {
	JobType     string
	Payload     []byte
	Priority    int32
	MaxAttempts int32
	ScheduledAt time.Time
}

func (q *Queries) EnqueueJob(ctx context.Context, arg EnqueueJobParams) (Job, error) {
	row := q.db.QueryRowContext(ctx, enqueueJob,
		arg.JobType,
		arg.Payload,
		arg.Priority,
		arg.MaxAttempts,
		arg.ScheduledAt,
	)
	var i Job
	err := scanJob(row, &i)
	return i, err
}

const dequeueJob = `-- name: DequeueJob :one
SELECT ` + jobColumns + `
FROM jobs
WHERE status = 'pending' AND scheduled_at <= now()
ORDER BY priority DESC, scheduled_at ASC
LIMIT 1
FOR UPDATE SKIP LOCKED
`

// DequeueJob locks the next runnable job. It must run inside a transaction.
func (q *Queries) DequeueJob(ctx context.Context) (Job, error) {
	row := q.db.QueryRowContext(ctx, dequeueJob)
	var i Job
	err := scanJob(row, &i)
	return i, err
}

const updateJobStarted = `-- name: UpdateJobStarted :exec
UPDATE jobs
SET status = 'running', started_at = now(), attempts = attempts + 1
WHERE id = $1
`

func (q *Queries) UpdateJobStarted(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, updateJobStarted, id)
	return err
}

const updateJobCompleted = `-- name: UpdateJobCompleted :exec
UPDATE jobs
SET status = 'completed', completed_at = now(), error_message = NULL
WHERE id = $1
`

func (q *Queries) UpdateJobCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, updateJobCompleted, id)
	return err
}

const updateJobFailed = `-- name: UpdateJobFailed :exec
UPDATE jobs
SET status = CASE
        WHEN $3::boolean OR attempts >= max_attempts THEN 'failed'
        ELSE 'pending'
    END,
    error_message = $2,
    scheduled_at = CASE
        WHEN $3::boolean OR attempts >= max_attempts THEN scheduled_at
        ELSE now() + (power(2, attempts) * interval '30 seconds')
    END,
    completed_at = CASE
        WHEN $3::boolean OR attempts >= max_attempts THEN now()
        ELSE NULL
    END
WHERE id = $1
`

type UpdateJobFailedParams struct {
	ID           uuid.UUID
	ErrorMessage sql.NullString
	Permanent    bool
}

// UpdateJobFailed reschedules the job with exponential backoff, or marks it
// failed once attempts are exhausted or the failure is permanent.
func (q *Queries) UpdateJobFailed(ctx context.Context, arg UpdateJobFailedParams) error {
	_, err := q.db.ExecContext(ctx, updateJobFailed, arg.ID, arg.ErrorMessage, arg.Permanent)
	return err
}

const recoverStaleJobs = `-- name: RecoverStaleJobs :execrows
UPDATE jobs
SET status = 'pending', started_at = NULL
WHERE status = 'running'
  AND started_at < now() - ($1::float8 * interval '1 second')
`

func (q *Queries) RecoverStaleJobs(ctx context.Context, thresholdSeconds float64) (int64, error) {
	result, err := q.db.ExecContext(ctx, recoverStaleJobs, thresholdSeconds)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
