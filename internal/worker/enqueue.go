package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DukeRupert/estoque/internal/repository"
)

// Job type constants - these must match the JobHandler.Type() values
const (
	JobTypeDeleteObjects = "delete_objects"
)

// Priority constants for job scheduling
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// DeleteObjectsPayload lists storage keys to remove.
type DeleteObjectsPayload struct {
	Keys []string `json:"keys"`
}

// Enqueuer is the part of repository.JobQuerier needed to add jobs.
type Enqueuer interface {
	EnqueueJob(ctx context.Context, arg repository.EnqueueJobParams) (repository.Job, error)
}

// EnqueueOption is a functional option for customizing job enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithDelay schedules the job to run after a delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = p.ScheduledAt.Add(delay)
	}
}

// EnqueueJob marshals payload and stores a pending job.
func EnqueueJob(
	ctx context.Context,
	queries Enqueuer,
	jobType string,
	payload interface{},
	opts ...EnqueueOption,
) (repository.Job, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.Job{}, fmt.Errorf("marshal payload: %w", err)
	}

	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: 5,
		ScheduledAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&params)
	}

	job, err := queries.EnqueueJob(ctx, params)
	if err != nil {
		return repository.Job{}, fmt.Errorf("enqueue job: %w", err)
	}
	return job, nil
}

// EnqueueDeleteObjects enqueues removal of the given storage keys.
func EnqueueDeleteObjects(ctx context.Context, queries Enqueuer, keys []string, opts ...EnqueueOption) (repository.Job, error) {
	return EnqueueJob(ctx, queries, JobTypeDeleteObjects, DeleteObjectsPayload{Keys: keys}, opts...)
}

// =============================================================================
// ObjectCleanup
// =============================================================================

// ObjectCleanup hands storage deletions to the job queue. It satisfies
// service.ImageCleanup.
type ObjectCleanup struct {
	queries Enqueuer
}

// NewObjectCleanup creates an ObjectCleanup enqueuing through queries.
func NewObjectCleanup(queries Enqueuer) *ObjectCleanup {
	return &ObjectCleanup{queries: queries}
}

// EnqueueImageDeletion queues keys for deletion. Keys are deleted in the
// background, so a slow or failing bucket never fails the request.
func (c *ObjectCleanup) EnqueueImageDeletion(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := EnqueueDeleteObjects(ctx, c.queries, keys, WithPriority(PriorityLow))
	return err
}
