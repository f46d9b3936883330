// Package worker runs background jobs stored in the jobs table.
//
// Jobs are dequeued with FOR UPDATE SKIP LOCKED, so several workers (and
// several server instances) can poll the same table. Failed jobs are retried
// with exponential backoff until max_attempts is reached.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DukeRupert/estoque/internal/metrics"
	"github.com/DukeRupert/estoque/internal/repository"
)

// Worker manages background job processing with concurrent workers.
type Worker struct {
	jobs     repository.JobQuerier
	dequeue  func(ctx context.Context) (repository.Job, error)
	handlers map[string]JobHandler
	config   Config
	logger   *slog.Logger

	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a new Worker with the given configuration.
// The worker must be started with Start() and stopped with Stop().
func New(db *sql.DB, queries *repository.Queries, config Config, logger *slog.Logger) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	w := newWorker(queries, config, logger)
	w.dequeue = func(ctx context.Context) (repository.Job, error) {
		return dequeueInTx(ctx, db, queries)
	}
	return w, nil
}

func newWorker(jobs repository.JobQuerier, config Config, logger *slog.Logger) *Worker {
	return &Worker{
		jobs:     jobs,
		handlers: make(map[string]JobHandler),
		config:   config,
		logger:   logger.With("component", "worker"),
		stopCh:   make(chan struct{}),
	}
}

// Register adds a job handler to the worker.
// The handler's Type() must be unique. Call this before Start().
func (w *Worker) Register(handler JobHandler) {
	jobType := handler.Type()
	if _, exists := w.handlers[jobType]; exists {
		w.logger.Warn("Overwriting existing handler", "job_type", jobType)
	}
	w.handlers[jobType] = handler
	w.logger.Debug("Registered job handler", "job_type", jobType)
}

// Start recovers stale jobs left by a crashed process and launches the
// polling goroutines.
func (w *Worker) Start(ctx context.Context) {
	if err := w.recoverStaleJobs(ctx); err != nil {
		w.logger.Error("Failed to recover stale jobs", "error", err)
	}

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.runWorker(ctx, i+1)
	}

	w.logger.Info("Worker started", "concurrency", w.config.Concurrency)
}

// Stop signals all workers to stop and waits up to ShutdownTimeout for
// running jobs to finish. Calling Stop more than once is safe.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopCh)
	})

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Worker stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		w.logger.Warn("Worker shutdown timeout exceeded, some jobs may still be running")
	}
}

func (w *Worker) recoverStaleJobs(ctx context.Context) error {
	count, err := w.jobs.RecoverStaleJobs(ctx, w.config.StaleJobThreshold.Seconds())
	if err != nil {
		return fmt.Errorf("recover stale jobs: %w", err)
	}

	if count > 0 {
		w.logger.Warn("Recovered stale jobs", "count", count, "threshold", w.config.StaleJobThreshold)
	}
	return nil
}

func (w *Worker) runWorker(ctx context.Context, workerID int) {
	defer w.wg.Done()

	logger := w.logger.With("worker_id", workerID)
	logger.Debug("Worker started")

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			logger.Debug("Worker stopping")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processNextJob(ctx, logger); err != nil && !errors.Is(err, sql.ErrNoRows) {
				logger.Error("Failed to process job", "error", err)
			}
		}
	}
}

// dequeueInTx locks the next job and marks it running in one transaction.
func dequeueInTx(ctx context.Context, db *sql.DB, queries *repository.Queries) (repository.Job, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return repository.Job{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := queries.WithTx(tx)

	job, err := qtx.DequeueJob(ctx)
	if err != nil {
		return repository.Job{}, err
	}

	if err := qtx.UpdateJobStarted(ctx, job.ID); err != nil {
		return repository.Job{}, fmt.Errorf("mark job started: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return repository.Job{}, fmt.Errorf("commit dequeue: %w", err)
	}
	return job, nil
}

// processNextJob dequeues and executes a single job.
// Returns sql.ErrNoRows if no jobs are available.
func (w *Worker) processNextJob(ctx context.Context, logger *slog.Logger) error {
	job, err := w.dequeue(ctx)
	if err != nil {
		return err
	}

	logger = logger.With("job_id", job.ID, "job_type", job.JobType, "attempt", job.Attempts+1)
	logger.Info("Processing job")

	start := time.Now()
	err = w.executeJob(ctx, job)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("Job failed", "error", err)
		w.markJobFailed(ctx, job, err, elapsed)
		return fmt.Errorf("execute job: %w", err)
	}

	logger.Info("Job completed", "duration_ms", elapsed.Milliseconds())
	metrics.JobCompleted(job.JobType, elapsed)
	if err := w.jobs.UpdateJobCompleted(ctx, job.ID); err != nil {
		return fmt.Errorf("update job completed: %w", err)
	}
	return nil
}

// executeJob runs the handler registered for the job type under JobTimeout.
func (w *Worker) executeJob(ctx context.Context, job repository.Job) error {
	handler, ok := w.handlers[job.JobType]
	if !ok {
		return NewPermanentError(fmt.Errorf("no handler registered for job type: %s", job.JobType))
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
	defer cancel()

	return handler.Handle(jobCtx, job.Payload)
}

// markJobFailed reschedules the job, or fails it for good when the error is
// permanent or this was the last attempt.
func (w *Worker) markJobFailed(ctx context.Context, job repository.Job, jobErr error, elapsed time.Duration) {
	permanent := IsPermanent(jobErr)
	exhausted := permanent || job.Attempts+1 >= job.MaxAttempts

	if !exhausted {
		metrics.JobRetried(job.JobType, elapsed)
	} else {
		metrics.JobFailed(job.JobType, elapsed)
		w.logger.Warn("Job failed, will not retry",
			"job_id", job.ID,
			"job_type", job.JobType,
			"permanent", permanent,
			"error", jobErr,
		)
	}

	params := repository.UpdateJobFailedParams{
		ID:           job.ID,
		ErrorMessage: sql.NullString{String: jobErr.Error(), Valid: true},
		Permanent:    permanent,
	}
	if err := w.jobs.UpdateJobFailed(ctx, params); err != nil {
		w.logger.Error("Failed to mark job as failed", "job_id", job.ID, "error", err)
	}
}
