// Package jobs contains the background job handlers run by the worker.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DukeRupert/estoque/internal/storage"
	"github.com/DukeRupert/estoque/internal/worker"
)

// DeleteObjectsHandler removes stored product images that are no longer
// referenced.
type DeleteObjectsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewDeleteObjectsHandler creates a new handler for object deletion jobs.
func NewDeleteObjectsHandler(store storage.Storage, logger *slog.Logger) *DeleteObjectsHandler {
	return &DeleteObjectsHandler{
		storage: store,
		logger:  logger,
	}
}

// Type returns the job type identifier.
func (h *DeleteObjectsHandler) Type() string {
	return worker.JobTypeDeleteObjects
}

// Handle deletes every key in the payload. Deleting a missing key succeeds,
// so a retried job only redoes the keys that failed before.
func (h *DeleteObjectsHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.DeleteObjectsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}

	var errs []error
	deleted := 0
	for _, key := range p.Keys {
		if key == "" {
			continue
		}
		if err := h.storage.Delete(ctx, key); err != nil {
			if errors.Is(err, storage.ErrInvalidKey) {
				h.logger.Warn("Skipping invalid storage key", "key", key, "error", err)
				continue
			}
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
			continue
		}
		deleted++
	}

	h.logger.Info("Deleted stored objects", "deleted", deleted, "failed", len(errs))
	return errors.Join(errs...)
}
