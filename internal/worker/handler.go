package worker

import (
	"context"
	"errors"
)

// JobHandler executes one job type. Type must match jobs.job_type.
type JobHandler interface {
	Type() string

	// Handle receives the raw JSON payload. Returning a PermanentError fails
	// the job without further attempts.
	Handle(ctx context.Context, payload []byte) error
}

// PermanentError marks a failure that retrying cannot fix, such as a
// malformed payload.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewPermanentError wraps err as a PermanentError.
func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err wraps a PermanentError.
func IsPermanent(err error) bool {
	var permErr *PermanentError
	return errors.As(err, &permErr)
}
