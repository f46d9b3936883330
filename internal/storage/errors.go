package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotFound is returned when a requested object doesn't exist.
	ErrNotFound = errors.New("object not found")

	// ErrKeyExists is returned when Put targets a taken key without Overwrite.
	ErrKeyExists = errors.New("object already exists at this key")

	// ErrInvalidKey is returned for empty keys and path traversal attempts.
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrTooLarge is returned when an object exceeds the maximum allowed size.
	ErrTooLarge = errors.New("object exceeds maximum size")

	// ErrAccessDenied is returned when the provider rejects the credentials.
	ErrAccessDenied = errors.New("access denied")
)

// StorageError wraps a storage failure with the operation and key.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTooLarge reports whether err is ErrTooLarge.
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrTooLarge)
}

// readLimited buffers data, failing with ErrTooLarge past maxSize bytes.
// A maxSize of 0 disables the limit.
func readLimited(data io.Reader, maxSize int64) (*bytes.Reader, error) {
	var reader io.Reader = data
	if maxSize > 0 {
		reader = io.LimitReader(data, maxSize+1)
	}
	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	if maxSize > 0 && int64(len(buf)) > maxSize {
		return nil, ErrTooLarge
	}
	return bytes.NewReader(buf), nil
}
