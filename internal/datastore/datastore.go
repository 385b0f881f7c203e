package datastore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrStorageContention is returned when a write could not acquire the storage
// file lock within the bounded retries. Callers log it and fail the
// single operation; it must never crash a cycle.
var ErrStorageContention = errors.New("storage contention: write retries exhausted")

const (
	writeAttempts = 5
	writeBackoff  = 250 * time.Millisecond
)

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// WithWriteRetry runs op with a bounded constant-backoff retry on storage
// lock errors. The storage engine locks the whole file per writer, so every
// write in this package goes through here. Reads are never retried; a read
// failure is a hard I/O error.
func WithWriteRetry(ctx context.Context, op func() error) error {
	var lastErr error
	attempt := func() error {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if isLockError(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(writeBackoff), writeAttempts-1), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		if isLockError(lastErr) {
			return fmt.Errorf("%w: %v", ErrStorageContention, lastErr)
		}
		return err
	}

	return nil
}
