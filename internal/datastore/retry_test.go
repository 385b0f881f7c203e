package datastore_test

import (
	"context"
	"errors"
	"testing"

	"pigbot/internal/datastore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithWriteRetrySucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	err := datastore.WithWriteRetry(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithWriteRetryDoesNotRetryOtherErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("constraint violation")
	calls := 0
	err := datastore.WithWriteRetry(context.Background(), func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithWriteRetryRecoversFromLockError(t *testing.T) {
	t.Parallel()

	calls := 0
	err := datastore.WithWriteRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithWriteRetryExhaustsToContentionError(t *testing.T) {
	t.Parallel()

	calls := 0
	err := datastore.WithWriteRetry(context.Background(), func() error {
		calls++
		return errors.New("database is locked")
	})
	require.ErrorIs(t, err, datastore.ErrStorageContention)
	assert.Equal(t, 5, calls)
}
