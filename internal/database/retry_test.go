package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryableWriteSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := retryableWrite(context.Background(), "test op", func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryableWriteRetriesLockedDatabase(t *testing.T) {
	calls := 0
	err := retryableWrite(context.Background(), "test op", func() error {
		calls++
		if calls < 2 {
			return fmt.Errorf("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryableWriteStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := retryableWrite(context.Background(), "test op", func() error {
		calls++
		return fmt.Errorf("UNIQUE constraint failed: messages.chat_id")
	})
	assert.ErrorContains(t, err, "non-retryable")
	assert.Equal(t, 1, calls)
}

func TestRetryableWriteRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retryableWrite(ctx, "test op", func() error {
		return fmt.Errorf("database is locked")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableDBError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"locked", fmt.Errorf("database is locked"), true},
		{"disk io", fmt.Errorf("disk I/O error"), true},
		{"unique constraint", fmt.Errorf("UNIQUE constraint failed"), false},
		{"missing table", fmt.Errorf("no such table: messages"), false},
		{"context canceled", context.Canceled, false},
		{"unknown", fmt.Errorf("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableDBError(tt.err))
		})
	}
}
