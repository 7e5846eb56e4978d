package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	permanent := errors.New("bad input")
	_, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	})
	require.Error(t, err)
	assert.Same(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_TransientRetriedUntilSuccess(t *testing.T) {
	calls := 0
	transient := status.Error(codes.Unavailable, "not ready")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := WithLoggedRetry(ctx, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", transient
		}
		return "ok", nil
	}, func(err error, nextDelay time.Duration, failureCount int) {
		// onFailure cannot change the backoff: the two failures sleep at
		// most 1s and 2s, which fits inside the 5s context timeout.
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(ctx, func(ctx context.Context) (int, error) {
		t.Fatal("op should not be invoked on an already-cancelled context")
		return 0, nil
	})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(status.Error(codes.Unavailable, "x")))
	assert.True(t, isTransient(status.Error(codes.DeadlineExceeded, "x")))
	assert.True(t, isTransient(status.Error(codes.Internal, "x")))
	assert.True(t, isTransient(status.Error(codes.ResourceExhausted, "x")))
	assert.False(t, isTransient(status.Error(codes.InvalidArgument, "x")))
	assert.False(t, isTransient(errors.New("plain error")))
	assert.True(t, isTransient(context.DeadlineExceeded))
}
