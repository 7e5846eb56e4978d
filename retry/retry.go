// Package retry wraps an idempotent async network operation with
// exponential backoff, a cancellation signal, and optional failure
// logging. It is the one place in this module that decides whether an
// error is worth retrying.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 60 * time.Second
	backoffFactor  = 2.0
)

// ErrCancelled is returned by WithRetry/WithLoggedRetry when the supplied
// context is done, either before the first attempt or between attempts.
// It is distinguishable from any transport or RPC error via errors.Is.
var ErrCancelled = errors.New("retry: cancelled")

// Op is a factory that produces a fresh attempt of an idempotent
// operation each time it is called.
type Op[T any] func(ctx context.Context) (T, error)

// OnFailure is invoked before each backoff sleep with the error that
// triggered it, the delay about to be slept, and the 1-based count of
// failures seen so far for this call to WithLoggedRetry.
type OnFailure func(err error, nextDelay time.Duration, failureCount int)

// WithRetry invokes op until it succeeds or ctx is cancelled. Transient
// transport and RPC-status errors are retried with exponential backoff
// and jitter; any other error is returned immediately.
func WithRetry[T any](ctx context.Context, op Op[T]) (T, error) {
	return WithLoggedRetry(ctx, op, nil)
}

// WithLoggedRetry behaves like WithRetry but calls onFailure (if non-nil)
// before every backoff sleep.
func WithLoggedRetry[T any](ctx context.Context, op Op[T], onFailure OnFailure) (T, error) {
	var zero T
	delay := initialBackoff
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return zero, ErrCancelled
		default:
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if errors.Is(err, ErrCancelled) || ctx.Err() != nil {
			return zero, ErrCancelled
		}

		if !isTransient(err) {
			return zero, err
		}

		failures++
		wait := jitter(delay)
		if onFailure != nil {
			onFailure(err, wait, failures)
		}
		rtyLog.Debugf("retrying after transient error (attempt %d, wait %s): %v",
			failures, wait, err)

		select {
		case <-ctx.Done():
			return zero, ErrCancelled
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * backoffFactor)
		if delay > maxBackoff {
			delay = maxBackoff
		}
	}
}

// jitter returns a duration uniformly distributed in [d/2, d], a
// decorrelated jitter around the nominal backoff.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half+1)))
}

// isTransient classifies network/transport errors and the RPC status
// codes Unavailable, DeadlineExceeded, Internal, and ResourceExhausted as
// transient. Everything else -- authentication failures, malformed
// input, and any other permanent error -- is not retried.
func isTransient(err error) bool {
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Internal, codes.ResourceExhausted:
			return true
		default:
			return false
		}
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}
