package cache

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a backend failure as transient. The redis backend
// wraps network errors with it; the file and null backends never fail
// transiently and return errors unwrapped.
type RetryableError struct{ Err error }

// Retryable wraps err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError anywhere in its
// chain.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// WithRetry runs op, retrying transient failures with doubling backoff.
// Permanent failures and context cancellation return immediately.
func WithRetry(ctx context.Context, op func() error) error {
	const attempts = 3

	var err error
	delay := time.Second
	for attempt := 1; ; attempt++ {
		if err = op(); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
