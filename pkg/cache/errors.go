package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a remote cache backend cannot be reached.
var ErrUnavailable = errors.New("cache unavailable")

// RetryableError marks a failure that may go away on its own, such as a
// refused connection while Redis is still starting.
type RetryableError struct{ Err error }

// Retryable marks err for [RetryWithBackoff]. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether any error in err's chain was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Retry policy of RetryWithBackoff. Tests shorten RetryDelay.
var (
	RetryAttempts = 3
	RetryDelay    = time.Second
)

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// [Retryable], or has been called RetryAttempts times. The wait between calls
// starts at RetryDelay and doubles after each failure.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	wait := RetryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt >= RetryAttempts {
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}
