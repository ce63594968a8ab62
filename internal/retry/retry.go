package retry

import (
	"context"
	"github.com/pkg/errors"
	"time"
)

var ErrTooManyAttempts = errors.New("too many retry attempts")

// Callable gets the 1-based attempt number
type Callable func(attempt int) error

type retryableError struct {
	error
	attempt int
}

func (e *retryableError) Unwrap() error {
	return e.error
}

// Retryable marks err as worth another attempt, any other error stops the loop
func Retryable(err error, attempt int) error {
	if err == nil {
		return nil
	}
	return &retryableError{error: err, attempt: attempt}
}

// Policy waits Step after the first failure, 2*Step after the second and so on
type Policy struct {
	Step        time.Duration
	MaxAttempts int
}

func (p Policy) delay(attempt int) time.Duration {
	return time.Duration(attempt) * p.Step
}

// Do calls cb until it succeeds, returns a non retryable error,
// the attempts are exhausted or the context is done
func Do(ctx context.Context, p Policy, cb Callable) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := cb(attempt)
		if err == nil {
			return nil
		}

		var re *retryableError
		if !errors.As(err, &re) {
			return errors.Wrapf(err, "attempt %d failed", attempt)
		}

		lastErr = re.error
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), lastErr.Error())
		case <-time.After(p.delay(attempt)):
		}
	}

	return errors.Wrap(ErrTooManyAttempts, lastErr.Error())
}
