package retry

import (
	"context"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	policy := Policy{Step: 2 * time.Millisecond, MaxAttempts: 4}

	t.Run("single successful try", func(t *testing.T) {
		runs := 0

		err := Do(context.Background(), policy, func(attempt int) error {
			runs++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, runs)
	})

	t.Run("success from the third time", func(t *testing.T) {
		runs := 0

		err := Do(context.Background(), policy, func(attempt int) error {
			runs++
			if attempt < 3 {
				return Retryable(errors.New("attempt failed"), attempt)
			}

			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, runs)
	})

	t.Run("fails when attempt limit is exhausted", func(t *testing.T) {
		runs := 0

		err := Do(context.Background(), policy, func(attempt int) error {
			runs++
			return Retryable(errors.New("server selection timeout"), attempt)
		})

		assert.True(t, errors.Is(err, ErrTooManyAttempts))
		assert.Contains(t, err.Error(), "server selection timeout")
		assert.Equal(t, 4, runs)
	})

	t.Run("fails if not a retryable error is returned from callback", func(t *testing.T) {
		runs := 0

		err := Do(context.Background(), policy, func(attempt int) error {
			runs++
			return errors.New("auth failed")
		})

		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrTooManyAttempts))
		assert.Equal(t, 1, runs)
	})

	t.Run("zero attempts means a single try", func(t *testing.T) {
		runs := 0

		err := Do(context.Background(), Policy{}, func(attempt int) error {
			runs++
			return Retryable(errors.New("attempt failed"), attempt)
		})

		assert.True(t, errors.Is(err, ErrTooManyAttempts))
		assert.Equal(t, 1, runs)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		runs := 0

		err := Do(ctx, Policy{Step: time.Second, MaxAttempts: 10}, func(attempt int) error {
			runs++
			cancel()
			return Retryable(errors.New("attempt failed"), attempt)
		})

		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 1, runs)
	})
}
