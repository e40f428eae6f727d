package retry_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/engine/step/retry"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
)

func fastConfig(attempts int) config.RetryConfig {
	return config.RetryConfig{
		MaxAttempts:         attempts,
		InitialInterval:     1,
		MaxInterval:         2,
		Factor:              2.0,
		RetryableExceptions: []string{"net.OpError"},
	}
}

func TestShouldRetry(t *testing.T) {
	p := retry.NewRetryPolicy(fastConfig(3))

	assert.False(t, p.ShouldRetry(nil))
	assert.True(t, p.ShouldRetry(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.True(t, p.ShouldRetry(errors.New("rpc error: code = Unavailable")))
	assert.True(t, p.ShouldRetry(context.DeadlineExceeded))
	assert.False(t, p.ShouldRetry(errors.New("schema mismatch")))
	assert.False(t, p.ShouldRetry(exception.NewBatchError("writer", "bad", errors.New("unavailable"), false, false)))
	assert.True(t, p.ShouldRetry(exception.NewBatchError("writer", "flaky", nil, false, true)))
}

func TestMaxAttemptsFloor(t *testing.T) {
	assert.Equal(t, 1, retry.NewRetryPolicy(config.RetryConfig{}).GetMaxAttempts())
}

func TestDo_RetriesTemporaryUntilSuccess(t *testing.T) {
	p := retry.NewRetryPolicy(fastConfig(3))
	calls := 0
	var retried []int

	err := retry.Do(context.Background(), p, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	}, func(attempt int, _ error) { retried = append(retried, attempt) })

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_StopsAfterMaxAttempts(t *testing.T) {
	p := retry.NewRetryPolicy(fastConfig(2))
	calls := 0
	err := retry.Do(context.Background(), p, func() error {
		calls++
		return errors.New("timeout")
	}, nil)

	assert.EqualError(t, err, "timeout")
	assert.Equal(t, 2, calls)
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	p := retry.NewRetryPolicy(fastConfig(5))
	calls := 0
	err := retry.Do(context.Background(), p, func() error {
		calls++
		return errors.New("invalid predicate")
	}, nil)

	assert.EqualError(t, err, "invalid predicate")
	assert.Equal(t, 1, calls)
}

func TestDo_SingleAttemptByDefault(t *testing.T) {
	p := retry.NewRetryPolicy(config.RetryConfig{MaxAttempts: 1})
	calls := 0
	err := retry.Do(context.Background(), p, func() error {
		calls++
		return errors.New("unavailable")
	}, nil)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
