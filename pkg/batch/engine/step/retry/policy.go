// Package retry decides whether a failed batch write is attempted again and
// how long to wait between attempts.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
)

// RetryPolicy defines retry logic for one unit of work.
type RetryPolicy interface {
	// ShouldRetry determines if a given error is retryable.
	ShouldRetry(err error) bool
	// NewBackOff returns a fresh backoff schedule for one unit of work.
	NewBackOff() backoff.BackOff
	// GetMaxAttempts returns the maximum number of attempts, the first included.
	GetMaxAttempts() int
}

type defaultRetryPolicy struct {
	maxAttempts         int
	initialInterval     time.Duration
	maxInterval         time.Duration
	factor              float64
	retryableExceptions []string
}

// NewRetryPolicy creates a RetryPolicy from cfg. MaxAttempts below 1 is treated as 1.
func NewRetryPolicy(cfg config.RetryConfig) RetryPolicy {
	p := &defaultRetryPolicy{
		maxAttempts:         cfg.MaxAttempts,
		initialInterval:     time.Duration(cfg.InitialInterval) * time.Millisecond,
		maxInterval:         time.Duration(cfg.MaxInterval) * time.Millisecond,
		factor:              cfg.Factor,
		retryableExceptions: cfg.RetryableExceptions,
	}
	if p.maxAttempts < 1 {
		p.maxAttempts = 1
	}
	return p
}

// GetMaxAttempts returns the maximum number of attempts.
func (p *defaultRetryPolicy) GetMaxAttempts() int {
	return p.maxAttempts
}

// ShouldRetry reports true for BatchErrors flagged retryable, errors matching
// a configured exception name, and errors that look temporary.
func (p *defaultRetryPolicy) ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if exception.IsBatchError(err) {
		return exception.IsTemporary(err)
	}
	for _, typeName := range p.retryableExceptions {
		if exception.IsErrorOfType(err, typeName) {
			return true
		}
	}
	return exception.IsTemporary(err)
}

// NewBackOff returns an exponential schedule bounded by the configured intervals.
func (p *defaultRetryPolicy) NewBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.initialInterval > 0 {
		b.InitialInterval = p.initialInterval
	}
	if p.maxInterval > 0 {
		b.MaxInterval = p.maxInterval
	}
	if p.factor >= 1 {
		b.Multiplier = p.factor
	}
	// attempts bound the schedule, not elapsed time
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Do runs op until it succeeds, returns an error the policy will not retry,
// exhausts the attempts, or ctx is done. onRetry is called before each
// retry with the attempt number that failed.
func Do(ctx context.Context, policy RetryPolicy, op func() error, onRetry func(attempt int, err error)) error {
	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !policy.ShouldRetry(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, _ time.Duration) {
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(policy.NewBackOff(), uint64(policy.GetMaxAttempts()-1)),
		ctx,
	)
	return backoff.RetryNotify(wrapped, b, notify)
}

var _ RetryPolicy = (*defaultRetryPolicy)(nil)
