package retry

import (
	"context"
	"time"

	v0 "ai-appbuilder-be/pkg/v0"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Policy is a bounded linear-backoff retry policy. The zero value is usable
// and means the defaults.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable decides whether a failed attempt may be repeated. Defaults to v0.IsRetryable.
	Retryable func(error) bool
	// Sleep waits between attempts. Replaced with a fake clock in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each backoff wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// Do runs op until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent. Attempt n (1-based) is followed by a wait of
// BaseDelay*n. The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !p.Retryable(err) || attempt == p.MaxAttempts {
			break
		}

		delay := p.BaseDelay * time.Duration(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if sleepErr := p.Sleep(ctx, delay); sleepErr != nil {
			break
		}
	}
	return zero, lastErr
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.Retryable == nil {
		p.Retryable = v0.IsRetryable
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
