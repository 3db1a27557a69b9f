package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	return ctx.Err()
}

func testPolicy(clock *fakeClock) Policy {
	p := DefaultPolicy()
	p.Sleep = clock.Sleep
	return p
}

func TestDo_SucceedsOnThirdAttempt(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	got, err := Do(context.Background(), testPolicy(clock), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &v0.Error{Kind: v0.KindAPI, Message: "Failed to create chat: upstream hiccup"}
		}
		return "chat_1", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "chat_1", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clock.sleeps)
}

func TestDo_TerminalKindsAreNotRetried(t *testing.T) {
	kinds := []v0.ErrorKind{v0.KindAPIKey, v0.KindValidation, v0.KindNotFound, v0.KindRateLimit}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			clock := &fakeClock{}
			calls := 0
			want := &v0.Error{Kind: kind, Message: "nope"}

			_, err := Do(context.Background(), testPolicy(clock), func(ctx context.Context) (int, error) {
				calls++
				return 0, want
			})

			assert.Same(t, want, err)
			assert.Equal(t, 1, calls)
			assert.Empty(t, clock.sleeps)
		})
	}
}

func TestDo_ExhaustionReturnsLastError(t *testing.T) {
	clock := &fakeClock{}
	calls := 0
	var last error

	_, err := Do(context.Background(), testPolicy(clock), func(ctx context.Context) (int, error) {
		calls++
		last = &v0.Error{Kind: v0.KindUnknown, Message: "attempt failed"}
		return 0, last
	})

	assert.Same(t, last, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, clock.sleeps, 2)
}

func TestDo_CustomAttemptsAndDelay(t *testing.T) {
	clock := &fakeClock{}
	p := Policy{MaxAttempts: 4, BaseDelay: 10 * time.Millisecond, Sleep: clock.Sleep}
	var retried []int
	p.OnRetry = func(attempt int, delay time.Duration, err error) {
		retried = append(retried, attempt)
	}

	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		return 0, errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, []int{1, 2, 3}, retried)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}, clock.sleeps)
}

func TestDo_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	want := &v0.Error{Kind: v0.KindAPI, Message: "boom"}

	p := Policy{BaseDelay: time.Hour}
	p.OnRetry = func(int, time.Duration, error) { cancel() }

	_, err := Do(ctx, p, func(ctx context.Context) (int, error) {
		calls++
		return 0, want
	})

	assert.Same(t, want, err)
	assert.Equal(t, 1, calls)
}
