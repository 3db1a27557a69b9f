package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

type tickerFactory struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (tf *tickerFactory) New(time.Duration) Ticker {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1)}
	tf.tickers = append(tf.tickers, t)
	return t
}

func (tf *tickerFactory) last() *fakeTicker {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if len(tf.tickers) == 0 {
		return nil
	}
	return tf.tickers[len(tf.tickers)-1]
}

func (tf *tickerFactory) running() int {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	n := 0
	for _, t := range tf.tickers {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}

type changeLog struct {
	mu      sync.Mutex
	changes []v0.VersionStatus
}

func (c *changeLog) record(_ string, s v0.VersionStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, s)
}

func (c *changeLog) get() []v0.VersionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]v0.VersionStatus(nil), c.changes...)
}

func sequenceFetcher(calls *atomic.Int32, seq ...v0.VersionStatus) Fetcher {
	return func(ctx context.Context, chatID string) (v0.VersionStatus, error) {
		i := int(calls.Add(1)) - 1
		if i >= len(seq) {
			i = len(seq) - 1
		}
		return seq[i], nil
	}
}

func TestPoller_CallbackOnChangeAndStopOnTerminal(t *testing.T) {
	var calls atomic.Int32
	tickers := &tickerFactory{}
	log := &changeLog{}

	p := New(sequenceFetcher(&calls, v0.StatusPending, v0.StatusPending, v0.StatusCompleted), Options{
		OnStatusChange: log.record,
		NewTicker:      tickers.New,
	})

	p.Watch(context.Background(), "chat_1", true)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, tick)

	ticker := tickers.last()
	ticker.ch <- time.Now()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, waitFor, tick)

	ticker.ch <- time.Now()
	select {
	case <-p.Done():
	case <-time.After(waitFor):
		t.Fatal("poller did not stop after terminal status")
	}

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []v0.VersionStatus{v0.StatusPending, v0.StatusCompleted}, log.get())
	assert.True(t, ticker.stopped.Load())
	assert.False(t, p.IsPolling())
	assert.Equal(t, v0.StatusCompleted, p.Status().Status)

	// nobody is listening any more
	ticker.ch <- time.Now()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPoller_ErrorsAreRecordedAndPollingContinues(t *testing.T) {
	var calls atomic.Int32
	tickers := &tickerFactory{}
	log := &changeLog{}
	var errCount atomic.Int32
	boom := errors.New("status check failed")

	fetch := func(ctx context.Context, chatID string) (v0.VersionStatus, error) {
		if calls.Add(1) == 1 {
			return "", boom
		}
		return v0.StatusPending, nil
	}

	p := New(fetch, Options{
		OnStatusChange: log.record,
		OnError:        func(string, error) { errCount.Add(1) },
		NewTicker:      tickers.New,
	})
	defer p.Stop()

	p.Watch(context.Background(), "chat_1", true)
	require.Eventually(t, func() bool { return errCount.Load() == 1 }, waitFor, tick)

	snap := p.Status()
	assert.ErrorIs(t, snap.Err, boom)
	assert.True(t, snap.Polling)
	assert.Empty(t, log.get())

	tickers.last().ch <- time.Now()
	require.Eventually(t, func() bool { return len(log.get()) == 1 }, waitFor, tick)

	snap = p.Status()
	assert.NoError(t, snap.Err)
	assert.Equal(t, v0.StatusPending, snap.Status)
	assert.True(t, p.IsPolling())
}

func TestPoller_RestartCancelsPreviousLoop(t *testing.T) {
	var calls atomic.Int32
	tickers := &tickerFactory{}
	seen := make(chan string, 10)

	fetch := func(ctx context.Context, chatID string) (v0.VersionStatus, error) {
		calls.Add(1)
		seen <- chatID
		return v0.StatusPending, nil
	}

	p := New(fetch, Options{NewTicker: tickers.New})
	defer p.Stop()

	p.Watch(context.Background(), "chat_a", true)
	assert.Equal(t, "chat_a", <-seen)
	firstDone := p.Done()

	p.Watch(context.Background(), "chat_b", true)
	assert.Equal(t, "chat_b", <-seen)

	select {
	case <-firstDone:
	case <-time.After(waitFor):
		t.Fatal("previous loop still running")
	}
	require.Eventually(t, func() bool { return tickers.running() == 1 }, waitFor, tick)
	assert.Equal(t, "chat_b", p.Status().ChatID)
}

func TestPoller_DisabledOrEmptyDoesNotFetch(t *testing.T) {
	var calls atomic.Int32
	p := New(sequenceFetcher(&calls, v0.StatusPending), Options{NewTicker: (&tickerFactory{}).New})

	p.Watch(context.Background(), "", true)
	p.Watch(context.Background(), "chat_1", false)
	time.Sleep(20 * time.Millisecond)

	assert.Zero(t, calls.Load())
	assert.False(t, p.IsPolling())
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	tickers := &tickerFactory{}
	p := New(sequenceFetcher(&calls, v0.StatusPending), Options{NewTicker: tickers.New})

	p.Stop()
	p.Watch(context.Background(), "chat_1", true)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, tick)

	p.Stop()
	p.Stop()

	select {
	case <-p.Done():
	case <-time.After(waitFor):
		t.Fatal("loop did not exit")
	}
	assert.False(t, p.IsPolling())
	assert.Equal(t, 0, tickers.running())
}

func TestPoller_ContextCancellationStops(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	p := New(sequenceFetcher(&calls, v0.StatusPending), Options{NewTicker: (&tickerFactory{}).New})

	p.Watch(ctx, "chat_1", true)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, tick)
	cancel()

	select {
	case <-p.Done():
	case <-time.After(waitFor):
		t.Fatal("loop did not exit on context cancel")
	}
	assert.False(t, p.IsPolling())
}
