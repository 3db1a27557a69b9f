package poller

import (
	"context"
	"sync"
	"time"

	v0 "ai-appbuilder-be/pkg/v0"
)

const DefaultInterval = 3 * time.Second

// Fetcher returns the latest version status of a chat.
type Fetcher func(ctx context.Context, chatID string) (v0.VersionStatus, error)

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type Options struct {
	Interval       time.Duration
	OnStatusChange func(chatID string, status v0.VersionStatus)
	OnError        func(chatID string, err error)
	NewTicker      func(d time.Duration) Ticker
}

type Snapshot struct {
	ChatID  string
	Status  v0.VersionStatus
	Err     error
	Polling bool
}

// Poller follows one chat at a time until its latest version is terminal.
// Starting a new watch cancels the previous one, so there is never more than
// one loop or one in-flight fetch per Poller.
type Poller struct {
	fetch Fetcher
	opts  Options

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	snapshot   Snapshot
}

func New(fetch Fetcher, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.NewTicker == nil {
		opts.NewTicker = newRealTicker
	}
	closed := make(chan struct{})
	close(closed)
	return &Poller{fetch: fetch, opts: opts, done: closed}
}

// Watch (re)starts polling chatID. An empty id or enabled=false only stops
// the current loop.
func (p *Poller) Watch(ctx context.Context, chatID string, enabled bool) {
	p.Stop()
	if !enabled || chatID == "" {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.cancel = cancel
	p.done = done
	p.snapshot = Snapshot{ChatID: chatID, Polling: true}
	p.mu.Unlock()

	go p.run(loopCtx, gen, chatID, done)
}

// Stop cancels the current loop. Safe to call any number of times.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.generation++
	p.snapshot.Polling = false
}

func (p *Poller) Status() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

func (p *Poller) IsPolling() bool {
	return p.Status().Polling
}

// Done is closed when the current loop has exited.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *Poller) run(ctx context.Context, gen uint64, chatID string, done chan struct{}) {
	defer close(done)
	defer p.finish(gen)

	ticker := p.opts.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	if p.poll(ctx, gen, chatID) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			if p.poll(ctx, gen, chatID) {
				return
			}
		}
	}
}

// poll performs one fetch and reports whether the loop should end.
func (p *Poller) poll(ctx context.Context, gen uint64, chatID string) bool {
	status, err := p.fetch(ctx, chatID)

	p.mu.Lock()
	if gen != p.generation || ctx.Err() != nil {
		p.mu.Unlock()
		return true
	}
	if err != nil {
		p.snapshot.Err = err
		p.mu.Unlock()
		if p.opts.OnError != nil {
			p.opts.OnError(chatID, err)
		}
		return false
	}

	changed := status != p.snapshot.Status
	p.snapshot.Status = status
	p.snapshot.Err = nil
	terminal := status.IsTerminal()
	if terminal {
		p.snapshot.Polling = false
	}
	p.mu.Unlock()

	if changed && p.opts.OnStatusChange != nil {
		p.opts.OnStatusChange(chatID, status)
	}
	return terminal
}

func (p *Poller) finish(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen == p.generation {
		p.snapshot.Polling = false
		if p.cancel != nil {
			p.cancel()
			p.cancel = nil
		}
	}
}

type realTicker struct {
	t *time.Ticker
}

func newRealTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }
