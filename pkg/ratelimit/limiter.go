package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultMax    = 3
	DefaultWindow = 12 * time.Hour
	DefaultPrefix = "v0_generation_limit"
)

type Result struct {
	Admitted  bool
	Limit     int
	Remaining int
	Reset     time.Time
	// Degraded is set when the answer was not backed by the store.
	Degraded bool
}

type Options struct {
	Max    int
	Window time.Duration
	Prefix string
	Now    func() time.Time
	// OnStoreError observes store failures; the check still admits.
	OnStoreError func(identifier string, err error)
}

// Limiter is a sliding-window admission counter backed by a Redis sorted set.
// Without a client, or when Redis fails, every check admits.
type Limiter struct {
	client *redis.Client
	opts   Options
}

// slidingWindow trims expired members, admits if under capacity and returns
// {admitted, count, resetMs}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local admitted = 0
if count < max then
	redis.call('ZADD', key, now, ARGV[4])
	count = count + 1
	admitted = 1
end
redis.call('PEXPIRE', key, window)

local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
	reset = tonumber(oldest[2]) + window
end
return {admitted, count, reset}
`)

func NewLimiter(client *redis.Client, opts Options) *Limiter {
	if opts.Max <= 0 {
		opts.Max = DefaultMax
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Limiter{client: client, opts: opts}
}

func (l *Limiter) Enabled() bool {
	return l.client != nil
}

func (l *Limiter) Key(identifier string) string {
	return fmt.Sprintf("%s:%s", l.opts.Prefix, identifier)
}

// Check records one attempt for identifier and reports whether it is admitted.
// It never returns an error: store problems degrade to admission.
func (l *Limiter) Check(ctx context.Context, identifier string) Result {
	now := l.opts.Now()
	if l.client == nil {
		return l.open(now)
	}

	raw, err := slidingWindow.Run(ctx, l.client,
		[]string{l.Key(identifier)},
		strconv.FormatInt(now.UnixMilli(), 10),
		strconv.FormatInt(l.opts.Window.Milliseconds(), 10),
		strconv.Itoa(l.opts.Max),
		uuid.NewString(),
	).Int64Slice()
	if err != nil || len(raw) != 3 {
		if err == nil {
			err = fmt.Errorf("unexpected script reply: %v", raw)
		}
		if l.opts.OnStoreError != nil {
			l.opts.OnStoreError(identifier, err)
		}
		return l.open(now)
	}

	admitted := raw[0] == 1
	remaining := l.opts.Max - int(raw[1])
	if !admitted || remaining < 0 {
		remaining = 0
	}
	return Result{
		Admitted:  admitted,
		Limit:     l.opts.Max,
		Remaining: remaining,
		Reset:     time.UnixMilli(raw[2]),
	}
}

func (l *Limiter) open(now time.Time) Result {
	return Result{
		Admitted:  true,
		Limit:     l.opts.Max,
		Remaining: l.opts.Max,
		Reset:     now.Add(l.opts.Window),
		Degraded:  true,
	}
}
