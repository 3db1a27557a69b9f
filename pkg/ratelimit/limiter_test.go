package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLimiter_NoStoreAlwaysAdmits(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(nil, Options{Now: func() time.Time { return now }})

	for i := 0; i < 1000; i++ {
		res := l.Check(context.Background(), Identifier("1.2.3.4"))
		require.True(t, res.Admitted)
		require.Equal(t, 3, res.Remaining)
	}

	res := l.Check(context.Background(), Identifier("1.2.3.4"))
	assert.Equal(t, 3, res.Limit)
	assert.Equal(t, now.Add(12*time.Hour), res.Reset)
	assert.True(t, res.Degraded)
	assert.False(t, l.Enabled())
}

func TestLimiter_SlidingWindow(t *testing.T) {
	_, client := newRedis(t)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	l := NewLimiter(client, Options{Now: func() time.Time { return now }})
	ctx := context.Background()
	id := Identifier("10.0.0.1")

	for want := 2; want >= 0; want-- {
		res := l.Check(ctx, id)
		require.True(t, res.Admitted)
		assert.Equal(t, want, res.Remaining)
		now = now.Add(time.Minute)
	}

	rejected := l.Check(ctx, id)
	assert.False(t, rejected.Admitted)
	assert.Equal(t, 0, rejected.Remaining)
	first := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, first.Add(12*time.Hour).UnixMilli(), rejected.Reset.UnixMilli())

	other := l.Check(ctx, Identifier("10.0.0.2"))
	assert.True(t, other.Admitted, "identities have separate windows")

	// first admission falls out of the window
	now = first.Add(12*time.Hour + time.Millisecond)
	again := l.Check(ctx, id)
	assert.True(t, again.Admitted)
	assert.Equal(t, 0, again.Remaining)
}

func TestLimiter_StoreErrorFailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	var storeErr error
	l := NewLimiter(client, Options{
		Max:          1,
		OnStoreError: func(_ string, err error) { storeErr = err },
	})
	mr.Close()

	for i := 0; i < 5; i++ {
		res := l.Check(context.Background(), Identifier("10.0.0.1"))
		assert.True(t, res.Admitted)
		assert.True(t, res.Degraded)
	}
	assert.Error(t, storeErr)
}

func TestLimiter_KeyUsesPrefix(t *testing.T) {
	mr, client := newRedis(t)
	l := NewLimiter(client, Options{Prefix: "gen"})

	l.Check(context.Background(), "ip:1.1.1.1")

	assert.True(t, mr.Exists("gen:ip:1.1.1.1"))
	assert.Equal(t, "gen:ip:1.1.1.1", l.Key("ip:1.1.1.1"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded first hop", map[string]string{"X-Forwarded-For": " 203.0.113.5 , 10.0.0.1", "X-Real-IP": "198.51.100.1"}, "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.1", "CF-Connecting-IP": "192.0.2.1"}, "198.51.100.1"},
		{"cloudflare", map[string]string{"CF-Connecting-IP": "192.0.2.1"}, "192.0.2.1"},
		{"empty forwarded falls through", map[string]string{"X-Forwarded-For": " ", "CF-Connecting-IP": "192.0.2.1"}, "192.0.2.1"},
		{"none", map[string]string{}, UnknownIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(h.Get))
		})
	}
	assert.Equal(t, "ip:unknown", Identifier(UnknownIP))
}
