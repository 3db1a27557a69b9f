package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/pkg/poller"
	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, chatID string) *Client {
	c := &Client{
		Hub:     hub,
		Send:    make(chan []byte, sendBuffer),
		ctx:     context.Background(),
		chat:    chatID,
		enabled: true,
	}
	c.poller = poller.New(func(context.Context, string) (v0.VersionStatus, error) {
		return v0.StatusPending, nil
	}, poller.Options{})
	return c
}

func TestHub_RegisterMoveUnregister(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	go hub.Run()
	defer hub.Stop()

	a := newTestClient(hub, "chat_1")
	b := newTestClient(hub, "chat_1")
	hub.Register(a)
	hub.Register(b)
	require.Eventually(t, func() bool { return hub.Watching("chat_1") == 2 }, time.Second, 5*time.Millisecond)

	hub.move(a, "chat_1", "chat_2")
	assert.Equal(t, 1, hub.Watching("chat_1"))
	assert.Equal(t, 1, hub.Watching("chat_2"))

	hub.Unregister(b)
	require.Eventually(t, func() bool { return hub.Watching("chat_1") == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-b.Send
	assert.False(t, open, "send channel is closed on unregister")

	// late frames after close are dropped, not panics
	b.onStatus("chat_1", v0.StatusCompleted)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	go hub.Run()

	c := newTestClient(hub, "chat_1")
	hub.Register(c)
	hub.Stop()

	select {
	case _, open := <-c.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("client not closed on stop")
	}

	late := newTestClient(hub, "chat_2")
	hub.Register(late)
	_, open := <-late.Send
	assert.False(t, open)
}

func TestClient_Frames(t *testing.T) {
	c := newTestClient(NewHub(logger.NewNopLogger()), "chat_1")

	c.onStatus("chat_1", v0.StatusCompleted)
	c.onError("chat_1", v0.NewNotFoundError("Chat not found"))
	c.onError("chat_1", errors.New("dial tcp: refused"))

	var frames []Frame
	for i := 0; i < 3; i++ {
		var f Frame
		require.NoError(t, json.Unmarshal(<-c.Send, &f))
		frames = append(frames, f)
	}

	assert.Equal(t, Frame{Type: "status", ChatID: "chat_1", Status: "completed", Terminal: true}, frames[0])
	assert.Equal(t, Frame{Type: "error", ChatID: "chat_1", Kind: "NOT_FOUND", Message: "Chat not found"}, frames[1])
	assert.Equal(t, "UNKNOWN_ERROR", frames[2].Kind)
}

func TestClient_SlowPeerDropsFrames(t *testing.T) {
	c := newTestClient(NewHub(logger.NewNopLogger()), "chat_1")
	for i := 0; i < sendBuffer*2; i++ {
		c.onStatus("chat_1", v0.StatusPending)
	}
	assert.Len(t, c.Send, sendBuffer)
}
