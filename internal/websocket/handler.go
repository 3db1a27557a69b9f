package websocket

import (
	"context"
	"time"

	"ai-appbuilder-be/pkg/poller"

	"github.com/gofiber/websocket/v2"
)

// ServeWs follows chatID on conn until the peer disconnects.
func ServeWs(hub *Hub, conn *websocket.Conn, fetch poller.Fetcher, interval time.Duration, chatID, identity string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &Client{
		Hub:      hub,
		Conn:     conn,
		Identity: identity,
		Send:     make(chan []byte, sendBuffer),
		ctx:      ctx,
		chat:     chatID,
		enabled:  true,
	}
	client.poller = poller.New(fetch, poller.Options{
		Interval:       interval,
		OnStatusChange: client.onStatus,
		OnError:        client.onError,
	})
	hub.Register(client)

	go client.writePump()
	client.poller.Watch(ctx, chatID, true)
	client.readPump()
}
