package websocket

import (
	"sync"

	"ai-appbuilder-be/internal/pkg/logger"
)

// Hub keeps track of open status streams, grouped by the chat they follow.
type Hub struct {
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	quit       chan struct{}

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.add(client, client.chatID())
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"chat_id": client.chatID(), "ip": client.Identity})

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client, client.chatID())
			h.mu.Unlock()
			client.close()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"chat_id": client.chatID(), "ip": client.Identity})

		case <-h.quit:
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					client.close()
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
		client.close()
	}
}

// Stop closes every stream and ends Run.
func (h *Hub) Stop() {
	close(h.quit)
}

// Watching reports how many open streams follow chatID.
func (h *Hub) Watching(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[chatID])
}

// move re-indexes a client that switched to another chat.
func (h *Hub) move(client *Client, from, to string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[from][client]; !ok {
		return
	}
	h.remove(client, from)
	h.add(client, to)
}

func (h *Hub) add(client *Client, chatID string) {
	set, ok := h.clients[chatID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[chatID] = set
	}
	set[client] = struct{}{}
}

func (h *Hub) remove(client *Client, chatID string) {
	set, ok := h.clients[chatID]
	if !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, chatID)
	}
}
