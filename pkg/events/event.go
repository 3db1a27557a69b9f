package events

import "time"

const (
	ChatStatusChanged   = "CHAT_STATUS_CHANGED"
	GenerationSubmitted = "GENERATION_SUBMITTED"
	GenerationFailed    = "GENERATION_FAILED"
)

// Event is anything that can be forwarded to the event bus.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewChatStatusChanged describes a chat whose latest version moved to status.
func NewChatStatusChanged(chatID, status, demoURL string, at time.Time) BaseEvent {
	data := map[string]interface{}{
		"chat_id": chatID,
		"status":  status,
	}
	if demoURL != "" {
		data["demo_url"] = demoURL
	}
	return BaseEvent{Type: ChatStatusChanged, Data: data, OccurredAt: at}
}

func NewGenerationEvent(eventType, generationID, chatID, identity string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"generation_id": generationID,
			"chat_id":       chatID,
			"identity":      identity,
		},
		OccurredAt: at,
	}
}
