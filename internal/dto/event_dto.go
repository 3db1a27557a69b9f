package dto

import "time"

// ChatStatusMessage travels on the in-process bus whenever a tracked chat changes status.
type ChatStatusMessage struct {
	ChatId     string    `json:"chatId"`
	Status     string    `json:"status"`
	DemoUrl    string    `json:"demoUrl,omitempty"`
	ObservedAt time.Time `json:"observedAt"`
}
