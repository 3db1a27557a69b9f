package dto

import (
	"time"

	"github.com/google/uuid"
)

type AttachmentRequest struct {
	URL         string `json:"url" validate:"required,url"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

// GenerateRequest creates a new chat, or continues ChatId when set.
type GenerateRequest struct {
	Message          string              `json:"message" validate:"required"`
	ChatId           string              `json:"chatId"`
	ProjectId        string              `json:"projectId"`
	ModelId          string              `json:"modelId"`
	ImageGenerations bool                `json:"imageGenerations"`
	Thinking         bool                `json:"thinking"`
	Attachments      []AttachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

type GenerateResponse struct {
	Id        uuid.UUID `json:"id"`
	ChatId    string    `json:"chatId"`
	ProjectId string    `json:"projectId"`
	DemoUrl   string    `json:"demoUrl,omitempty"`
	Status    string    `json:"status,omitempty"`
}

type SendMessageRequest struct {
	ChatId           string
	Message          string              `json:"message" validate:"required"`
	ModelId          string              `json:"modelId"`
	ImageGenerations bool                `json:"imageGenerations"`
	Thinking         bool                `json:"thinking"`
	Attachments      []AttachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

type GenerationHistoryItem struct {
	Id           uuid.UUID  `json:"id"`
	Prompt       string     `json:"prompt"`
	ModelId      string     `json:"modelId"`
	ChatId       string     `json:"chatId,omitempty"`
	ProjectId    string     `json:"projectId,omitempty"`
	State        string     `json:"state"`
	LatestStatus string     `json:"latestStatus,omitempty"`
	DemoUrl      string     `json:"demoUrl,omitempty"`
	ErrorKind    string     `json:"errorKind,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

type ListGenerationsQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}
