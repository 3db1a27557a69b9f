package dto

import v0 "ai-appbuilder-be/pkg/v0"

type CreateProjectRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	Instructions string `json:"instructions"`
}

type OverviewResponse struct {
	Projects []v0.ProjectSummary `json:"projects"`
	Chats    []v0.ChatSummary    `json:"chats"`
}
