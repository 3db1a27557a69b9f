package dto

type RenameChatRequest struct {
	ChatId string
	Name   string `json:"name" validate:"required,max=100"`
}

type ForkChatRequest struct {
	ChatId    string `json:"chatId" validate:"required"`
	ProjectId string `json:"projectId"`
	VersionId string `json:"versionId"`
}

type FavoriteChatRequest struct {
	ChatId     string
	IsFavorite bool `json:"isFavorite"`
}

type ListChatsQuery struct {
	Limit      int   `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset     int   `query:"offset" validate:"omitempty,min=0"`
	IsFavorite *bool `query:"isFavorite"`
}

type ChatStatusResponse struct {
	ChatId    string `json:"chatId"`
	Status    string `json:"status"`
	VersionId string `json:"versionId,omitempty"`
	DemoUrl   string `json:"demoUrl,omitempty"`
	Terminal  bool   `json:"terminal"`
}

type DeleteChatResponse struct {
	ChatId  string `json:"chatId"`
	Deleted bool   `json:"deleted"`
}
