package dto

type CreateDeploymentRequest struct {
	ProjectId string `json:"projectId" validate:"required"`
	ChatId    string `json:"chatId" validate:"required"`
	VersionId string `json:"versionId" validate:"required"`
}

type ListDeploymentsQuery struct {
	ProjectId string `query:"projectId"`
	ChatId    string `query:"chatId"`
	VersionId string `query:"versionId"`
}

type DeploymentLogsQuery struct {
	Since *int64 `query:"since"`
}
