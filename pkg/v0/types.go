package v0

import (
	"encoding/json"
	"strings"
)

type ModelID string

const (
	ModelSmall  ModelID = "v0-1.5-sm"
	ModelMedium ModelID = "v0-1.5-md"
	ModelLarge  ModelID = "v0-1.5-lg"
)

// ModelForTier maps a caller-facing tier (or legacy model name) to a remote model id.
// Unknown tiers fall back to medium.
func ModelForTier(tier string) ModelID {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "small", "gpt-3.5-turbo", string(ModelSmall):
		return ModelSmall
	case "large", "gpt-4", string(ModelLarge):
		return ModelLarge
	default:
		return ModelMedium
	}
}

type VersionStatus string

const (
	StatusPending   VersionStatus = "pending"
	StatusCompleted VersionStatus = "completed"
	StatusFailed    VersionStatus = "failed"
)

// IsTerminal reports whether no further transitions can happen for a version.
func (s VersionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Privacy string

const (
	PrivacyPublic   Privacy = "public"
	PrivacyPrivate  Privacy = "private"
	PrivacyTeam     Privacy = "team"
	PrivacyTeamEdit Privacy = "team-edit"
	PrivacyUnlisted Privacy = "unlisted"
)

type ModelConfiguration struct {
	ModelID          ModelID `json:"modelId"`
	ImageGenerations *bool   `json:"imageGenerations,omitempty"`
	Thinking         *bool   `json:"thinking,omitempty"`
}

type Attachment struct {
	URL         string `json:"url"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

type File struct {
	Object  string `json:"object,omitempty"`
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
}

type Version struct {
	ID      string        `json:"id"`
	Object  string        `json:"object,omitempty"`
	Status  VersionStatus `json:"status"`
	DemoURL string        `json:"demoUrl,omitempty"`
	Files   []File        `json:"files,omitempty"`
}

type Message struct {
	ID        string `json:"id"`
	Object    string `json:"object,omitempty"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	Type      string `json:"type"`
	Role      string `json:"role"`
}

type ChatSummary struct {
	ID            string   `json:"id"`
	Object        string   `json:"object,omitempty"`
	Shareable     bool     `json:"shareable"`
	Privacy       Privacy  `json:"privacy,omitempty"`
	Name          string   `json:"name,omitempty"`
	UpdatedAt     string   `json:"updatedAt,omitempty"`
	Favorite      bool     `json:"favorite"`
	AuthorID      string   `json:"authorId,omitempty"`
	ProjectID     string   `json:"projectId,omitempty"`
	LatestVersion *Version `json:"latestVersion,omitempty"`
}

// Status returns the latest version status, or "" when no version exists yet.
func (c ChatSummary) Status() VersionStatus {
	if c.LatestVersion == nil {
		return ""
	}
	return c.LatestVersion.Status
}

type ChatDetail struct {
	ChatSummary
	URL                string              `json:"url,omitempty"`
	Text               string              `json:"text,omitempty"`
	Messages           []Message           `json:"messages,omitempty"`
	ModelConfiguration *ModelConfiguration `json:"modelConfiguration,omitempty"`
}

type ProjectSummary struct {
	ID              string `json:"id"`
	Object          string `json:"object,omitempty"`
	Name            string `json:"name"`
	VercelProjectID string `json:"vercelProjectId,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
	APIURL          string `json:"apiUrl,omitempty"`
	WebURL          string `json:"webUrl,omitempty"`
}

type ProjectDetail struct {
	ProjectSummary
	Chats []ChatSummary `json:"chats"`
}

type DeploymentDetail struct {
	ID           string `json:"id"`
	Object       string `json:"object,omitempty"`
	InspectorURL string `json:"inspectorUrl,omitempty"`
	ChatID       string `json:"chatId"`
	ProjectID    string `json:"projectId"`
	VersionID    string `json:"versionId"`
	APIURL       string `json:"apiUrl,omitempty"`
	WebURL       string `json:"webUrl,omitempty"`
}

type DeploymentLogs struct {
	Error     string   `json:"error,omitempty"`
	Logs      []string `json:"logs"`
	NextSince *int64   `json:"nextSince,omitempty"`
}

type DeploymentErrors struct {
	Error          string `json:"error,omitempty"`
	FullErrorText  string `json:"fullErrorText,omitempty"`
	ErrorType      string `json:"errorType,omitempty"`
	FormattedError string `json:"formattedError,omitempty"`
}

type UserDetail struct {
	ID     string `json:"id"`
	Object string `json:"object,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// UserBilling keeps Data raw: its shape depends on BillingType ("token" or "legacy").
type UserBilling struct {
	BillingType string          `json:"billingType"`
	Data        json.RawMessage `json:"data"`
}

type BillingCycle struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type Balance struct {
	Remaining float64 `json:"remaining"`
	Total     float64 `json:"total"`
}

type UserPlan struct {
	Object       string       `json:"object,omitempty"`
	Plan         string       `json:"plan"`
	BillingCycle BillingCycle `json:"billingCycle"`
	Balance      Balance      `json:"balance"`
}

type RateLimits struct {
	Remaining *int   `json:"remaining,omitempty"`
	Reset     *int64 `json:"reset,omitempty"`
	Limit     int    `json:"limit"`
}

type DeleteResult struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	Deleted bool   `json:"deleted"`
}

type FavoriteResult struct {
	ID        string `json:"id"`
	Object    string `json:"object,omitempty"`
	Favorited bool   `json:"favorited"`
}

type AssignResult struct {
	ID       string `json:"id"`
	Object   string `json:"object,omitempty"`
	Assigned bool   `json:"assigned"`
}

// Requests

type CreateChatRequest struct {
	Message            string              `json:"message"`
	Attachments        []Attachment        `json:"attachments,omitempty"`
	System             string              `json:"system,omitempty"`
	ChatPrivacy        Privacy             `json:"chatPrivacy,omitempty"`
	ProjectID          string              `json:"projectId,omitempty"`
	ModelConfiguration *ModelConfiguration `json:"modelConfiguration,omitempty"`
	ResponseMode       string              `json:"responseMode,omitempty"`
}

type SendMessageRequest struct {
	ChatID             string              `json:"-"`
	Message            string              `json:"message"`
	Attachments        []Attachment        `json:"attachments,omitempty"`
	ModelConfiguration *ModelConfiguration `json:"modelConfiguration,omitempty"`
	ResponseMode       string              `json:"responseMode,omitempty"`
}

type UpdateChatRequest struct {
	ChatID  string  `json:"-"`
	Name    string  `json:"name,omitempty"`
	Privacy Privacy `json:"privacy,omitempty"`
}

type ForkChatRequest struct {
	ChatID    string `json:"-"`
	VersionID string `json:"versionId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
}

type FindChatsRequest struct {
	Limit      int
	Offset     int
	IsFavorite *bool
}

type EnvironmentVariable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type CreateProjectRequest struct {
	Name                 string                `json:"name"`
	Description          string                `json:"description,omitempty"`
	Icon                 string                `json:"icon,omitempty"`
	EnvironmentVariables []EnvironmentVariable `json:"environmentVariables,omitempty"`
	Instructions         string                `json:"instructions,omitempty"`
}

type CreateDeploymentRequest struct {
	ProjectID string `json:"projectId"`
	ChatID    string `json:"chatId"`
	VersionID string `json:"versionId"`
}

type FindDeploymentsRequest struct {
	ProjectID string
	ChatID    string
	VersionID string
}

type listResponse[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
}
