package v0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBaseURL is the v0 Platform API endpoint
	DefaultBaseURL = "https://api.v0.dev/v1"
	// DefaultTimeout bounds every remote call
	DefaultTimeout = 30 * time.Second

	instrumentationName = "ai-appbuilder-be/pkg/v0"
	maxRemoteMessage    = 500
)

// API is the typed surface of the v0 Platform API used by this service.
// Every failure is a *Error.
type API interface {
	CreateChat(ctx context.Context, req CreateChatRequest) (*ChatDetail, error)
	FindChats(ctx context.Context, req FindChatsRequest) ([]ChatSummary, error)
	GetChat(ctx context.Context, chatID string) (*ChatDetail, error)
	UpdateChat(ctx context.Context, req UpdateChatRequest) (*ChatDetail, error)
	DeleteChat(ctx context.Context, chatID string) (*DeleteResult, error)
	ForkChat(ctx context.Context, req ForkChatRequest) (*ChatDetail, error)
	FavoriteChat(ctx context.Context, chatID string, favorite bool) (*FavoriteResult, error)
	SendMessage(ctx context.Context, req SendMessageRequest) (*ChatDetail, error)

	FindProjects(ctx context.Context) ([]ProjectSummary, error)
	CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectDetail, error)
	GetProject(ctx context.Context, projectID string) (*ProjectDetail, error)
	GetProjectByChatID(ctx context.Context, chatID string) (*ProjectDetail, error)
	AssignChatToProject(ctx context.Context, projectID, chatID string) (*AssignResult, error)

	FindDeployments(ctx context.Context, req FindDeploymentsRequest) ([]DeploymentDetail, error)
	CreateDeployment(ctx context.Context, req CreateDeploymentRequest) (*DeploymentDetail, error)
	GetDeployment(ctx context.Context, deploymentID string) (*DeploymentDetail, error)
	DeleteDeployment(ctx context.Context, deploymentID string) (*DeleteResult, error)
	GetDeploymentLogs(ctx context.Context, deploymentID string, since *int64) (*DeploymentLogs, error)
	GetDeploymentErrors(ctx context.Context, deploymentID string) (*DeploymentErrors, error)

	GetUser(ctx context.Context) (*UserDetail, error)
	GetUserBilling(ctx context.Context) (*UserBilling, error)
	GetUserPlan(ctx context.Context) (*UserPlan, error)
	GetRateLimits(ctx context.Context) (*RateLimits, error)
}

// Client talks JSON over HTTP with bearer authentication.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return NewClientWithConfig(apiKey, DefaultBaseURL, DefaultTimeout)
}

func NewClientWithConfig(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Chats

func (c *Client) CreateChat(ctx context.Context, req CreateChatRequest) (*ChatDetail, error) {
	if err := ValidateMessage(req.Message); err != nil {
		return nil, err
	}
	if err := validateAttachments(req.Attachments); err != nil {
		return nil, err
	}
	var out ChatDetail
	if err := c.do(ctx, http.MethodPost, "/chats", nil, req, &out, "Failed to create chat"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FindChats(ctx context.Context, req FindChatsRequest) ([]ChatSummary, error) {
	query := url.Values{}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		query.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.IsFavorite != nil {
		query.Set("isFavorite", strconv.FormatBool(*req.IsFavorite))
	}
	var out listResponse[ChatSummary]
	if err := c.do(ctx, http.MethodGet, "/chats", query, nil, &out, "Failed to fetch chats"); err != nil {
		return nil, err
	}
	return nonNil(out.Data), nil
}

func (c *Client) GetChat(ctx context.Context, chatID string) (*ChatDetail, error) {
	if err := ValidateID("Chat ID", chatID); err != nil {
		return nil, err
	}
	var out ChatDetail
	if err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatID), nil, nil, &out, "Failed to get chat"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateChat(ctx context.Context, req UpdateChatRequest) (*ChatDetail, error) {
	if err := ValidateID("Chat ID", req.ChatID); err != nil {
		return nil, err
	}
	var out ChatDetail
	if err := c.do(ctx, http.MethodPatch, "/chats/"+url.PathEscape(req.ChatID), nil, req, &out, "Failed to update chat"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) (*DeleteResult, error) {
	if err := ValidateID("Chat ID", chatID); err != nil {
		return nil, err
	}
	var out DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/chats/"+url.PathEscape(chatID), nil, nil, &out, "Failed to delete chat"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForkChat(ctx context.Context, req ForkChatRequest) (*ChatDetail, error) {
	if err := ValidateID("Chat ID", req.ChatID); err != nil {
		return nil, err
	}
	var out ChatDetail
	path := "/chats/" + url.PathEscape(req.ChatID) + "/fork"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &out, "Failed to fork chat"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FavoriteChat(ctx context.Context, chatID string, favorite bool) (*FavoriteResult, error) {
	if err := ValidateID("Chat ID", chatID); err != nil {
		return nil, err
	}
	var out FavoriteResult
	body := map[string]bool{"isFavorite": favorite}
	path := "/chats/" + url.PathEscape(chatID) + "/favorite"
	if err := c.do(ctx, http.MethodPut, path, nil, body, &out, "Failed to update favorite"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*ChatDetail, error) {
	if err := ValidateID("Chat ID", req.ChatID); err != nil {
		return nil, err
	}
	if err := ValidateMessage(req.Message); err != nil {
		return nil, err
	}
	if err := validateAttachments(req.Attachments); err != nil {
		return nil, err
	}
	var out ChatDetail
	path := "/chats/" + url.PathEscape(req.ChatID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &out, "Failed to send message"); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = req.ChatID
	}
	return &out, nil
}

// Projects

func (c *Client) FindProjects(ctx context.Context) ([]ProjectSummary, error) {
	var out listResponse[ProjectSummary]
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &out, "Failed to fetch projects"); err != nil {
		return nil, err
	}
	return nonNil(out.Data), nil
}

func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectDetail, error) {
	if err := ValidateProjectName(req.Name); err != nil {
		return nil, err
	}
	var out ProjectDetail
	if err := c.do(ctx, http.MethodPost, "/projects", nil, req, &out, "Failed to create project"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*ProjectDetail, error) {
	if err := ValidateID("Project ID", projectID); err != nil {
		return nil, err
	}
	var out ProjectDetail
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID), nil, nil, &out, "Failed to get project"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProjectByChatID(ctx context.Context, chatID string) (*ProjectDetail, error) {
	if err := ValidateID("Chat ID", chatID); err != nil {
		return nil, err
	}
	var out ProjectDetail
	path := "/chats/" + url.PathEscape(chatID) + "/project"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out, "Failed to get project for chat"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AssignChatToProject(ctx context.Context, projectID, chatID string) (*AssignResult, error) {
	if err := ValidateID("Project ID", projectID); err != nil {
		return nil, err
	}
	if err := ValidateID("Chat ID", chatID); err != nil {
		return nil, err
	}
	var out AssignResult
	body := map[string]string{"chatId": chatID}
	path := "/projects/" + url.PathEscape(projectID) + "/assign"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out, "Failed to assign chat to project"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Deployments

func (c *Client) FindDeployments(ctx context.Context, req FindDeploymentsRequest) ([]DeploymentDetail, error) {
	query := url.Values{}
	if req.ProjectID != "" {
		query.Set("projectId", req.ProjectID)
	}
	if req.ChatID != "" {
		query.Set("chatId", req.ChatID)
	}
	if req.VersionID != "" {
		query.Set("versionId", req.VersionID)
	}
	var out listResponse[DeploymentDetail]
	if err := c.do(ctx, http.MethodGet, "/deployments", query, nil, &out, "Failed to fetch deployments"); err != nil {
		return nil, err
	}
	return nonNil(out.Data), nil
}

func (c *Client) CreateDeployment(ctx context.Context, req CreateDeploymentRequest) (*DeploymentDetail, error) {
	if err := ValidateID("Project ID", req.ProjectID); err != nil {
		return nil, err
	}
	if err := ValidateID("Chat ID", req.ChatID); err != nil {
		return nil, err
	}
	if err := ValidateID("Version ID", req.VersionID); err != nil {
		return nil, err
	}
	var out DeploymentDetail
	if err := c.do(ctx, http.MethodPost, "/deployments", nil, req, &out, "Failed to create deployment"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDeployment(ctx context.Context, deploymentID string) (*DeploymentDetail, error) {
	if err := ValidateID("Deployment ID", deploymentID); err != nil {
		return nil, err
	}
	var out DeploymentDetail
	if err := c.do(ctx, http.MethodGet, "/deployments/"+url.PathEscape(deploymentID), nil, nil, &out, "Failed to get deployment"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDeployment(ctx context.Context, deploymentID string) (*DeleteResult, error) {
	if err := ValidateID("Deployment ID", deploymentID); err != nil {
		return nil, err
	}
	var out DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/deployments/"+url.PathEscape(deploymentID), nil, nil, &out, "Failed to delete deployment"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDeploymentLogs(ctx context.Context, deploymentID string, since *int64) (*DeploymentLogs, error) {
	if err := ValidateID("Deployment ID", deploymentID); err != nil {
		return nil, err
	}
	query := url.Values{}
	if since != nil {
		query.Set("since", strconv.FormatInt(*since, 10))
	}
	var out DeploymentLogs
	path := "/deployments/" + url.PathEscape(deploymentID) + "/logs"
	if err := c.do(ctx, http.MethodGet, path, query, nil, &out, "Failed to get deployment logs"); err != nil {
		return nil, err
	}
	if out.Logs == nil {
		out.Logs = []string{}
	}
	return &out, nil
}

func (c *Client) GetDeploymentErrors(ctx context.Context, deploymentID string) (*DeploymentErrors, error) {
	if err := ValidateID("Deployment ID", deploymentID); err != nil {
		return nil, err
	}
	var out DeploymentErrors
	path := "/deployments/" + url.PathEscape(deploymentID) + "/errors"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out, "Failed to get deployment errors"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Account

func (c *Client) GetUser(ctx context.Context) (*UserDetail, error) {
	var out UserDetail
	if err := c.do(ctx, http.MethodGet, "/user", nil, nil, &out, "Failed to get user"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUserBilling(ctx context.Context) (*UserBilling, error) {
	var out UserBilling
	if err := c.do(ctx, http.MethodGet, "/user/billing", nil, nil, &out, "Failed to get billing"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUserPlan(ctx context.Context) (*UserPlan, error) {
	var out UserPlan
	if err := c.do(ctx, http.MethodGet, "/user/plan", nil, nil, &out, "Failed to get plan"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetRateLimits(ctx context.Context) (*RateLimits, error) {
	var out RateLimits
	if err := c.do(ctx, http.MethodGet, "/rate-limits", nil, nil, &out, "Failed to get rate limits"); err != nil {
		return nil, err
	}
	return &out, nil
}

// do runs one request inside a client span named after the operation.
// Failures are classified in send and nowhere else.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, failure string) error {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "v0 "+strings.TrimPrefix(failure, "Failed to "),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	status, err := c.send(ctx, method, path, query, body, out, failure)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		var remoteErr *Error
		if errors.As(err, &remoteErr) {
			span.SetAttributes(attribute.String("v0.error.kind", string(remoteErr.Kind)))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out interface{}, failure string) (int, error) {
	if c.apiKey == "" {
		return 0, newAPIKeyError()
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, Classify(fmt.Errorf("failed to marshal request: %w", err), 0, failure)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, Classify(fmt.Errorf("failed to create request: %w", err), 0, failure)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, Classify(err, 0, failure)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, Classify(fmt.Errorf("failed to read response: %w", err), 0, failure)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, Classify(errors.New(remoteMessage(resp.StatusCode, respBody)), resp.StatusCode, failure)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, Classify(fmt.Errorf("failed to parse response: %w", err), 0, failure)
	}
	return resp.StatusCode, nil
}

type remoteError struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// remoteMessage extracts a human-readable message from an error body.
func remoteMessage(status int, body []byte) string {
	var parsed remoteError
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error.Message != "" {
			return parsed.Error.Message
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	}
	return truncate(text, maxRemoteMessage)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
