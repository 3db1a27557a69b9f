package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/internal/repository/implementation"
	"ai-appbuilder-be/pkg/events"
	"ai-appbuilder-be/pkg/retry"
	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// fakeAPI implements only what a test wires up; anything else panics through the nil embedded interface.
type fakeAPI struct {
	v0.API

	mu    sync.Mutex
	calls map[string]int

	createChat    func(req v0.CreateChatRequest) (*v0.ChatDetail, error)
	sendMessage   func(req v0.SendMessageRequest) (*v0.ChatDetail, error)
	getChat       func(chatID string) (*v0.ChatDetail, error)
	updateChat    func(req v0.UpdateChatRequest) (*v0.ChatDetail, error)
	deleteChat    func(chatID string) (*v0.DeleteResult, error)
	forkChat      func(req v0.ForkChatRequest) (*v0.ChatDetail, error)
	findChats     func(req v0.FindChatsRequest) ([]v0.ChatSummary, error)
	findProjects  func() ([]v0.ProjectSummary, error)
	createProject func(req v0.CreateProjectRequest) (*v0.ProjectDetail, error)
	assign        func(projectID, chatID string) (*v0.AssignResult, error)
	chatProject   func(chatID string) (*v0.ProjectDetail, error)
	getUser       func() (*v0.UserDetail, error)

	createDeployment func(req v0.CreateDeploymentRequest) (*v0.DeploymentDetail, error)
	getDeployment    func(deploymentID string) (*v0.DeploymentDetail, error)
	deleteDeployment func(deploymentID string) (*v0.DeleteResult, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: map[string]int{}}
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAPI) CreateChat(_ context.Context, req v0.CreateChatRequest) (*v0.ChatDetail, error) {
	f.hit("CreateChat")
	return f.createChat(req)
}

func (f *fakeAPI) SendMessage(_ context.Context, req v0.SendMessageRequest) (*v0.ChatDetail, error) {
	f.hit("SendMessage")
	return f.sendMessage(req)
}

func (f *fakeAPI) GetChat(_ context.Context, chatID string) (*v0.ChatDetail, error) {
	f.hit("GetChat")
	return f.getChat(chatID)
}

func (f *fakeAPI) UpdateChat(_ context.Context, req v0.UpdateChatRequest) (*v0.ChatDetail, error) {
	f.hit("UpdateChat")
	if f.updateChat == nil {
		return &v0.ChatDetail{ChatSummary: v0.ChatSummary{ID: req.ChatID, Name: req.Name}}, nil
	}
	return f.updateChat(req)
}

func (f *fakeAPI) DeleteChat(_ context.Context, chatID string) (*v0.DeleteResult, error) {
	f.hit("DeleteChat")
	return f.deleteChat(chatID)
}

func (f *fakeAPI) ForkChat(_ context.Context, req v0.ForkChatRequest) (*v0.ChatDetail, error) {
	f.hit("ForkChat")
	return f.forkChat(req)
}

func (f *fakeAPI) FindChats(_ context.Context, req v0.FindChatsRequest) ([]v0.ChatSummary, error) {
	f.hit("FindChats")
	return f.findChats(req)
}

func (f *fakeAPI) FindProjects(context.Context) ([]v0.ProjectSummary, error) {
	f.hit("FindProjects")
	return f.findProjects()
}

func (f *fakeAPI) CreateProject(_ context.Context, req v0.CreateProjectRequest) (*v0.ProjectDetail, error) {
	f.hit("CreateProject")
	return f.createProject(req)
}

func (f *fakeAPI) AssignChatToProject(_ context.Context, projectID, chatID string) (*v0.AssignResult, error) {
	f.hit("AssignChatToProject")
	return f.assign(projectID, chatID)
}

func (f *fakeAPI) GetProjectByChatID(_ context.Context, chatID string) (*v0.ProjectDetail, error) {
	f.hit("GetProjectByChatID")
	return f.chatProject(chatID)
}

func (f *fakeAPI) GetUser(context.Context) (*v0.UserDetail, error) {
	f.hit("GetUser")
	return f.getUser()
}

func (f *fakeAPI) CreateDeployment(_ context.Context, req v0.CreateDeploymentRequest) (*v0.DeploymentDetail, error) {
	f.hit("CreateDeployment")
	return f.createDeployment(req)
}

func (f *fakeAPI) GetDeployment(_ context.Context, deploymentID string) (*v0.DeploymentDetail, error) {
	f.hit("GetDeployment")
	return f.getDeployment(deploymentID)
}

func (f *fakeAPI) DeleteDeployment(_ context.Context, deploymentID string) (*v0.DeleteResult, error) {
	f.hit("DeleteDeployment")
	return f.deleteDeployment(deploymentID)
}

func pendingChat(id, projectID string) *v0.ChatDetail {
	return &v0.ChatDetail{ChatSummary: v0.ChatSummary{
		ID:            id,
		ProjectID:     projectID,
		LatestVersion: &v0.Version{ID: "ver_1", Status: v0.StatusPending},
	}}
}

func noWaitPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
}

type recordingTracker struct {
	mu      sync.Mutex
	tracked []string
}

func (r *recordingTracker) Track(chatId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracked = append(r.tracked, chatId)
}

func (r *recordingTracker) Untrack(string)          {}
func (r *recordingTracker) IsTracking(string) bool { return false }
func (r *recordingTracker) Shutdown()              {}

func (r *recordingTracker) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tracked...)
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

func newIsolation(t *testing.T) (*miniredis.Miniredis, IOwnershipService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewOwnershipService(implementation.NewOwnershipRepository(client), true, logger.NewNopLogger())
}

func noIsolation() IOwnershipService {
	return NewOwnershipService(nil, true, logger.NewNopLogger())
}
