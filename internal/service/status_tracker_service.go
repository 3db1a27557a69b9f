package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/pkg/poller"
	v0 "ai-appbuilder-be/pkg/v0"
)

const DefaultTrackingLimit = 15 * time.Minute

// IStatusTrackerService follows chats in the background after a generation
// and publishes every status change on the in-process bus.
type IStatusTrackerService interface {
	Track(chatId string)
	Untrack(chatId string)
	IsTracking(chatId string) bool
	Shutdown()
}

type TrackerOptions struct {
	Interval time.Duration
	// Limit bounds how long one chat is followed.
	Limit     time.Duration
	NewTicker func(d time.Duration) poller.Ticker
	Now       func() time.Time
}

type statusTrackerService struct {
	ctx       context.Context
	cancel    context.CancelFunc
	api       v0.API
	publisher IPublisherService
	opts      TrackerOptions
	logger    logger.ILogger

	mu      sync.Mutex
	pollers map[string]*poller.Poller
}

func NewStatusTrackerService(
	api v0.API,
	publisher IPublisherService,
	opts TrackerOptions,
	log logger.ILogger,
) IStatusTrackerService {
	if opts.Limit <= 0 {
		opts.Limit = DefaultTrackingLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &statusTrackerService{
		ctx:       ctx,
		cancel:    cancel,
		api:       api,
		publisher: publisher,
		opts:      opts,
		logger:    log,
		pollers:   make(map[string]*poller.Poller),
	}
}

func (s *statusTrackerService) Track(chatId string) {
	if chatId == "" || s.ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	if existing, ok := s.pollers[chatId]; ok && existing.IsPolling() {
		s.mu.Unlock()
		return
	}

	// fetch and the change callback run on the poller goroutine, one after the other.
	var demoURL string
	fetch := func(ctx context.Context, id string) (v0.VersionStatus, error) {
		chat, err := s.api.GetChat(ctx, id)
		if err != nil {
			return "", err
		}
		if chat.LatestVersion == nil {
			return v0.StatusPending, nil
		}
		demoURL = chat.LatestVersion.DemoURL
		return chat.LatestVersion.Status, nil
	}

	p := poller.New(fetch, poller.Options{
		Interval: s.opts.Interval,
		OnStatusChange: func(id string, status v0.VersionStatus) {
			s.publish(id, status, demoURL)
		},
		OnError:   s.onError,
		NewTicker: s.opts.NewTicker,
	})
	s.pollers[chatId] = p
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, s.opts.Limit)
	p.Watch(ctx, chatId, true)
	done := p.Done()

	s.logger.Info("STATUS_TRACKER", "Tracking chat", map[string]interface{}{"chat_id": chatId})

	go func() {
		<-done
		cancel()
		s.mu.Lock()
		if s.pollers[chatId] == p {
			delete(s.pollers, chatId)
		}
		s.mu.Unlock()
	}()
}

func (s *statusTrackerService) Untrack(chatId string) {
	s.mu.Lock()
	p, ok := s.pollers[chatId]
	s.mu.Unlock()
	if ok {
		p.Stop()
	}
}

func (s *statusTrackerService) IsTracking(chatId string) bool {
	s.mu.Lock()
	p, ok := s.pollers[chatId]
	s.mu.Unlock()
	return ok && p.IsPolling()
}

func (s *statusTrackerService) Shutdown() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pollers {
		p.Stop()
	}
}

func (s *statusTrackerService) onError(chatId string, err error) {
	s.logger.Warn("STATUS_TRACKER", "Status check failed", map[string]interface{}{
		"chat_id": chatId, "kind": v0.KindOf(err), "error": err.Error(),
	})
	// Nothing left to follow once the chat is gone or the key is rejected.
	if v0.IsKind(err, v0.KindNotFound) || v0.IsKind(err, v0.KindAPIKey) {
		s.Untrack(chatId)
	}
}

func (s *statusTrackerService) publish(chatId string, status v0.VersionStatus, demoURL string) {
	payload, err := json.Marshal(dto.ChatStatusMessage{
		ChatId:     chatId,
		Status:     string(status),
		DemoUrl:    demoURL,
		ObservedAt: s.opts.Now(),
	})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(s.ctx, payload); err != nil {
		s.logger.Error("STATUS_TRACKER", "Failed to publish status change", map[string]interface{}{
			"chat_id": chatId, "error": err.Error(),
		})
	}
}
