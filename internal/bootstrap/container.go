package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-appbuilder-be/internal/config"
	"ai-appbuilder-be/internal/controller"
	"ai-appbuilder-be/internal/handler"
	"ai-appbuilder-be/internal/pkg/logger"
	"ai-appbuilder-be/internal/pkg/serverutils"
	"ai-appbuilder-be/internal/repository/contract"
	"ai-appbuilder-be/internal/repository/implementation"
	"ai-appbuilder-be/internal/repository/memory"
	"ai-appbuilder-be/internal/service"
	"ai-appbuilder-be/internal/websocket"
	pktNats "ai-appbuilder-be/pkg/nats"
	"ai-appbuilder-be/pkg/ratelimit"
	"ai-appbuilder-be/pkg/retry"
	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const statusTopic = "chat_status_changed"

type Container struct {
	// Controllers
	GenerationController controller.IGenerationController
	ChatController       controller.IChatController
	ProjectController    controller.IProjectController
	DeploymentController controller.IDeploymentController
	AccountController    controller.IAccountController
	DebugController      controller.IDebugController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	StatusTracker   service.IStatusTrackerService

	// WebSockets
	StatusHandler *handler.StatusHandler
	WebSocketHub  *websocket.Hub

	Logger logger.ILogger

	redis   *redis.Client
	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
}

// NewContainer wires every dependency. db may be nil, in which case
// generation history lives in memory.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	if cfg.V0.APIKey == "" {
		log.Printf("[WARN] V0_API_KEY is not set. Remote calls will fail with API_KEY_MISSING")
	}
	api := v0.NewClientWithConfig(cfg.V0.APIKey, cfg.V0.BaseURL, time.Duration(cfg.V0.TimeoutMs)*time.Millisecond)

	policy := retry.Policy{
		MaxAttempts: cfg.V0.RetryAttempts,
		BaseDelay:   time.Duration(cfg.V0.RetryDelayMs) * time.Millisecond,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			sysLogger.Warn("RETRY", "Remote call failed, retrying", map[string]interface{}{
				"attempt": attempt, "delay_ms": delay.Milliseconds(), "error": err.Error(),
			})
		},
	}

	// 2. Infrastructure
	rdb := newRedis(cfg.App.RedisURL)

	var generationRepo contract.GenerationRepository
	if db != nil {
		generationRepo = implementation.NewGenerationRepository(db)
	} else {
		log.Printf("[WARN] No database configured. Generation history is kept in memory")
		generationRepo = memory.NewGenerationRepository()
	}

	var ownershipRepo contract.OwnershipRepository
	if rdb != nil {
		ownershipRepo = implementation.NewOwnershipRepository(rdb)
	} else if cfg.Isolation.Enabled {
		log.Printf("[WARN] Multi-tenant isolation requested but Redis is unavailable. Isolation disabled")
	}

	// NATS is optional; keep the interface nil rather than a nil *Publisher.
	var eventPublisher service.EventPublisher
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
			eventPublisher = pub
		}
	}

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 4. Services
	ownershipService := service.NewOwnershipService(ownershipRepo, cfg.Isolation.Enabled, sysLogger)
	publisherService := service.NewPublisherService(statusTopic, pubSub)
	pollInterval := time.Duration(cfg.Polling.FrequencyMs) * time.Millisecond
	statusTracker := service.NewStatusTrackerService(api, publisherService, service.TrackerOptions{
		Interval: pollInterval,
	}, sysLogger)
	consumerService := service.NewConsumerService(pubSub, statusTopic, generationRepo, eventPublisher, sysLogger)

	projectService := service.NewProjectService(api, policy, ownershipService, cfg.V0.DefaultProjectName, sysLogger)
	chatService := service.NewChatService(api, policy, ownershipService, sysLogger)
	deploymentService := service.NewDeploymentService(api, policy, ownershipService, sysLogger)
	accountService := service.NewAccountService(api, policy, cfg.V0.APIKey != "")
	generationService := service.NewGenerationService(
		api,
		policy,
		generationRepo,
		projectService,
		ownershipService,
		statusTracker,
		eventPublisher,
		service.GenerationOptions{NewChatName: cfg.V0.NewChatName},
		sysLogger,
	)

	limiter := ratelimit.NewLimiter(rdb, ratelimit.Options{
		Max:    cfg.RateLimit.Max,
		Window: time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		Prefix: cfg.RateLimit.Prefix,
		OnStoreError: func(identifier string, err error) {
			sysLogger.Warn("RATE_LIMIT", "Rate limit store unavailable, admitting", map[string]interface{}{
				"identifier": identifier, "error": err.Error(),
			})
		},
	})
	if !limiter.Enabled() {
		log.Printf("[WARN] Redis unavailable. Generation rate limiting is disabled")
	}

	// 5. Status stream
	wsLogger := logger.NewIsolatedLogger(cfg.App.SessionLogFilePath)
	wsHub := websocket.NewHub(wsLogger)
	go wsHub.Run()
	statusHandler := handler.NewStatusHandler(wsHub, chatStatusFetcher(api), pollInterval, wsLogger)

	// 6. Controllers
	return &Container{
		GenerationController: controller.NewGenerationController(generationService, serverutils.RateLimitMiddleware(limiter, sysLogger)),
		ChatController:       controller.NewChatController(chatService),
		ProjectController:    controller.NewProjectController(projectService),
		DeploymentController: controller.NewDeploymentController(deploymentService),
		AccountController:    controller.NewAccountController(accountService),
		DebugController:      controller.NewDebugController(sysLogger, cfg.Debug.Enabled),

		ConsumerService: consumerService,
		StatusTracker:   statusTracker,

		StatusHandler: statusHandler,
		WebSocketHub:  wsHub,

		Logger: sysLogger,

		redis:   rdb,
		pubSub:  pubSub,
		natsPub: natsPub,
	}
}

// Shutdown stops background work and releases connections.
func (c *Container) Shutdown() {
	c.StatusTracker.Shutdown()
	c.WebSocketHub.Stop()
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Printf("[WARN] Failed to close Redis: %v", err)
		}
	}
}

func newRedis(url string) *redis.Client {
	if url == "" {
		log.Printf("[WARN] REDIS_URL is not set. Rate limiting and isolation are disabled")
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}

func chatStatusFetcher(api v0.API) func(ctx context.Context, chatID string) (v0.VersionStatus, error) {
	return func(ctx context.Context, chatID string) (v0.VersionStatus, error) {
		chat, err := api.GetChat(ctx, chatID)
		if err != nil {
			return "", err
		}
		if status := chat.Status(); status != "" {
			return status, nil
		}
		return v0.StatusPending, nil
	}
}
