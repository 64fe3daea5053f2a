package bootstrap

import (
	"context"
	"fmt"
	"log"

	"mentor-ai-be/internal/config"
	"mentor-ai-be/internal/controller"
	"mentor-ai-be/internal/pkg/logger"
	"mentor-ai-be/internal/pkg/serverutils"
	"mentor-ai-be/internal/repository/unitofwork"
	"mentor-ai-be/internal/service"
	"mentor-ai-be/pkg/inflight"
	"mentor-ai-be/pkg/llm"
	"mentor-ai-be/pkg/llm/factory"
	pktNats "mentor-ai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	ChatbotController controller.IChatbotController
	PlanController    controller.PlanController
	BillingController controller.IBillingController
	HealthController  controller.IHealthController

	JwtMiddleware      fiber.Handler
	InternalMiddleware fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	ProvisioningService service.IProvisioningService // nil without NATS

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every service on top of the given storage. A nil gateway
// builds the completion provider from configuration.
func NewContainer(cfg *config.Config, uowFactory unitofwork.RepositoryFactory, gateway llm.CompletionGateway) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	usageLogger := logger.NewIsolatedLogger(cfg.App.UsageLogFilePath)
	c.Logger = sysLogger
	c.closers = append(c.closers, func() {
		_ = usageLogger.Sync()
		_ = sysLogger.Sync()
	})

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Completion provider
	if gateway == nil {
		baseURL := cfg.Ai.OpenAIBaseURL
		if cfg.Ai.LLMProvider == "ollama" {
			baseURL = cfg.Ai.OllamaBaseURL
		}
		llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, cfg.Ai.OpenAIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
		}
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
		gateway = llm.NewGateway(llmProvider)
	}

	// 4. Infrastructure
	guard := c.newGuard(cfg, sysLogger)

	var natsClient *pktNats.Client
	var forwarder service.EventForwarder
	if cfg.Nats.Enabled {
		client, err := pktNats.Connect(cfg.Nats.URL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS, events stay local", map[string]interface{}{
				"url":   cfg.Nats.URL,
				"error": err,
			})
		} else {
			natsClient = client
			forwarder = pktNats.NewPublisher(client)
			c.closers = append(c.closers, client.Close)
		}
	}

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Chat.EventTopic)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Chat.EventTopic, usageLogger, sysLogger, forwarder)

	sessionService := service.NewSessionService(uowFactory, guard, sysLogger)
	messageService := service.NewMessageService(uowFactory)
	quotaService := service.NewQuotaService(uowFactory, sysLogger)
	chatbotService := service.NewChatbotService(
		sessionService,
		messageService,
		quotaService,
		gateway,
		guard,
		publisherService,
		sysLogger,
		service.ChatbotOptions{
			HistoryWindow:     cfg.Chat.HistoryWindow,
			CompletionTimeout: cfg.Chat.CompletionTimeout,
		},
	)

	if natsClient != nil {
		natsSub := pktNats.NewSubscriber(natsClient, sysLogger)
		c.ProvisioningService = service.NewProvisioningService(natsSub, cfg.Nats.Durable, quotaService, sysLogger)
	}

	// 6. Controllers
	c.ChatbotController = controller.NewChatbotController(sessionService, messageService, chatbotService)
	c.PlanController = controller.NewPlanController(quotaService, sessionService, messageService)
	c.BillingController = controller.NewBillingController(quotaService)
	c.HealthController = controller.NewHealthController()
	c.JwtMiddleware = serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret)
	c.InternalMiddleware = serverutils.NewInternalTokenMiddleware(cfg.Auth.InternalToken)

	return c, nil
}

// newGuard picks the in-flight lock backend. Redis is needed once more than
// one replica serves the same users; an unreachable Redis falls back to the
// process-local guard.
func (c *Container) newGuard(cfg *config.Config, sysLogger logger.ILogger) inflight.Guard {
	if cfg.App.InFlightDriver != "redis" {
		return inflight.NewMemoryGuard(cfg.Chat.InFlightTTL)
	}

	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.Redis.URL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to Redis, using in-process lock", map[string]interface{}{
			"error": err,
		})
		_ = rdb.Close()
		return inflight.NewMemoryGuard(cfg.Chat.InFlightTTL)
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return inflight.NewRedisGuard(rdb, cfg.Chat.InFlightTTL)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
