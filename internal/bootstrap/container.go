package bootstrap

import (
	"context"
	"time"

	"sado-notes-be/internal/config"
	"sado-notes-be/internal/controller"
	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/internal/repository/unitofwork"
	"sado-notes-be/internal/service"
	"sado-notes-be/pkg/events"
	"sado-notes-be/pkg/llm"
	"sado-notes-be/pkg/llm/factory"
	"sado-notes-be/pkg/metrics"
	pktNats "sado-notes-be/pkg/nats"
	"sado-notes-be/pkg/push"
	"sado-notes-be/pkg/push/fcm"
	"sado-notes-be/pkg/scheduler"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

const module = "BOOTSTRAP"

type Container struct {
	// Controllers
	NoteController         controller.INoteController
	NotificationController controller.INotificationController

	// Background services, started and stopped by main.go
	ConsumerService service.IConsumerService
	ReminderService service.IReminderService
	Scheduler       *scheduler.Scheduler

	Logger          logger.ILogger
	ReminderLogger  logger.ILogger
	MetricsRegistry *prometheus.Registry

	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	reminderLogger := logger.NewIsolatedLogger(cfg.App.ReminderLogPath)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	reminderMetrics := metrics.NewReminderMetrics(registry)

	c := &Container{
		Logger:          sysLogger,
		ReminderLogger:  reminderLogger,
		MetricsRegistry: registry,
	}

	// 2. Buses: in-process queue for enrichment, NATS for domain events.
	// Publishes block until the consumer acks; the publisher service caps
	// how many can wait.
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var eventPublisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(ctx, cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn(module, "Failed to connect to NATS, domain events disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 3. External collaborators
	sender := newPushSender(ctx, cfg.Push, reminderLogger)
	provider := newLLMProvider(cfg.Ai, sysLogger)

	location, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		sysLogger.Warn(module, "Unknown reminder timezone, using UTC", map[string]interface{}{
			"timezone": cfg.Reminder.Timezone,
			"error":    err.Error(),
		})
		location = time.UTC
	}

	c.Scheduler = scheduler.New(scheduler.Options{
		Location:    location,
		Workers:     cfg.Reminder.Workers,
		QueueSize:   cfg.Reminder.QueueSize,
		FireTimeout: cfg.Reminder.FireTimeout,
		Strict:      cfg.Reminder.StrictInvariants,
		Logger:      reminderLogger,
		Metrics:     reminderMetrics,
	})

	// 4. Services
	summaryService := service.NewSummaryService(
		provider,
		cfg.Ai.SummaryTimeout,
		cfg.Ai.SummaryMaxTokens,
		sysLogger,
		reminderMetrics,
	)
	publisherService := service.NewPublisherService(pubSub, cfg.Enrichment.Topic, cfg.Enrichment.QueueSize, sysLogger)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Enrichment.Topic,
		uowFactory,
		summaryService,
		cfg.Enrichment.Workers,
		sysLogger,
	)

	notificationService := service.NewNotificationService(uowFactory, location)
	deviceService := service.NewDeviceService(uowFactory, eventPublisher, sysLogger)
	c.ReminderService = service.NewReminderService(
		uowFactory,
		c.Scheduler,
		notificationService,
		deviceService,
		sender,
		eventPublisher,
		reminderLogger,
		reminderMetrics,
	)
	noteService := service.NewNoteService(
		uowFactory,
		publisherService,
		notificationService,
		c.ReminderService,
		eventPublisher,
		sysLogger,
	)

	// 5. Controllers
	c.NoteController = controller.NewNoteController(noteService)
	c.NotificationController = controller.NewNotificationController(deviceService, notificationService, c.ReminderService)

	return c
}

// Close releases the buses. Closing the enrichment pub/sub ends the
// consumer's subscription; ConsumerService.Wait returns once it drains.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func (c *Container) SyncLoggers() {
	_ = c.ReminderLogger.Sync()
	_ = c.Logger.Sync()
}

func newPushSender(ctx context.Context, cfg config.PushConfig, log logger.ILogger) push.Sender {
	if cfg.Provider != "fcm" {
		log.Info(module, "Push provider is log-only", map[string]interface{}{"provider": cfg.Provider})
		return push.NewLogSender(log)
	}

	client, err := fcm.NewClient(ctx, fcm.Config{
		ProjectID:       cfg.ProjectID,
		CredentialsFile: cfg.CredentialsFile,
		CredentialsJSON: cfg.CredentialsJSON,
		BatchSize:       cfg.BatchSize,
	})
	if err != nil {
		log.Error(module, "Failed to init FCM, falling back to log sender", map[string]interface{}{
			"error": err.Error(),
		})
		return push.NewLogSender(log)
	}
	return client
}

// newLLMProvider returns nil when no model is reachable; summaries then use
// the local preview.
func newLLMProvider(cfg config.AIConfig, log logger.ILogger) llm.LLMProvider {
	provider, err := factory.NewLLMProvider(factory.Config{
		Provider:      cfg.LLMProvider,
		Model:         cfg.LLMModel,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiBaseURL: cfg.GeminiBaseURL,
		OllamaBaseURL: cfg.OllamaBaseURL,
	})
	if err != nil {
		log.Warn(module, "LLM provider unavailable, summaries will use previews", map[string]interface{}{
			"provider": cfg.LLMProvider,
			"error":    err.Error(),
		})
		return nil
	}
	return provider
}
