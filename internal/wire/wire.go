// Package wire provides dependency injection for the pulse engine.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/example/pulse/internal/adapters/channel"
	cliadapter "github.com/example/pulse/internal/adapters/cli"
	"github.com/example/pulse/internal/adapters/sqlite"
	"github.com/example/pulse/internal/adapters/template"
	"github.com/example/pulse/internal/app"
	"github.com/example/pulse/internal/config"
	"github.com/example/pulse/internal/db"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
	"github.com/example/pulse/internal/worker"
)

var (
	cfg                 *config.Config
	taskService         primary.TaskService
	reminderService     primary.ReminderService
	notificationService primary.NotificationService
	dispatchService     primary.DispatchService
	leases              worker.Leases
	once                sync.Once
)

// Config returns the loaded engine configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// TaskService returns the singleton TaskService instance.
func TaskService() primary.TaskService {
	once.Do(initServices)
	return taskService
}

// ReminderService returns the singleton ReminderService instance.
func ReminderService() primary.ReminderService {
	once.Do(initServices)
	return reminderService
}

// NotificationService returns the singleton NotificationService instance.
func NotificationService() primary.NotificationService {
	once.Do(initServices)
	return notificationService
}

// DispatchService returns the singleton DispatchService instance.
func DispatchService() primary.DispatchService {
	once.Do(initServices)
	return dispatchService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports) with injected DB
	taskRepo := sqlite.NewTaskRepository(database)
	reminderRepo := sqlite.NewReminderRepository(database)
	activityRepo := sqlite.NewActivityRepository(database)
	notificationRepo := sqlite.NewNotificationRepository(database)
	attemptRepo := sqlite.NewAttemptRepository(database)
	templateRepo := sqlite.NewTemplateRepository(database)

	clock := secondary.SystemClock{}
	renderer := template.NewRenderer(templateRepo)
	registry := channelRegistry(cfg)

	// Services (primary ports implementation)
	notificationService = app.NewNotificationService(notificationRepo, attemptRepo, clock, app.NotificationConfig{
		MaxAttempts:     cfg.MaxAttempts,
		DefaultChannels: cfg.DefaultChannels,
	})
	taskService = app.NewTaskService(taskRepo, reminderRepo, activityRepo, notificationService, clock)
	reminderService = app.NewReminderService(reminderRepo, taskRepo, activityRepo, notificationService, clock, cfg.ClaimTTL)
	dispatchService = app.NewDispatchService(notificationRepo, attemptRepo, renderer, registry, clock, app.DispatchConfig{
		Policy:      cfg.Policy(),
		BackoffBase: cfg.BackoffBase,
		BackoffMax:  cfg.BackoffMax,
		ClaimTTL:    cfg.ClaimTTL,
		SendTimeout: cfg.DispatchTimeout,
	})

	leases = worker.Leases{
		Reminders:     reminderRepo,
		Notifications: notificationRepo,
	}
}

// channelRegistry builds the adapter set for every configured default
// channel plus the channels reminders commonly target.
func channelRegistry(cfg *config.Config) *channel.Registry {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	seen := make(map[string]bool)
	registry := channel.NewRegistry()
	for _, name := range append([]string{"sse", "push", "email", "chat"}, cfg.DefaultChannels...) {
		if seen[name] {
			continue
		}
		seen[name] = true
		registry.Register(channel.NewLogAdapter(name, logger))
	}
	return registry
}

// NewWorker creates a worker bound to the singleton services.
func NewWorker(logger zerolog.Logger) *worker.Worker {
	once.Do(initServices)
	return worker.New(cfg, taskService, reminderService, notificationService, dispatchService, leases, secondary.SystemClock{}, logger)
}

// TaskAdapter returns a new TaskAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func TaskAdapter() *cliadapter.TaskAdapter {
	return TaskAdapterWithOutput(os.Stdout)
}

// TaskAdapterWithOutput returns a new TaskAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func TaskAdapterWithOutput(out io.Writer) *cliadapter.TaskAdapter {
	once.Do(initServices)
	return cliadapter.NewTaskAdapter(taskService, out)
}

// ReminderAdapter returns a new ReminderAdapter writing to stdout.
func ReminderAdapter() *cliadapter.ReminderAdapter {
	return ReminderAdapterWithOutput(os.Stdout)
}

// ReminderAdapterWithOutput returns a new ReminderAdapter writing to the given output.
func ReminderAdapterWithOutput(out io.Writer) *cliadapter.ReminderAdapter {
	once.Do(initServices)
	return cliadapter.NewReminderAdapter(reminderService, out)
}

// NotificationAdapter returns a new NotificationAdapter writing to stdout.
func NotificationAdapter() *cliadapter.NotificationAdapter {
	return NotificationAdapterWithOutput(os.Stdout)
}

// NotificationAdapterWithOutput returns a new NotificationAdapter writing to the given output.
func NotificationAdapterWithOutput(out io.Writer) *cliadapter.NotificationAdapter {
	once.Do(initServices)
	return cliadapter.NewNotificationAdapter(notificationService, out)
}
