// Package worker runs the polling loop that drives time-based behavior:
// promoting scheduled tasks, announcing overdue ones, firing due reminders,
// and dispatching eligible notifications.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/example/pulse/internal/config"
	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// Leases holds the repositories the expired-lease sweep releases claims on.
type Leases struct {
	Reminders     secondary.ReminderRepository
	Notifications secondary.NotificationRepository
}

// Worker polls for due work on a fixed cadence. Several replicas can run
// against the same database: the claim protocol decides who handles each
// item, losers just skip.
type Worker struct {
	id string

	cfg           *config.Config
	tasks         primary.TaskService
	reminders     primary.ReminderService
	notifications primary.NotificationService
	dispatch      primary.DispatchService
	leases        Leases
	clock         secondary.Clock
	logger        zerolog.Logger
	limiter       *rate.Limiter

	mu     sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup
	cron   *cron.Cron
}

// New creates a worker with a unique identity derived from the hostname.
func New(
	cfg *config.Config,
	tasks primary.TaskService,
	reminders primary.ReminderService,
	notifications primary.NotificationService,
	dispatch primary.DispatchService,
	leases Leases,
	clock secondary.Clock,
	logger zerolog.Logger,
) *Worker {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "pulse"
	}
	id := fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])

	return &Worker{
		id:            id,
		cfg:           cfg,
		tasks:         tasks,
		reminders:     reminders,
		notifications: notifications,
		dispatch:      dispatch,
		leases:        leases,
		clock:         clock,
		logger:        logger.With().Str("worker_id", id).Logger(),
		limiter:       rate.NewLimiter(rate.Limit(cfg.RatePerSec), int(cfg.RatePerSec)+1),
	}
}

// ID returns the worker identity used for claims.
func (w *Worker) ID() string { return w.id }

// Start launches the poll loop and the reclaim sweep. It returns immediately;
// use Stop for a graceful shutdown.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopCh != nil {
		return fmt.Errorf("worker already started")
	}
	w.stopCh = make(chan struct{})

	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.cfg.ReclaimSpec, func() {
		w.reclaim(ctx)
	}); err != nil {
		w.stopCh = nil
		return fmt.Errorf("invalid reclaim spec %q: %w", w.cfg.ReclaimSpec, err)
	}
	w.cron.Start()

	stopCh := w.stopCh
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx, stopCh)
	}()

	w.logger.Info().
		Dur("poll_interval", w.cfg.PollInterval).
		Int("batch_size", w.cfg.BatchSize).
		Str("policy", w.cfg.DeliveryPolicy).
		Msg("worker started")

	return nil
}

// Stop shuts the worker down and waits for the in-flight cycle to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopCh == nil {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.stopCh = nil
	c := w.cron
	w.cron = nil
	w.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	w.wg.Wait()
	w.logger.Info().Msg("worker stopped")
}

// Run starts the worker and blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

func (w *Worker) loop(ctx context.Context, stopCh <-chan struct{}) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	// One immediate cycle so a restart picks up backlog without waiting a
	// full interval.
	w.Cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			// Fast-exit check so a closed stopCh wins over a pending tick.
			select {
			case <-stopCh:
				return
			default:
			}
			w.Cycle(ctx)
		}
	}
}

// Cycle runs one poll cycle. Item-level failures are logged and skipped so
// one bad row never wedges the loop.
func (w *Worker) Cycle(ctx context.Context) {
	w.promoteScheduled(ctx)
	w.announceOverdue(ctx)
	w.fireReminders(ctx)
	w.dispatchPending(ctx)
}

func (w *Worker) promoteScheduled(ctx context.Context) {
	promoted, err := w.tasks.PromoteDueScheduled(ctx, w.cfg.BatchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to promote scheduled tasks")
		return
	}
	for _, task := range promoted {
		w.logger.Info().Str("task_id", task.ID).Msg("scheduled task promoted to pending")
	}
}

func (w *Worker) announceOverdue(ctx context.Context) {
	announced, err := w.tasks.AnnounceOverdue(ctx, w.cfg.BatchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to announce overdue tasks")
		return
	}
	if announced > 0 {
		w.logger.Info().Int("count", announced).Msg("overdue tasks announced")
	}
}

func (w *Worker) fireReminders(ctx context.Context) {
	due, err := w.reminders.DueReminders(ctx, w.cfg.BatchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to query due reminders")
		return
	}

	for _, rem := range due {
		outcome, err := w.reminders.Fire(ctx, rem.ID, w.id)
		var conflict *models.ClaimConflictError
		if errors.As(err, &conflict) {
			w.logger.Debug().Str("reminder_id", rem.ID).Msg("reminder claimed by another worker")
			continue
		}
		if err != nil {
			w.logger.Error().Err(err).Str("reminder_id", rem.ID).Msg("failed to fire reminder")
			continue
		}

		evt := w.logger.Info().Str("reminder_id", rem.ID).Str("task_id", rem.TaskID)
		if outcome.Suppressed {
			evt.Msg("reminder suppressed")
		} else {
			evt.Str("notification_id", outcome.NotificationID).Msg("reminder fired")
		}
	}
}

func (w *Worker) dispatchPending(ctx context.Context) {
	eligible, err := w.notifications.PendingForDispatch(ctx, w.cfg.BatchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to query eligible notifications")
		return
	}

	for _, note := range eligible {
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}

		outcome, err := w.dispatch.Dispatch(ctx, note.ID, w.id)
		var conflict *models.ClaimConflictError
		if errors.As(err, &conflict) {
			w.logger.Debug().Str("notification_id", note.ID).Msg("notification claimed by another worker")
			continue
		}
		var terminal *models.TerminalStateError
		if errors.As(err, &terminal) {
			continue
		}
		if err != nil {
			w.logger.Error().Err(err).Str("notification_id", note.ID).Msg("dispatch failed")
			continue
		}

		w.logger.Info().
			Str("notification_id", note.ID).
			Int("attempt", outcome.Attempt).
			Int("sent", outcome.Sent).
			Int("failed", outcome.Failed).
			Int("skipped", outcome.Skipped).
			Str("status", outcome.Status).
			Bool("terminal", outcome.Terminal).
			Msg("notification dispatched")
	}
}

// reclaim releases leases abandoned by crashed workers.
func (w *Worker) reclaim(ctx context.Context) {
	now := w.clock.Now()

	reminders, err := w.leases.Reminders.ReclaimExpired(ctx, now)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to reclaim reminder leases")
	}
	notifications, err := w.leases.Notifications.ReclaimExpired(ctx, now)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to reclaim notification leases")
	}

	if reminders > 0 || notifications > 0 {
		w.logger.Warn().
			Int("reminders", reminders).
			Int("notifications", notifications).
			Msg("expired leases reclaimed")
	}
}
