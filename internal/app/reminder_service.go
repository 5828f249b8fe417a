package app

import (
	"context"
	"fmt"
	"time"

	corereminder "github.com/example/pulse/internal/core/reminder"
	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// ReminderService implements primary.ReminderService.
type ReminderService struct {
	reminders secondary.ReminderRepository
	tasks     secondary.TaskRepository
	activity  secondary.ActivityRepository
	notifier  primary.NotificationService
	clock     secondary.Clock
	claimTTL  time.Duration
}

// NewReminderService creates a new reminder service.
func NewReminderService(
	reminders secondary.ReminderRepository,
	tasks secondary.TaskRepository,
	activity secondary.ActivityRepository,
	notifier primary.NotificationService,
	clock secondary.Clock,
	claimTTL time.Duration,
) *ReminderService {
	return &ReminderService{
		reminders: reminders,
		tasks:     tasks,
		activity:  activity,
		notifier:  notifier,
		clock:     clock,
		claimTTL:  claimTTL,
	}
}

// Schedule registers a reminder. Re-scheduling an existing
// (task, remind_at, channel) triple returns the existing reminder unchanged.
func (s *ReminderService) Schedule(ctx context.Context, req primary.ScheduleReminderRequest) (*primary.Reminder, error) {
	task, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	guard := corereminder.CanSchedule(corereminder.ScheduleContext{
		TaskID:     req.TaskID,
		TaskStatus: task.Status,
		Channel:    req.Channel,
	})
	if !guard.Allowed {
		if models.IsFinalTaskStatus(task.Status) {
			return nil, &models.TerminalStateError{Entity: "task", ID: req.TaskID, Status: task.Status}
		}
		return nil, guard.Error()
	}

	if req.RemindAt == "" {
		return nil, fmt.Errorf("reminder remind_at is required")
	}
	if err := validateRFC3339("remind_at", req.RemindAt); err != nil {
		return nil, err
	}

	id, err := s.reminders.GetNextID(ctx)
	if err != nil {
		return nil, err
	}

	_, record, err := s.reminders.Create(ctx, &secondary.ReminderRecord{
		ID:       id,
		TaskID:   req.TaskID,
		RemindAt: req.RemindAt,
		Channel:  req.Channel,
	})
	if err != nil {
		return nil, err
	}

	return toReminder(record), nil
}

// ListByTask lists reminders of a task ordered by remind_at.
func (s *ReminderService) ListByTask(ctx context.Context, taskID string) ([]*primary.Reminder, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	records, err := s.reminders.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	reminders := make([]*primary.Reminder, 0, len(records))
	for _, r := range records {
		reminders = append(reminders, toReminder(r))
	}
	return reminders, nil
}

// DueReminders returns unfired reminders whose remind_at has passed.
func (s *ReminderService) DueReminders(ctx context.Context, limit int) ([]*primary.Reminder, error) {
	records, err := s.reminders.Due(ctx, s.clock.Now(), limit)
	if err != nil {
		return nil, err
	}

	reminders := make([]*primary.Reminder, 0, len(records))
	for _, r := range records {
		reminders = append(reminders, toReminder(r))
	}
	return reminders, nil
}

// Fire claims and fires one due reminder. The bridge notification is created
// with a deterministic dedup key before the reminder is marked fired, so a
// crash between the two steps collapses onto the same notification on replay
// instead of duplicating it.
func (s *ReminderService) Fire(ctx context.Context, reminderID, workerID string) (*primary.FireOutcome, error) {
	now := s.clock.Now()
	if err := s.reminders.Claim(ctx, reminderID, workerID, now, now.Add(s.claimTTL)); err != nil {
		return nil, err
	}

	reminder, err := s.reminders.GetByID(ctx, reminderID)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, reminder.TaskID)
	if err != nil {
		return nil, err
	}

	// Re-check at fire time: the task may have reached a terminal status
	// since the reminder was scheduled.
	if corereminder.ShouldSuppress(task.Status) {
		if err := s.reminders.MarkFired(ctx, reminderID, now, true); err != nil {
			return nil, err
		}
		s.appendReminderActivity(ctx, task.ID, models.ActivityReminderSkipped,
			"Reminder "+reminderID+" suppressed: task "+task.Status)
		return &primary.FireOutcome{ReminderID: reminderID, Suppressed: true}, nil
	}

	payload := map[string]string{
		"task_id":    task.ID,
		"task_title": task.Title,
	}
	if task.DueAt != "" {
		payload["due_at"] = task.DueAt
	}

	notification, err := s.notifier.Create(ctx, primary.CreateNotificationRequest{
		EventKey:   models.EventTaskReminder,
		Payload:    payload,
		Recipients: []string{task.AssigneeID},
		Channels:   []string{reminder.Channel},
		DedupKey:   corereminder.DedupKey(reminderID),
	})
	if err != nil {
		return nil, err
	}

	if err := s.reminders.MarkFired(ctx, reminderID, now, false); err != nil {
		return nil, err
	}

	s.appendReminderActivity(ctx, task.ID, models.ActivityReminderFired,
		"Reminder "+reminderID+" fired on channel "+reminder.Channel)

	return &primary.FireOutcome{
		ReminderID:     reminderID,
		NotificationID: notification.ID,
	}, nil
}

func (s *ReminderService) appendReminderActivity(ctx context.Context, taskID, eventType, body string) {
	_ = s.activity.Append(ctx, &secondary.ActivityRecord{
		TaskID:    taskID,
		EventType: eventType,
		Body:      body,
		Actor:     "system",
	})
}

func toReminder(r *secondary.ReminderRecord) *primary.Reminder {
	return &primary.Reminder{
		ID:         r.ID,
		TaskID:     r.TaskID,
		RemindAt:   r.RemindAt,
		Channel:    r.Channel,
		FiredAt:    r.FiredAt,
		Suppressed: r.Suppressed,
		CreatedAt:  r.CreatedAt,
	}
}

// Ensure ReminderService implements the interface
var _ primary.ReminderService = (*ReminderService)(nil)
