package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// NotificationConfig carries the notification defaults.
type NotificationConfig struct {
	MaxAttempts     int
	DefaultChannels []string
}

// NotificationService implements primary.NotificationService.
type NotificationService struct {
	notifications secondary.NotificationRepository
	attempts      secondary.AttemptRepository
	clock         secondary.Clock
	cfg           NotificationConfig
}

// NewNotificationService creates a new notification service.
func NewNotificationService(
	notifications secondary.NotificationRepository,
	attempts secondary.AttemptRepository,
	clock secondary.Clock,
	cfg NotificationConfig,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		attempts:      attempts,
		clock:         clock,
		cfg:           cfg,
	}
}

// Create registers a notification. A dedup-key collision is an idempotent
// success returning the existing record.
func (s *NotificationService) Create(ctx context.Context, req primary.CreateNotificationRequest) (*primary.Notification, error) {
	_, record, err := s.create(ctx, req)
	if err != nil {
		return nil, err
	}
	return toNotification(record), nil
}

// CreateStrict registers a notification and surfaces a dedup-key collision
// as models.DuplicateKeyError carrying the existing ID.
func (s *NotificationService) CreateStrict(ctx context.Context, req primary.CreateNotificationRequest) (*primary.Notification, error) {
	created, record, err := s.create(ctx, req)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, &models.DuplicateKeyError{Key: req.DedupKey, ExistingID: record.ID}
	}
	return toNotification(record), nil
}

func (s *NotificationService) create(ctx context.Context, req primary.CreateNotificationRequest) (bool, *secondary.NotificationRecord, error) {
	if req.EventKey == "" {
		return false, nil, fmt.Errorf("notification event key is required")
	}
	if len(req.Recipients) == 0 {
		return false, nil, fmt.Errorf("notification requires at least one recipient")
	}
	if err := models.ValidatePayload(req.EventKey, req.Payload); err != nil {
		return false, nil, err
	}

	channels := req.Channels
	if len(channels) == 0 {
		channels = s.cfg.DefaultChannels
	}
	if len(channels) == 0 {
		return false, nil, fmt.Errorf("notification requires at least one channel")
	}

	record := &secondary.NotificationRecord{
		ID:          "n-" + uuid.NewString(),
		EventKey:    req.EventKey,
		Payload:     req.Payload,
		Recipients:  req.Recipients,
		Channels:    channels,
		DedupKey:    req.DedupKey,
		MaxAttempts: s.cfg.MaxAttempts,
	}

	return s.notifications.Create(ctx, record)
}

// Get retrieves a notification by ID.
func (s *NotificationService) Get(ctx context.Context, id string) (*primary.Notification, error) {
	record, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toNotification(record), nil
}

// List lists notifications with optional filters, newest first.
func (s *NotificationService) List(ctx context.Context, filters primary.NotificationFilters) ([]*primary.Notification, error) {
	records, err := s.notifications.List(ctx, secondary.NotificationFilters{
		Status:   filters.Status,
		EventKey: filters.EventKey,
	})
	if err != nil {
		return nil, err
	}

	notifications := make([]*primary.Notification, 0, len(records))
	for _, r := range records {
		notifications = append(notifications, toNotification(r))
	}
	return notifications, nil
}

// PendingForDispatch returns dispatch-eligible notifications.
func (s *NotificationService) PendingForDispatch(ctx context.Context, limit int) ([]*primary.Notification, error) {
	records, err := s.notifications.PendingForDispatch(ctx, s.clock.Now(), limit)
	if err != nil {
		return nil, err
	}

	notifications := make([]*primary.Notification, 0, len(records))
	for _, r := range records {
		notifications = append(notifications, toNotification(r))
	}
	return notifications, nil
}

// Attempts retrieves the delivery attempt audit trail of a notification.
func (s *NotificationService) Attempts(ctx context.Context, id string) ([]*primary.DeliveryAttempt, error) {
	if _, err := s.notifications.GetByID(ctx, id); err != nil {
		return nil, err
	}

	records, err := s.attempts.ListByNotification(ctx, id)
	if err != nil {
		return nil, err
	}

	attempts := make([]*primary.DeliveryAttempt, 0, len(records))
	for _, r := range records {
		attempts = append(attempts, &primary.DeliveryAttempt{
			ID:                r.ID,
			NotificationID:    r.NotificationID,
			Attempt:           r.Attempt,
			Channel:           r.Channel,
			Recipient:         r.Recipient,
			Status:            r.Status,
			ProviderMessageID: r.ProviderMessageID,
			Error:             r.Error,
			CreatedAt:         r.CreatedAt,
		})
	}
	return attempts, nil
}

func toNotification(r *secondary.NotificationRecord) *primary.Notification {
	return &primary.Notification{
		ID:            r.ID,
		EventKey:      r.EventKey,
		Payload:       r.Payload,
		Recipients:    r.Recipients,
		Channels:      r.Channels,
		DedupKey:      r.DedupKey,
		Status:        r.Status,
		AttemptsCount: r.AttemptsCount,
		MaxAttempts:   r.MaxAttempts,
		LastAttemptAt: r.LastAttemptAt,
		NextAttemptAt: r.NextAttemptAt,
		LastError:     r.LastError,
		Terminal:      r.Terminal,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Ensure NotificationService implements the interface
var _ primary.NotificationService = (*NotificationService)(nil)
