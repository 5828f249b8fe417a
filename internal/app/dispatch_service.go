package app

import (
	"context"
	"fmt"
	"time"

	corenotification "github.com/example/pulse/internal/core/notification"
	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// AdapterResolver looks up the channel adapter for a channel name.
type AdapterResolver interface {
	Get(channel string) (secondary.ChannelAdapter, error)
}

// DispatchConfig carries the dispatch tuning knobs.
type DispatchConfig struct {
	Policy      models.DeliveryPolicy
	BackoffBase time.Duration
	BackoffMax  time.Duration
	ClaimTTL    time.Duration
	SendTimeout time.Duration
}

// DispatchService implements primary.DispatchService.
type DispatchService struct {
	notifications secondary.NotificationRepository
	attempts      secondary.AttemptRepository
	renderer      secondary.TemplateRenderer
	adapters      AdapterResolver
	clock         secondary.Clock
	cfg           DispatchConfig
}

// NewDispatchService creates a new dispatch service.
func NewDispatchService(
	notifications secondary.NotificationRepository,
	attempts secondary.AttemptRepository,
	renderer secondary.TemplateRenderer,
	adapters AdapterResolver,
	clock secondary.Clock,
	cfg DispatchConfig,
) *DispatchService {
	return &DispatchService{
		notifications: notifications,
		attempts:      attempts,
		renderer:      renderer,
		adapters:      adapters,
		clock:         clock,
		cfg:           cfg,
	}
}

// Dispatch runs one delivery cycle for a notification: claim, fan out to
// every outstanding (channel, recipient) pair, record one attempt row per
// pair, and settle the status under the delivery policy. Pairs that already
// succeeded in earlier cycles are skipped, never re-sent.
func (s *DispatchService) Dispatch(ctx context.Context, notificationID, workerID string) (*primary.DispatchOutcome, error) {
	now := s.clock.Now()
	if err := s.notifications.Claim(ctx, notificationID, workerID, now, now.Add(s.cfg.ClaimTTL)); err != nil {
		return nil, err
	}

	record, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}

	guard := corenotification.CanTransition(corenotification.TransitionContext{
		NotificationID: notificationID,
		From:           record.Status,
		To:             models.NotificationStatusDispatching,
		Terminal:       record.Terminal,
	})
	if !guard.Allowed {
		if record.Status == models.NotificationStatusDelivered || record.Terminal {
			return nil, &models.TerminalStateError{Entity: "notification", ID: notificationID, Status: record.Status}
		}
		return nil, guard.Error()
	}

	if err := s.notifications.MarkDispatching(ctx, notificationID, now); err != nil {
		return nil, err
	}

	priorSent, err := s.attempts.SentPairs(ctx, notificationID)
	if err != nil {
		return nil, err
	}

	attemptNo := record.AttemptsCount + 1
	outcome := &primary.DispatchOutcome{
		NotificationID: notificationID,
		Attempt:        attemptNo,
	}

	var lastError string
	for _, channel := range record.Channels {
		for _, recipient := range record.Recipients {
			if priorSent[channel+"|"+recipient] {
				outcome.Skipped++
				continue
			}

			result, sendErr := s.sendOne(ctx, record, channel, recipient)

			attempt := &secondary.AttemptRecord{
				NotificationID: notificationID,
				Attempt:        attemptNo,
				Channel:        channel,
				Recipient:      recipient,
			}
			if sendErr != nil {
				attempt.Status = models.AttemptStatusFailed
				attempt.Error = sendErr.Error()
				lastError = sendErr.Error()
				outcome.Failed++
			} else {
				attempt.Status = models.AttemptStatusSent
				if result != nil {
					attempt.ProviderMessageID = result.ProviderMessageID
				}
				outcome.Sent++
			}

			if err := s.attempts.Append(ctx, attempt); err != nil {
				return nil, fmt.Errorf("failed to record attempt: %w", err)
			}
		}
	}

	status := corenotification.Outcome(s.cfg.Policy, outcome.Sent, outcome.Failed, len(priorSent))
	outcome.Status = status
	settledAt := s.clock.Now()

	if status == models.NotificationStatusDelivered {
		if err := s.notifications.MarkDelivered(ctx, notificationID, attemptNo, settledAt); err != nil {
			return nil, err
		}
		return outcome, nil
	}

	outcome.Terminal = attemptNo >= record.MaxAttempts
	delay := corenotification.RetryDelay(attemptNo, s.cfg.BackoffBase, s.cfg.BackoffMax)
	if err := s.notifications.MarkFailed(ctx, notificationID, attemptNo, lastError,
		settledAt, settledAt.Add(delay), outcome.Terminal); err != nil {
		return nil, err
	}

	return outcome, nil
}

// sendOne renders and delivers to a single (channel, recipient) pair under
// the per-send timeout. Render failures and missing adapters count as
// delivery failures for the pair.
func (s *DispatchService) sendOne(ctx context.Context, record *secondary.NotificationRecord, channel, recipient string) (*secondary.SendResult, error) {
	adapter, err := s.adapters.Get(channel)
	if err != nil {
		return nil, err
	}

	msg, err := s.renderer.Render(ctx, record.EventKey, channel, models.DefaultLocale, record.Payload)
	if err != nil {
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	result, err := adapter.Send(sendCtx, recipient, *msg)
	if err != nil {
		return nil, &models.ChannelDeliveryError{Channel: channel, Recipient: recipient, Err: err}
	}

	return result, nil
}

// Ensure DispatchService implements the interface
var _ primary.DispatchService = (*DispatchService)(nil)
