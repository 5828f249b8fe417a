package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// TerminalStateError is returned for transitions attempted on an entity
// already in a final status. It is surfaced to the caller and never retried.
type TerminalStateError struct {
	Entity string
	ID     string
	Status string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("%s %s is in terminal status %q", e.Entity, e.ID, e.Status)
}

// DuplicateKeyError is returned when a create collides with an existing
// dedup key or reminder triple. Most callers treat it as success with the
// existing record; the error type exists for strict callers.
type DuplicateKeyError struct {
	Key        string
	ExistingID string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q (existing %s)", e.Key, e.ExistingID)
}

// ChannelDeliveryError wraps a single channel adapter failure. It is
// recorded on the delivery attempt and retried per the backoff policy.
type ChannelDeliveryError struct {
	Channel   string
	Recipient string
	Err       error
}

func (e *ChannelDeliveryError) Error() string {
	return fmt.Sprintf("channel %s delivery to %s failed: %v", e.Channel, e.Recipient, e.Err)
}

func (e *ChannelDeliveryError) Unwrap() error { return e.Err }

// TemplateNotFoundError is returned when no active template exists for an
// (event key, channel, locale) triple. The dispatch attempt fails with a
// descriptive error; it still counts toward the attempts budget.
type TemplateNotFoundError struct {
	EventKey string
	Channel  string
	Locale   string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("no active template for event %q channel %q locale %q", e.EventKey, e.Channel, e.Locale)
}

// ClaimConflictError is returned when a worker loses the claim race for a
// due item. The loser skips the item this tick; this is expected under
// multi-replica operation, not an operator-visible failure.
type ClaimConflictError struct {
	Entity string
	ID     string
}

func (e *ClaimConflictError) Error() string {
	return fmt.Sprintf("%s %s already claimed by another worker", e.Entity, e.ID)
}
