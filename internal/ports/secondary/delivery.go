package secondary

import (
	"context"
	"time"
)

// Message is a rendered notification body handed to a channel adapter.
type Message struct {
	EventKey string
	Subject  string
	Body     string
	Metadata map[string]string
}

// SendResult reports the outcome of a channel send.
type SendResult struct {
	ProviderMessageID string
}

// ChannelAdapter delivers rendered messages over one channel. Adapters are
// pluggable; the engine treats them as external collaborators and bounds
// each Send with a per-dispatch timeout.
type ChannelAdapter interface {
	// Channel returns the channel name this adapter serves.
	Channel() string

	// Send delivers the message to a single recipient.
	Send(ctx context.Context, recipient string, msg Message) (*SendResult, error)
}

// TemplateRenderer resolves an (event key, channel, locale) triple plus
// payload to a message. It fails with models.TemplateNotFoundError rather
// than producing an empty body.
type TemplateRenderer interface {
	Render(ctx context.Context, eventKey, channel, locale string, payload map[string]string) (*Message, error)
}

// Clock abstracts time so the worker loop can run against a virtual clock
// in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation of Clock.
type SystemClock struct{}

// Now returns the current wall-clock time in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
