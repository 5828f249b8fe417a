package channel

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/pulse/internal/ports/secondary"
)

// LogAdapter writes deliveries to the structured log instead of an external
// provider. It backs the sse/push/chat channels in single-node deployments
// where a real provider integration is not configured.
type LogAdapter struct {
	channel string
	logger  zerolog.Logger
}

// NewLogAdapter creates a log-backed adapter for the given channel.
func NewLogAdapter(channel string, logger zerolog.Logger) *LogAdapter {
	return &LogAdapter{
		channel: channel,
		logger:  logger.With().Str("adapter", channel).Logger(),
	}
}

// Channel returns the channel name this adapter serves.
func (a *LogAdapter) Channel() string {
	return a.channel
}

// Send logs the message and reports success with a synthetic provider
// message ID.
func (a *LogAdapter) Send(ctx context.Context, recipient string, msg secondary.Message) (*secondary.SendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	a.logger.Info().
		Str("recipient", recipient).
		Str("event_key", msg.EventKey).
		Str("subject", msg.Subject).
		Str("provider_message_id", id).
		Msg(msg.Body)

	return &secondary.SendResult{ProviderMessageID: id}, nil
}

// Ensure LogAdapter implements the interface
var _ secondary.ChannelAdapter = (*LogAdapter)(nil)
