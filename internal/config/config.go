// Package config loads engine configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/example/pulse/internal/models"
)

// Config holds the engine configuration. Every field has a working default
// so a bare `pulse worker` starts without any environment set up.
type Config struct {
	// DBPath overrides the database location.
	DBPath string `env:"PULSE_DB_PATH"`

	// PollInterval is the worker poll cadence.
	PollInterval time.Duration `env:"PULSE_POLL_INTERVAL" envDefault:"2s"`

	// BatchSize bounds how many due items one poll cycle picks up.
	BatchSize int `env:"PULSE_BATCH_SIZE" envDefault:"50"`

	// MaxAttempts bounds delivery attempts per notification.
	MaxAttempts int `env:"PULSE_MAX_ATTEMPTS" envDefault:"5"`

	// BackoffBase is the delay before the first retry.
	BackoffBase time.Duration `env:"PULSE_BACKOFF_BASE" envDefault:"30s"`

	// BackoffMax caps the exponential retry delay.
	BackoffMax time.Duration `env:"PULSE_BACKOFF_MAX" envDefault:"1h"`

	// DeliveryPolicy is "any" or "all".
	DeliveryPolicy string `env:"PULSE_DELIVERY_POLICY" envDefault:"any"`

	// DefaultChannels is the channel set for notifications created without
	// explicit channels.
	DefaultChannels []string `env:"PULSE_DEFAULT_CHANNELS" envDefault:"sse" envSeparator:","`

	// DispatchTimeout bounds one channel send.
	DispatchTimeout time.Duration `env:"PULSE_DISPATCH_TIMEOUT" envDefault:"10s"`

	// ClaimTTL is the lease duration a worker holds on a claimed item.
	ClaimTTL time.Duration `env:"PULSE_CLAIM_TTL" envDefault:"1m"`

	// RatePerSec throttles dispatches across the worker.
	RatePerSec float64 `env:"PULSE_RATE_PER_SEC" envDefault:"20"`

	// ReclaimSpec is the cron spec of the expired-lease sweep.
	ReclaimSpec string `env:"PULSE_RECLAIM_SPEC" envDefault:"@every 1m"`

	// LogLevel sets the zerolog level (trace..panic).
	LogLevel string `env:"PULSE_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if !models.DeliveryPolicy(c.DeliveryPolicy).Valid() {
		return fmt.Errorf("invalid delivery policy %q (want any or all)", c.DeliveryPolicy)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.BackoffBase <= 0 || c.BackoffMax < c.BackoffBase {
		return fmt.Errorf("backoff window %s..%s is not ordered", c.BackoffBase, c.BackoffMax)
	}
	for _, ch := range c.DefaultChannels {
		if strings.TrimSpace(ch) == "" {
			return fmt.Errorf("default channels contain an empty entry")
		}
	}
	return nil
}

// Policy returns the configured delivery policy as its typed form.
func (c *Config) Policy() models.DeliveryPolicy {
	return models.DeliveryPolicy(c.DeliveryPolicy)
}
