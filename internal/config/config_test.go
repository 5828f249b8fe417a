package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.PollInterval != 2*time.Second {
		t.Errorf("expected poll interval 2s, got %s", cfg.PollInterval)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("expected batch size 50, got %d", cfg.BatchSize)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("expected max attempts 5, got %d", cfg.MaxAttempts)
	}
	if cfg.DeliveryPolicy != "any" {
		t.Errorf("expected policy any, got %q", cfg.DeliveryPolicy)
	}
	if len(cfg.DefaultChannels) != 1 || cfg.DefaultChannels[0] != "sse" {
		t.Errorf("expected default channels [sse], got %v", cfg.DefaultChannels)
	}
	if cfg.ClaimTTL != time.Minute {
		t.Errorf("expected claim ttl 1m, got %s", cfg.ClaimTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PULSE_BATCH_SIZE", "10")
	t.Setenv("PULSE_DELIVERY_POLICY", "all")
	t.Setenv("PULSE_DEFAULT_CHANNELS", "sse,email")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BatchSize != 10 {
		t.Errorf("expected batch size 10, got %d", cfg.BatchSize)
	}
	if cfg.DeliveryPolicy != "all" {
		t.Errorf("expected policy all, got %q", cfg.DeliveryPolicy)
	}
	if len(cfg.DefaultChannels) != 2 {
		t.Errorf("expected 2 default channels, got %v", cfg.DefaultChannels)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad policy", func(c *Config) { c.DeliveryPolicy = "most" }},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"inverted backoff", func(c *Config) { c.BackoffBase = time.Hour; c.BackoffMax = time.Second }},
		{"blank channel", func(c *Config) { c.DefaultChannels = []string{"sse", " "} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				BatchSize:       50,
				MaxAttempts:     5,
				BackoffBase:     30 * time.Second,
				BackoffMax:      time.Hour,
				DeliveryPolicy:  "any",
				DefaultChannels: []string{"sse"},
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
