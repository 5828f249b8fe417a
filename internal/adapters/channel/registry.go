// Package channel holds delivery channel adapters and their registry.
package channel

import (
	"fmt"

	"github.com/example/pulse/internal/ports/secondary"
)

// Registry maps channel names to their adapters. Dispatch looks adapters up
// per (channel, recipient) pair; an unregistered channel is a delivery
// failure for that pair, not a crash.
type Registry struct {
	adapters map[string]secondary.ChannelAdapter
}

// NewRegistry creates a registry with the given adapters.
func NewRegistry(adapters ...secondary.ChannelAdapter) *Registry {
	r := &Registry{adapters: make(map[string]secondary.ChannelAdapter)}
	for _, a := range adapters {
		r.adapters[a.Channel()] = a
	}
	return r
}

// Register adds or replaces the adapter for its channel.
func (r *Registry) Register(adapter secondary.ChannelAdapter) {
	r.adapters[adapter.Channel()] = adapter
}

// Get returns the adapter for a channel.
func (r *Registry) Get(channel string) (secondary.ChannelAdapter, error) {
	adapter, ok := r.adapters[channel]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for channel %q", channel)
	}
	return adapter, nil
}

// Channels returns the registered channel names.
func (r *Registry) Channels() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
