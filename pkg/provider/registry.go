// Package provider contains the provider registry for managing multiple provider instances.
package provider

import (
	"fmt"
	"log/slog"
	"sync"
)

// Factory is a function that creates a new provider instance from its
// settings map. Keys are upper-case setting names (e.g., "TOKEN").
type Factory func(name string, settings map[string]string) (Provider, error)

// Registry manages provider type factories and active provider instances.
type Registry struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	factories map[string]Factory  // type name -> factory function
	instances map[string]Provider // instance name -> provider
	order     []string            // instance names in creation order
}

// NewRegistry creates a new provider registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:    logger,
		factories: make(map[string]Factory),
		instances: make(map[string]Provider),
		order:     make([]string, 0),
	}
}

// RegisterFactory registers a provider factory for a given type.
func (r *Registry) RegisterFactory(typeName string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typeName] = factory
}

// CreateInstance creates and registers a provider instance.
func (r *Registry) CreateInstance(name, typeName string, settings map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	factory, ok := r.factories[typeName]
	if !ok {
		return fmt.Errorf("unknown provider type: %s", typeName)
	}
	if _, exists := r.instances[name]; exists {
		return fmt.Errorf("duplicate provider instance: %s", name)
	}

	provider, err := factory(name, settings)
	if err != nil {
		return fmt.Errorf("creating provider %s: %w", name, err)
	}

	r.instances[name] = provider
	r.order = append(r.order, name)

	r.logger.Debug("registered provider instance",
		slog.String("name", name),
		slog.String("type", typeName),
	)
	return nil
}

// Get returns a provider instance by name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.instances[name]
	return p, ok
}

// All returns all provider instances in creation order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		if p, ok := r.instances[name]; ok {
			providers = append(providers, p)
		}
	}
	return providers
}
