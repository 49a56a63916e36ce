package providers

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mediabridge/mediabridge-go/pkg/media"
)

// Index aggregates registered providers and answers model lookups across all
// of them. Registration order is preserved so listings stay stable.
type Index struct {
	mu        sync.RWMutex
	order     []string
	providers map[string]Provider
}

// NewIndex creates an empty provider index.
func NewIndex() *Index {
	return &Index{providers: make(map[string]Provider)}
}

// Register adds a provider under its own name. Registering the same name
// twice replaces the earlier provider and logs the replacement.
func (x *Index) Register(p Provider) {
	x.mu.Lock()
	defer x.mu.Unlock()
	name := p.Name()
	if _, exists := x.providers[name]; exists {
		log.Printf("Provider %s re-registered, replacing previous instance", name)
	} else {
		x.order = append(x.order, name)
	}
	x.providers[name] = p
}

// Provider returns the provider registered under name.
func (x *Index) Provider(name string) (Provider, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	p, ok := x.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (registered: %v)", ErrProviderNotFound, name, x.order)
	}
	return p, nil
}

// Providers returns all registered providers in registration order.
func (x *Index) Providers() []Provider {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]Provider, 0, len(x.order))
	for _, name := range x.order {
		out = append(out, x.providers[name])
	}
	return out
}

// Names returns the registered provider names in registration order.
func (x *Index) Names() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]string, len(x.order))
	copy(out, x.order)
	return out
}

// Models returns descriptors for every model declared by every provider.
func (x *Index) Models() []media.ModelInfo {
	var out []media.ModelInfo
	for _, p := range x.Providers() {
		out = append(out, p.Models()...)
	}
	return out
}

// ModelsForCapability returns every declared model carrying the capability,
// grouped by provider registration order.
func (x *Index) ModelsForCapability(c media.Capability) []media.ModelInfo {
	var out []media.ModelInfo
	for _, p := range x.Providers() {
		out = append(out, p.ModelsForCapability(c)...)
	}
	return out
}

// ProviderForModel finds the provider declaring the model identifier.
func (x *Index) ProviderForModel(id string) (Provider, bool) {
	for _, p := range x.Providers() {
		for _, m := range p.AvailableModels() {
			if m == id {
				return p, true
			}
		}
	}
	return nil, false
}

// Model resolves a model identifier across all providers and returns a
// memoized wrapper for it.
func (x *Index) Model(ctx context.Context, id string) (media.Model, error) {
	p, ok := x.ProviderForModel(id)
	if !ok {
		return nil, fmt.Errorf("%w: no provider declares model %q (providers: %v)",
			ErrModelNotFound, id, x.Names())
	}
	return p.GetModel(ctx, id)
}
