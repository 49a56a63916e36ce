package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mediabridge/mediabridge-go/pkg/media"
)

// buildFunc constructs a model wrapper for the descriptor held in the
// provider's table. For Docker-backed providers this is where the service URL
// gets resolved, so construction can fail.
type buildFunc func(ctx context.Context, info media.ModelInfo) (media.Model, error)

type modelEntry struct {
	info  media.ModelInfo
	build buildFunc
}

// BaseProvider carries the bookkeeping every provider shares: the declared
// model table, capability filtering, and the wrapper cache behind GetModel.
// Concrete providers embed it and register their models at construction.
type BaseProvider struct {
	name  string
	ptype media.ProviderType
	caps  []media.Capability

	order  []string
	models map[string]modelEntry

	mu    sync.Mutex
	cache map[string]media.Model
}

func newBaseProvider(name string, ptype media.ProviderType, caps ...media.Capability) BaseProvider {
	return BaseProvider{
		name:   name,
		ptype:  ptype,
		caps:   caps,
		models: make(map[string]modelEntry),
		cache:  make(map[string]media.Model),
	}
}

// register adds a model to the provider's table. Registration order is the
// order AvailableModels reports.
func (b *BaseProvider) register(info media.ModelInfo, build buildFunc) {
	info.Provider = b.name
	if _, exists := b.models[info.ID]; !exists {
		b.order = append(b.order, info.ID)
	}
	b.models[info.ID] = modelEntry{info: info, build: build}
}

// Name returns the provider's registry name.
func (b *BaseProvider) Name() string { return b.name }

// Type reports whether the provider is docker-backed or hosted.
func (b *BaseProvider) Type() media.ProviderType { return b.ptype }

// Capabilities returns the capabilities the provider declares.
func (b *BaseProvider) Capabilities() []media.Capability {
	out := make([]media.Capability, len(b.caps))
	copy(out, b.caps)
	return out
}

// AvailableModels returns the declared model identifiers in declaration order.
func (b *BaseProvider) AvailableModels() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// ModelInfo returns the descriptor for a declared model identifier.
func (b *BaseProvider) ModelInfo(id string) (media.ModelInfo, bool) {
	entry, ok := b.models[id]
	return entry.info, ok
}

// Models returns descriptors for every declared model in declaration order.
func (b *BaseProvider) Models() []media.ModelInfo {
	out := make([]media.ModelInfo, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.models[id].info)
	}
	return out
}

// CreateModel constructs a fresh wrapper for the identifier, resolving the
// back end as needed. Unknown identifiers fail with ErrModelNotSupported and
// the list of identifiers the provider does support.
func (b *BaseProvider) CreateModel(ctx context.Context, id string) (media.Model, error) {
	entry, ok := b.models[id]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s has no model %q (available: %s)",
			ErrModelNotSupported, b.name, id, strings.Join(b.order, ", "))
	}
	model, err := entry.build(ctx, entry.info)
	if err != nil {
		return nil, fmt.Errorf("failed to create model %s: %w", id, err)
	}
	return model, nil
}

// GetModel returns a cached wrapper for the identifier, constructing and
// memoizing one on first use.
func (b *BaseProvider) GetModel(ctx context.Context, id string) (media.Model, error) {
	b.mu.Lock()
	if model, ok := b.cache[id]; ok {
		b.mu.Unlock()
		return model, nil
	}
	b.mu.Unlock()

	model, err := b.CreateModel(ctx, id)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.cache[id] = model
	b.mu.Unlock()
	return model, nil
}

// ModelsForCapability returns descriptors for the declared models carrying
// the capability, in declaration order. Capabilities the provider never
// declared yield an empty slice rather than an error.
func (b *BaseProvider) ModelsForCapability(c media.Capability) []media.ModelInfo {
	var out []media.ModelInfo
	for _, id := range b.order {
		if entry := b.models[id]; entry.info.HasCapability(c) {
			out = append(out, entry.info)
		}
	}
	return out
}

// generateFunc is a provider method that serves one model's generation.
type generateFunc func(ctx context.Context, info media.ModelInfo, req media.Request) (*media.Result, error)

// registerHosted declares a model backed directly by a provider method.
// Hosted vendor APIs need no per-model resolution, so construction never
// fails.
func (b *BaseProvider) registerHosted(info media.ModelInfo, generate generateFunc) {
	b.register(info, func(ctx context.Context, info media.ModelInfo) (media.Model, error) {
		return &hostedModel{
			info: info,
			generate: func(ctx context.Context, req media.Request) (*media.Result, error) {
				return generate(ctx, info, req)
			},
		}, nil
	})
}

// hostedModel binds a model descriptor to a provider method.
type hostedModel struct {
	info     media.ModelInfo
	generate func(ctx context.Context, req media.Request) (*media.Result, error)
}

func (m *hostedModel) Info() media.ModelInfo { return m.info }

func (m *hostedModel) Generate(ctx context.Context, req media.Request) (*media.Result, error) {
	return m.generate(ctx, req)
}
