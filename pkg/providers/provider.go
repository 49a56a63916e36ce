package providers

import (
	"context"

	"github.com/mediabridge/mediabridge-go/pkg/media"
)

// Provider exposes a uniform interface over one media-generation back end,
// whether that is a hosted vendor API or a Docker-hosted service.
type Provider interface {
	// Name returns the provider's registry name, e.g. "cowsay" or "openai".
	Name() string

	// Type reports how the provider reaches its back end.
	Type() media.ProviderType

	// Capabilities returns the capabilities the provider declares.
	Capabilities() []media.Capability

	// AvailableModels returns the fixed list of supported model identifiers.
	AvailableModels() []string

	// Models returns descriptors for every declared model.
	Models() []media.ModelInfo

	// CreateModel constructs a fresh model wrapper bound to a resolved back
	// end. It fails with ErrModelNotSupported for unrecognized identifiers.
	// The context covers service resolution for Docker-backed providers.
	CreateModel(ctx context.Context, id string) (media.Model, error)

	// GetModel is CreateModel with per-identifier memoization.
	GetModel(ctx context.Context, id string) (media.Model, error)

	// ModelsForCapability returns descriptors of the declared models that
	// carry the capability, empty for any capability the provider does not
	// declare.
	ModelsForCapability(c media.Capability) []media.ModelInfo
}
