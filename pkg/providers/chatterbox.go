package providers

import (
	"github.com/mediabridge/mediabridge-go/pkg/media"
	"github.com/mediabridge/mediabridge-go/pkg/services"
)

// ChatterboxProvider serves speech synthesis through the chatterbox service.
type ChatterboxProvider struct {
	DockerProvider
}

// NewChatterboxProvider builds the provider over the given catalog entry.
func NewChatterboxProvider(entry services.CatalogEntry, loc services.Locator) *ChatterboxProvider {
	p := &ChatterboxProvider{
		DockerProvider: newDockerProvider(entry, loc, media.TextToAudio),
	}
	p.registerServiceModel(media.ModelInfo{
		ID:           "chatterbox-en",
		Name:         "Chatterbox (English)",
		Capabilities: []media.Capability{media.TextToAudio},
	})
	p.registerServiceModel(media.ModelInfo{
		ID:           "chatterbox-multilingual",
		Name:         "Chatterbox (multilingual)",
		Capabilities: []media.Capability{media.TextToAudio},
	})
	return p
}
