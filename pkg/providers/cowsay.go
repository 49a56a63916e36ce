package providers

import (
	"github.com/mediabridge/mediabridge-go/pkg/media"
	"github.com/mediabridge/mediabridge-go/pkg/services"
)

// CowsayProvider serves ASCII-art speech bubbles through the cowsay service.
type CowsayProvider struct {
	DockerProvider
}

// NewCowsayProvider builds the provider over the given catalog entry. Each
// model selects a different cowfile on the service side.
func NewCowsayProvider(entry services.CatalogEntry, loc services.Locator) *CowsayProvider {
	p := &CowsayProvider{
		DockerProvider: newDockerProvider(entry, loc, media.TextToText),
	}
	p.registerServiceModel(media.ModelInfo{
		ID:           "cowsay-default",
		Name:         "Cowsay",
		Capabilities: []media.Capability{media.TextToText},
	})
	p.registerServiceModel(media.ModelInfo{
		ID:           "cowsay-dragon",
		Name:         "Cowsay (dragon)",
		Capabilities: []media.Capability{media.TextToText},
	})
	p.registerServiceModel(media.ModelInfo{
		ID:           "cowsay-tux",
		Name:         "Cowsay (tux)",
		Capabilities: []media.Capability{media.TextToText},
	})
	return p
}
