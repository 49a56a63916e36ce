package media

import (
	"fmt"
	"strings"
)

// Capability classifies what a model transforms.
type Capability string

const (
	TextToText   Capability = "text-to-text"
	TextToImage  Capability = "text-to-image"
	ImageToImage Capability = "image-to-image"
	ImageToVideo Capability = "image-to-video"
	TextToAudio  Capability = "text-to-audio"
)

// Capabilities returns every capability the layer understands.
func Capabilities() []Capability {
	return []Capability{TextToText, TextToImage, ImageToImage, ImageToVideo, TextToAudio}
}

// ParseCapability maps a user-supplied string to a Capability.
func ParseCapability(s string) (Capability, error) {
	c := Capability(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Capabilities() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q (known: %v)", s, Capabilities())
}

// NeedsSource reports whether the capability consumes a source image.
func (c Capability) NeedsSource() bool {
	return c == ImageToImage || c == ImageToVideo
}

// ProviderType classifies how a provider reaches its back end.
type ProviderType string

const (
	// ProviderDocker marks providers backed by a locally running container
	// resolved through the service registry.
	ProviderDocker ProviderType = "docker"
	// ProviderHosted marks providers backed by a remote vendor API.
	ProviderHosted ProviderType = "hosted"
)
