package media

import "context"

// ModelInfo is an immutable descriptor of a model a provider exposes.
type ModelInfo struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Provider     string       `json:"provider"`
	Capabilities []Capability `json:"capabilities"`
}

// HasCapability reports whether the model declares the capability.
func (m ModelInfo) HasCapability(c Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Request carries one generation call to a model.
type Request struct {
	Prompt    string                 `json:"prompt"`
	SourceURL string                 `json:"source_url,omitempty"`
	Voice     string                 `json:"voice,omitempty"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

// Result is what a model returned: a remote URL, a saved local file, or both.
type Result struct {
	URL         string `json:"url,omitempty"`
	Path        string `json:"path,omitempty"`
	Text        string `json:"text,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// Model is a wrapper bound to a resolved back end. Generate forwards the
// request to the backing service or API; no inference happens locally.
type Model interface {
	Info() ModelInfo
	Generate(ctx context.Context, req Request) (*Result, error)
}
