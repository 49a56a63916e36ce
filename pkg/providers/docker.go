package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mediabridge/mediabridge-go/pkg/media"
	"github.com/mediabridge/mediabridge-go/pkg/services"
)

// DockerProvider is the shared base for providers backed by Docker-hosted
// services. The service URL is resolved when a model is constructed, so every
// model handed out is already bound to a concrete base URL.
type DockerProvider struct {
	BaseProvider
	entry   services.CatalogEntry
	locator services.Locator
	client  *http.Client
}

func newDockerProvider(entry services.CatalogEntry, loc services.Locator, caps ...media.Capability) DockerProvider {
	return DockerProvider{
		BaseProvider: newBaseProvider(entry.Name, media.ProviderDocker, caps...),
		entry:        entry,
		locator:      loc,
		client:       &http.Client{Timeout: 120 * time.Second},
	}
}

// Service returns the catalog entry the provider is bound to.
func (p *DockerProvider) Service() services.CatalogEntry { return p.entry }

// registerServiceModel declares a model served by the provider's container.
func (p *DockerProvider) registerServiceModel(info media.ModelInfo) {
	p.register(info, func(ctx context.Context, info media.ModelInfo) (media.Model, error) {
		handle, err := p.entry.ResolveHandle(ctx, p.locator)
		if err != nil {
			return nil, err
		}
		return &serviceModel{info: info, handle: handle, client: p.client}, nil
	})
}

// serviceModel talks to a Docker-hosted service over its generate endpoint.
type serviceModel struct {
	info   media.ModelInfo
	handle *services.ServiceHandle
	client *http.Client
}

func (m *serviceModel) Info() media.ModelInfo { return m.info }

// Generate posts the request to {base}/generate. Services answer with JSON
// (text or a URL) or with raw media bytes, which get saved to a temp file.
func (m *serviceModel) Generate(ctx context.Context, req media.Request) (*media.Result, error) {
	payload := map[string]interface{}{
		"model":  m.info.ID,
		"prompt": req.Prompt,
	}
	if req.SourceURL != "" {
		payload["source_url"] = req.SourceURL
	}
	if req.Voice != "" {
		payload["voice"] = req.Voice
	}
	if len(req.Options) > 0 {
		payload["options"] = req.Options
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	endpoint := strings.TrimRight(m.handle.BaseURL, "/") + "/generate"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %v", m.handle.Info.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service error (status %d): %s", resp.StatusCode, string(body))
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		var result struct {
			URL         string `json:"url"`
			Text        string `json:"text"`
			ContentType string `json:"content_type"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to parse response: %v", err)
		}
		if result.ContentType == "" {
			result.ContentType = contentType
		}
		return &media.Result{URL: result.URL, Text: result.Text, ContentType: result.ContentType}, nil
	case strings.HasPrefix(contentType, "text/"):
		return &media.Result{Text: string(body), ContentType: contentType}, nil
	default:
		path, err := saveMediaToFile(m.info.ID, body, contentType)
		if err != nil {
			return nil, err
		}
		return &media.Result{Path: path, ContentType: contentType}, nil
	}
}

// saveMediaToFile writes raw media bytes to a temp file named after the model.
func saveMediaToFile(modelID string, data []byte, contentType string) (string, error) {
	filename := fmt.Sprintf("mediabridge_%s_%d%s", sanitizeFilename(modelID), time.Now().UnixNano(), extensionFor(contentType))
	path := filepath.Join(os.TempDir(), filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save media file: %v", err)
	}
	return path, nil
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

func extensionFor(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	switch strings.TrimSpace(contentType) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	default:
		return ".bin"
	}
}
