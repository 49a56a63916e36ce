package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mediabridge/mediabridge-go/pkg/media"
)

const defaultSiliconFlowBase = "https://api.siliconflow.cn/v1"

// siliconFlowUpstream maps our short model identifiers to the full names the
// SiliconFlow API expects.
var siliconFlowUpstream = map[string]string{
	"flux-schnell":    "black-forest-labs/FLUX.1-schnell",
	"qwen-image-edit": "Qwen/Qwen-Image-Edit",
	"wan-i2v":         "Wan-AI/Wan2.1-I2V-14B-720P",
	"fish-speech":     "fishaudio/fish-speech-1.5",
}

// SiliconFlowProvider serves SiliconFlow's hosted image, video and speech
// models.
type SiliconFlowProvider struct {
	BaseProvider
	apiKey  string
	apiBase string
	client  *http.Client
}

// NewSiliconFlowProvider creates the provider. apiBase overrides the public
// endpoint; empty means the real API.
func NewSiliconFlowProvider(apiKey, apiBase string) *SiliconFlowProvider {
	if apiBase == "" {
		apiBase = defaultSiliconFlowBase
	}
	p := &SiliconFlowProvider{
		BaseProvider: newBaseProvider("siliconflow", media.ProviderHosted,
			media.TextToImage, media.ImageToImage, media.ImageToVideo, media.TextToAudio),
		apiKey:  apiKey,
		apiBase: strings.TrimRight(apiBase, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
	p.registerHosted(media.ModelInfo{
		ID:           "flux-schnell",
		Name:         "FLUX.1 schnell",
		Capabilities: []media.Capability{media.TextToImage},
	}, p.generateImage)
	p.registerHosted(media.ModelInfo{
		ID:           "qwen-image-edit",
		Name:         "Qwen Image Edit",
		Capabilities: []media.Capability{media.ImageToImage},
	}, p.editImage)
	p.registerHosted(media.ModelInfo{
		ID:           "wan-i2v",
		Name:         "Wan 2.1 I2V",
		Capabilities: []media.Capability{media.ImageToVideo},
	}, p.generateVideo)
	p.registerHosted(media.ModelInfo{
		ID:           "fish-speech",
		Name:         "Fish Speech 1.5",
		Capabilities: []media.Capability{media.TextToAudio},
	}, p.generateSpeech)
	return p
}

func (p *SiliconFlowProvider) upstream(id string) string {
	if name, ok := siliconFlowUpstream[id]; ok {
		return name
	}
	return id
}

func (p *SiliconFlowProvider) generateImage(ctx context.Context, info media.ModelInfo, req media.Request) (*media.Result, error) {
	reqBody := map[string]interface{}{
		"model":      p.upstream(info.ID),
		"prompt":     req.Prompt,
		"image_size": "1024x1024",
		"batch_size": 1,
		"cfg":        4.5,
	}
	url, err := p.callForURL(ctx, "/images/generations", reqBody)
	if err != nil {
		return nil, err
	}
	return &media.Result{URL: url, ContentType: "image/png"}, nil
}

func (p *SiliconFlowProvider) editImage(ctx context.Context, info media.ModelInfo, req media.Request) (*media.Result, error) {
	if req.SourceURL == "" {
		return nil, fmt.Errorf("model %s needs a source image URL", info.ID)
	}
	reqBody := map[string]interface{}{
		"model":               p.upstream(info.ID),
		"prompt":              req.Prompt,
		"image":               req.SourceURL,
		"image_size":          "1024x1024",
		"batch_size":          1,
		"num_inference_steps": 30,
		"cfg":                 10,
	}
	url, err := p.callForURL(ctx, "/images/generations", reqBody)
	if err != nil {
		return nil, err
	}
	return &media.Result{URL: url, ContentType: "image/png"}, nil
}

func (p *SiliconFlowProvider) generateVideo(ctx context.Context, info media.ModelInfo, req media.Request) (*media.Result, error) {
	if req.SourceURL == "" {
		return nil, fmt.Errorf("model %s needs a source image URL", info.ID)
	}
	reqBody := map[string]interface{}{
		"model":     p.upstream(info.ID),
		"prompt":    req.Prompt,
		"image_url": req.SourceURL,
	}
	url, err := p.callForURL(ctx, "/video/generations", reqBody)
	if err != nil {
		return nil, err
	}
	return &media.Result{URL: url, ContentType: "video/mp4"}, nil
}

func (p *SiliconFlowProvider) generateSpeech(ctx context.Context, info media.ModelInfo, req media.Request) (*media.Result, error) {
	voice := req.Voice
	if voice == "" {
		voice = p.upstream(info.ID) + ":alex"
	}
	reqBody := map[string]interface{}{
		"model":           p.upstream(info.ID),
		"input":           req.Prompt,
		"voice":           voice,
		"response_format": "mp3",
	}
	body, err := p.call(ctx, "/audio/speech", reqBody)
	if err != nil {
		return nil, err
	}
	path, err := saveMediaToFile(info.ID, body, "audio/mpeg")
	if err != nil {
		return nil, err
	}
	return &media.Result{Path: path, ContentType: "audio/mpeg"}, nil
}

func (p *SiliconFlowProvider) call(ctx context.Context, path string, reqBody map[string]interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.apiBase+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// callForURL posts the request and pulls the first media URL out of the
// response. SiliconFlow answers with images[] for image endpoints and data[]
// elsewhere.
func (p *SiliconFlowProvider) callForURL(ctx context.Context, path string, reqBody map[string]interface{}) (string, error) {
	body, err := p.call(ctx, path, reqBody)
	if err != nil {
		return "", err
	}

	var result struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %v", err)
	}
	if len(result.Images) > 0 && result.Images[0].URL != "" {
		return result.Images[0].URL, nil
	}
	if len(result.Data) > 0 && result.Data[0].URL != "" {
		return result.Data[0].URL, nil
	}
	return "", fmt.Errorf("no URL found in response")
}
