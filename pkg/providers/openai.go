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

const defaultOpenAIBase = "https://api.openai.com/v1"

// OpenAIProvider serves OpenAI's hosted chat, image and speech models.
type OpenAIProvider struct {
	BaseProvider
	apiKey  string
	apiBase string
	client  *http.Client
}

// NewOpenAIProvider creates the provider. apiBase overrides the public
// endpoint; empty means the real API.
func NewOpenAIProvider(apiKey, apiBase string) *OpenAIProvider {
	if apiBase == "" {
		apiBase = defaultOpenAIBase
	}
	p := &OpenAIProvider{
		BaseProvider: newBaseProvider("openai", media.ProviderHosted,
			media.TextToText, media.TextToImage, media.TextToAudio),
		apiKey:  apiKey,
		apiBase: strings.TrimRight(apiBase, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
	p.registerHosted(media.ModelInfo{
		ID:           "gpt-4o-mini",
		Name:         "GPT-4o mini",
		Capabilities: []media.Capability{media.TextToText},
	}, p.generateText)
	p.registerHosted(media.ModelInfo{
		ID:           "dall-e-3",
		Name:         "DALL-E 3",
		Capabilities: []media.Capability{media.TextToImage},
	}, p.generateImage)
	p.registerHosted(media.ModelInfo{
		ID:           "tts-1",
		Name:         "TTS-1",
		Capabilities: []media.Capability{media.TextToAudio},
	}, p.generateSpeech)
	return p
}

func (p *OpenAIProvider) generateText(ctx context.Context, info media.ModelInfo, req media.Request) (*media.Result, error) {
	reqBody := map[string]interface{}{
		"model": info.ID,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
	}
	body, err := p.call(ctx, "/chat/completions", reqBody)
	if err != nil {
		return nil, err
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	return &media.Result{Text: result.Choices[0].Message.Content}, nil
}

func (p *OpenAIProvider) generateImage(ctx context.Context, info media.ModelInfo, req media.Request) (*media.Result, error) {
	reqBody := map[string]interface{}{
		"model":  info.ID,
		"prompt": req.Prompt,
		"size":   "1024x1024",
		"n":      1,
	}
	url, err := p.callForURL(ctx, "/images/generations", reqBody)
	if err != nil {
		return nil, err
	}
	return &media.Result{URL: url, ContentType: "image/png"}, nil
}

func (p *OpenAIProvider) generateSpeech(ctx context.Context, info media.ModelInfo, req media.Request) (*media.Result, error) {
	voice := req.Voice
	if voice == "" {
		voice = "alloy"
	}
	reqBody := map[string]interface{}{
		"model": info.ID,
		"input": req.Prompt,
		"voice": voice,
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

func (p *OpenAIProvider) call(ctx context.Context, path string, reqBody map[string]interface{}) ([]byte, error) {
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

func (p *OpenAIProvider) callForURL(ctx context.Context, path string, reqBody map[string]interface{}) (string, error) {
	body, err := p.call(ctx, path, reqBody)
	if err != nil {
		return "", err
	}

	var result struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %v", err)
	}
	if len(result.Data) > 0 && result.Data[0].URL != "" {
		return result.Data[0].URL, nil
	}
	return "", fmt.Errorf("no URL found in response")
}
