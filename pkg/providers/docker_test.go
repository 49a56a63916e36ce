package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/mediabridge/mediabridge-go/pkg/media"
	"github.com/mediabridge/mediabridge-go/pkg/services"
)

// failingLocator always reports the registry as unavailable.
type failingLocator struct{}

func (failingLocator) Resolve(ctx context.Context, ref string) (*services.ServiceHandle, error) {
	return nil, errors.New("registry down")
}

func cowsayEntry() services.CatalogEntry {
	entry, _ := services.BuiltinCatalog().Get("cowsay")
	return entry
}

func chatterboxEntry() services.CatalogEntry {
	entry, _ := services.BuiltinCatalog().Get("chatterbox")
	return entry
}

func TestCowsayProvider_Declarations(t *testing.T) {
	p := NewCowsayProvider(cowsayEntry(), nil)

	if p.Name() != "cowsay" {
		t.Errorf("expected name cowsay, got %s", p.Name())
	}
	if p.Type() != media.ProviderDocker {
		t.Errorf("expected docker provider, got %s", p.Type())
	}

	models := p.AvailableModels()
	want := []string{"cowsay-default", "cowsay-dragon", "cowsay-tux"}
	if len(models) != len(want) {
		t.Fatalf("expected %d models, got %v", len(want), models)
	}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("expected %v, got %v", want, models)
			break
		}
	}

	if text := p.ModelsForCapability(media.TextToText); len(text) != 3 {
		t.Errorf("expected 3 text-to-text models, got %d", len(text))
	}
	if audio := p.ModelsForCapability(media.TextToAudio); len(audio) != 0 {
		t.Errorf("expected no text-to-audio models, got %d", len(audio))
	}
}

func TestCowsayProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var payload struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		if payload.Model != "cowsay-default" {
			t.Errorf("expected model cowsay-default, got %s", payload.Model)
		}
		if payload.Prompt != "hello" {
			t.Errorf("expected prompt hello, got %s", payload.Prompt)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": " _____\n< moo >\n -----"})
	}))
	defer srv.Close()
	t.Setenv("COWSAY_SERVICE_URL", srv.URL)

	p := NewCowsayProvider(cowsayEntry(), nil)
	model, err := p.GetModel(context.Background(), "cowsay-default")
	if err != nil {
		t.Fatalf("failed to get model: %v", err)
	}

	result, err := model.Generate(context.Background(), media.Request{Prompt: "hello"})
	if err != nil {
		t.Fatalf("failed to generate: %v", err)
	}
	if !strings.Contains(result.Text, "moo") {
		t.Errorf("expected cow output, got %q", result.Text)
	}
}

func TestServiceModel_Generate_PayloadFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Model     string                 `json:"model"`
			Prompt    string                 `json:"prompt"`
			SourceURL string                 `json:"source_url"`
			Voice     string                 `json:"voice"`
			Options   map[string]interface{} `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		if payload.Voice != "emma" {
			t.Errorf("expected voice emma, got %s", payload.Voice)
		}
		if payload.SourceURL != "http://example.com/ref.wav" {
			t.Errorf("expected source URL, got %s", payload.SourceURL)
		}
		if payload.Options["speed"] != 1.25 {
			t.Errorf("expected speed option, got %v", payload.Options)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"url": "http://cdn.example.com/out.mp3", "content_type": "audio/mpeg"})
	}))
	defer srv.Close()
	t.Setenv("CHATTERBOX_SERVICE_URL", srv.URL)

	p := NewChatterboxProvider(chatterboxEntry(), nil)
	model, err := p.GetModel(context.Background(), "chatterbox-en")
	if err != nil {
		t.Fatalf("failed to get model: %v", err)
	}

	result, err := model.Generate(context.Background(), media.Request{
		Prompt:    "read this aloud",
		SourceURL: "http://example.com/ref.wav",
		Voice:     "emma",
		Options:   map[string]interface{}{"speed": 1.25},
	})
	if err != nil {
		t.Fatalf("failed to generate: %v", err)
	}
	if result.URL != "http://cdn.example.com/out.mp3" {
		t.Errorf("expected result URL, got %s", result.URL)
	}
	if result.ContentType != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %s", result.ContentType)
	}
}

func TestServiceModel_Generate_TextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("plain cow"))
	}))
	defer srv.Close()
	t.Setenv("COWSAY_SERVICE_URL", srv.URL)

	p := NewCowsayProvider(cowsayEntry(), nil)
	model, err := p.GetModel(context.Background(), "cowsay-tux")
	if err != nil {
		t.Fatalf("failed to get model: %v", err)
	}

	result, err := model.Generate(context.Background(), media.Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("failed to generate: %v", err)
	}
	if result.Text != "plain cow" {
		t.Errorf("expected plain cow, got %q", result.Text)
	}
}

func TestServiceModel_Generate_BinaryResponse(t *testing.T) {
	audio := []byte{0xFF, 0xFB, 0x90, 0x00, 0x01, 0x02}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer srv.Close()
	t.Setenv("CHATTERBOX_SERVICE_URL", srv.URL)

	p := NewChatterboxProvider(chatterboxEntry(), nil)
	model, err := p.GetModel(context.Background(), "chatterbox-en")
	if err != nil {
		t.Fatalf("failed to get model: %v", err)
	}

	result, err := model.Generate(context.Background(), media.Request{Prompt: "say hi"})
	if err != nil {
		t.Fatalf("failed to generate: %v", err)
	}
	if result.Path == "" {
		t.Fatal("expected a saved file path")
	}
	defer os.Remove(result.Path)

	if !strings.HasSuffix(result.Path, ".mp3") {
		t.Errorf("expected .mp3 extension, got %s", result.Path)
	}
	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if string(data) != string(audio) {
		t.Error("saved file does not match the response body")
	}
}

func TestServiceModel_Generate_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()
	t.Setenv("COWSAY_SERVICE_URL", srv.URL)

	p := NewCowsayProvider(cowsayEntry(), nil)
	model, err := p.GetModel(context.Background(), "cowsay-default")
	if err != nil {
		t.Fatalf("failed to get model: %v", err)
	}

	_, err = model.Generate(context.Background(), media.Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error for failing service")
	}
	if !strings.Contains(err.Error(), "service error (status 500)") {
		t.Errorf("expected service error with status, got %v", err)
	}
}

func TestCowsayProvider_UnknownModel(t *testing.T) {
	p := NewCowsayProvider(cowsayEntry(), nil)

	_, err := p.CreateModel(context.Background(), "cowsay-unicorn")
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	if !errors.Is(err, ErrModelNotSupported) {
		t.Errorf("expected ErrModelNotSupported, got %v", err)
	}
}

func TestDockerProvider_ResolutionFailure(t *testing.T) {
	entry := services.CatalogEntry{
		Name:   "cowsay",
		Ref:    "github:mediabridge/cowsay-service",
		EnvVar: "COWSAY_TEST_OVERRIDE_URL",
	}

	p := NewCowsayProvider(entry, failingLocator{})
	_, err := p.GetModel(context.Background(), "cowsay-default")
	if err == nil {
		t.Fatal("expected resolution failure")
	}
	if !strings.Contains(err.Error(), "failed to create model cowsay-default") {
		t.Errorf("expected wrapped creation error, got %v", err)
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"audio/mpeg", ".mp3"},
		{"audio/wav", ".wav"},
		{"image/png", ".png"},
		{"image/jpeg", ".jpg"},
		{"image/webp", ".webp"},
		{"video/mp4", ".mp4"},
		{"audio/mpeg; charset=binary", ".mp3"},
		{"application/octet-stream", ".bin"},
		{"", ".bin"},
	}

	for _, tt := range tests {
		if got := extensionFor(tt.contentType); got != tt.want {
			t.Errorf("expected %s for %q, got %s", tt.want, tt.contentType, got)
		}
	}
}
