package providers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mediabridge/mediabridge-go/pkg/media"
)

// stubModel is a model wrapper that answers with canned text.
type stubModel struct {
	info media.ModelInfo
}

func (m *stubModel) Info() media.ModelInfo { return m.info }

func (m *stubModel) Generate(ctx context.Context, req media.Request) (*media.Result, error) {
	return &media.Result{Text: "stub: " + req.Prompt}, nil
}

// stubProvider declares a couple of models backed by stubModel and counts
// wrapper constructions.
type stubProvider struct {
	BaseProvider
	built int
}

func newStubProvider(name string) *stubProvider {
	p := &stubProvider{
		BaseProvider: newBaseProvider(name, media.ProviderHosted, media.TextToText, media.TextToImage),
	}
	p.declare("alpha-text", media.TextToText)
	p.declare("alpha-image", media.TextToImage)
	return p
}

func (p *stubProvider) declare(id string, caps ...media.Capability) {
	p.register(media.ModelInfo{ID: id, Name: id, Capabilities: caps},
		func(ctx context.Context, info media.ModelInfo) (media.Model, error) {
			p.built++
			return &stubModel{info: info}, nil
		})
}

func TestBaseProvider_AvailableModels(t *testing.T) {
	p := newStubProvider("stub")

	models := p.AvailableModels()
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0] != "alpha-text" || models[1] != "alpha-image" {
		t.Errorf("expected declaration order [alpha-text alpha-image], got %v", models)
	}
}

func TestBaseProvider_CreateModel(t *testing.T) {
	p := newStubProvider("stub")

	model, err := p.CreateModel(context.Background(), "alpha-text")
	if err != nil {
		t.Fatalf("failed to create model: %v", err)
	}

	info := model.Info()
	if info.ID != "alpha-text" {
		t.Errorf("expected ID alpha-text, got %s", info.ID)
	}
	if info.Provider != "stub" {
		t.Errorf("expected provider name to be filled in, got %q", info.Provider)
	}

	// Each call constructs a fresh wrapper.
	p.CreateModel(context.Background(), "alpha-text")
	if p.built != 2 {
		t.Errorf("expected 2 constructions, got %d", p.built)
	}
}

func TestBaseProvider_CreateModel_Unknown(t *testing.T) {
	p := newStubProvider("stub")

	_, err := p.CreateModel(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	if !errors.Is(err, ErrModelNotSupported) {
		t.Errorf("expected ErrModelNotSupported, got %v", err)
	}
	if !strings.Contains(err.Error(), "alpha-text") {
		t.Errorf("expected error to list available models, got %v", err)
	}
}

func TestBaseProvider_CreateModel_BuildFailure(t *testing.T) {
	p := &stubProvider{BaseProvider: newBaseProvider("broken", media.ProviderDocker, media.TextToText)}
	p.register(media.ModelInfo{ID: "flaky"}, func(ctx context.Context, info media.ModelInfo) (media.Model, error) {
		return nil, errors.New("no service URL")
	})

	_, err := p.CreateModel(context.Background(), "flaky")
	if err == nil {
		t.Fatal("expected build failure to surface")
	}
	if !strings.Contains(err.Error(), "failed to create model flaky") {
		t.Errorf("expected wrapped build error, got %v", err)
	}
}

func TestBaseProvider_GetModel_Memoizes(t *testing.T) {
	p := newStubProvider("stub")

	first, err := p.GetModel(context.Background(), "alpha-text")
	if err != nil {
		t.Fatalf("failed to get model: %v", err)
	}
	second, err := p.GetModel(context.Background(), "alpha-text")
	if err != nil {
		t.Fatalf("failed to get model again: %v", err)
	}

	if first != second {
		t.Error("expected the same cached wrapper on repeat calls")
	}
	if p.built != 1 {
		t.Errorf("expected 1 construction, got %d", p.built)
	}

	// Unknown identifiers fail the same way as CreateModel.
	if _, err := p.GetModel(context.Background(), "nope"); !errors.Is(err, ErrModelNotSupported) {
		t.Errorf("expected ErrModelNotSupported, got %v", err)
	}
}

func TestBaseProvider_ModelsForCapability(t *testing.T) {
	p := newStubProvider("stub")

	text := p.ModelsForCapability(media.TextToText)
	if len(text) != 1 || text[0].ID != "alpha-text" {
		t.Errorf("expected [alpha-text], got %v", text)
	}

	// Undeclared capabilities yield an empty list, not an error.
	audio := p.ModelsForCapability(media.TextToAudio)
	if len(audio) != 0 {
		t.Errorf("expected no models for text-to-audio, got %v", audio)
	}
}

func TestBaseProvider_Models(t *testing.T) {
	p := newStubProvider("stub")

	models := p.Models()
	if len(models) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(models))
	}
	for _, m := range models {
		if m.Provider != "stub" {
			t.Errorf("expected provider stub on %s, got %q", m.ID, m.Provider)
		}
	}
}
