package providers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mediabridge/mediabridge-go/pkg/media"
)

func newTestIndex() (*Index, *stubProvider, *stubProvider) {
	first := newStubProvider("first")

	second := &stubProvider{
		BaseProvider: newBaseProvider("second", media.ProviderDocker, media.TextToAudio),
	}
	second.declare("beta-audio", media.TextToAudio)

	idx := NewIndex()
	idx.Register(first)
	idx.Register(second)
	return idx, first, second
}

func TestIndex_Provider(t *testing.T) {
	idx, _, _ := newTestIndex()

	p, err := idx.Provider("first")
	if err != nil {
		t.Fatalf("failed to look up provider: %v", err)
	}
	if p.Name() != "first" {
		t.Errorf("expected first, got %s", p.Name())
	}

	_, err = idx.Provider("missing")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("expected ErrProviderNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "first") {
		t.Errorf("expected error to list registered providers, got %v", err)
	}
}

func TestIndex_Names(t *testing.T) {
	idx, _, _ := newTestIndex()

	names := idx.Names()
	if len(names) != 2 || names[0] != "first" || names[1] != "second" {
		t.Errorf("expected registration order [first second], got %v", names)
	}
}

func TestIndex_Register_Replaces(t *testing.T) {
	idx := NewIndex()
	idx.Register(newStubProvider("dup"))

	replacement := newStubProvider("dup")
	idx.Register(replacement)

	names := idx.Names()
	if len(names) != 1 {
		t.Fatalf("expected 1 provider after re-registration, got %v", names)
	}

	p, err := idx.Provider("dup")
	if err != nil {
		t.Fatalf("failed to look up provider: %v", err)
	}
	if p.(*stubProvider) != replacement {
		t.Error("expected the replacement instance to be registered")
	}
}

func TestIndex_Models(t *testing.T) {
	idx, _, _ := newTestIndex()

	models := idx.Models()
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(models))
	}

	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	want := []string{"alpha-text", "alpha-image", "beta-audio"}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("expected %v, got %v", want, ids)
			break
		}
	}
}

func TestIndex_ModelsForCapability(t *testing.T) {
	idx, _, _ := newTestIndex()

	audio := idx.ModelsForCapability(media.TextToAudio)
	if len(audio) != 1 || audio[0].ID != "beta-audio" {
		t.Errorf("expected [beta-audio], got %v", audio)
	}

	video := idx.ModelsForCapability(media.ImageToVideo)
	if len(video) != 0 {
		t.Errorf("expected no image-to-video models, got %v", video)
	}
}

func TestIndex_ProviderForModel(t *testing.T) {
	idx, _, _ := newTestIndex()

	p, ok := idx.ProviderForModel("beta-audio")
	if !ok {
		t.Fatal("expected provider for beta-audio")
	}
	if p.Name() != "second" {
		t.Errorf("expected second, got %s", p.Name())
	}

	if _, ok := idx.ProviderForModel("nope"); ok {
		t.Error("expected no provider for unknown model")
	}
}

func TestIndex_Model(t *testing.T) {
	idx, first, _ := newTestIndex()

	model, err := idx.Model(context.Background(), "alpha-text")
	if err != nil {
		t.Fatalf("failed to resolve model: %v", err)
	}
	if model.Info().Provider != "first" {
		t.Errorf("expected provider first, got %s", model.Info().Provider)
	}

	// The index goes through GetModel, so lookups are memoized.
	again, err := idx.Model(context.Background(), "alpha-text")
	if err != nil {
		t.Fatalf("failed to resolve model again: %v", err)
	}
	if model != again {
		t.Error("expected the cached wrapper on repeat lookups")
	}
	if first.built != 1 {
		t.Errorf("expected 1 construction, got %d", first.built)
	}
}

func TestIndex_Model_Unknown(t *testing.T) {
	idx, _, _ := newTestIndex()

	_, err := idx.Model(context.Background(), "ghost-model")
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost-model") {
		t.Errorf("expected error to name the model, got %v", err)
	}
}
