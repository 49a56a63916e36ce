package providers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mediabridge/mediabridge-go/pkg/config"
	"github.com/mediabridge/mediabridge-go/pkg/media"
	"github.com/mediabridge/mediabridge-go/pkg/services"
)

func TestBuildIndex_DockerProvidersAlwaysRegistered(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SILICONFLOW_API_KEY", "")

	idx := BuildIndex(config.DefaultConfig(), services.BuiltinCatalog(), nil)

	names := idx.Names()
	if len(names) != 2 || names[0] != "cowsay" || names[1] != "chatterbox" {
		t.Errorf("expected [cowsay chatterbox], got %v", names)
	}

	audio := idx.ModelsForCapability(media.TextToAudio)
	if len(audio) != 2 {
		t.Errorf("expected 2 text-to-audio models, got %d", len(audio))
	}
}

func TestBuildIndex_HostedProvidersNeedKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SILICONFLOW_API_KEY", "")

	idx := BuildIndex(config.DefaultConfig(), services.BuiltinCatalog(), nil)

	if _, err := idx.Provider("openai"); err != nil {
		t.Errorf("expected openai to be registered with a key: %v", err)
	}
	if _, err := idx.Provider("siliconflow"); err == nil {
		t.Error("expected siliconflow to be skipped without a key")
	}
}

func TestBuildIndex_ConfigKeyEnablesProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SILICONFLOW_API_KEY", "")

	cfg := config.DefaultConfig()
	cfg.Providers.SiliconFlow.APIKey = "sf-test"

	idx := BuildIndex(cfg, services.BuiltinCatalog(), nil)

	if _, err := idx.Provider("siliconflow"); err != nil {
		t.Errorf("expected siliconflow to be registered from config: %v", err)
	}
	if _, err := idx.Provider("openai"); err == nil {
		t.Error("expected openai to be skipped without a key")
	}
}

func TestBuildIndex_CustomCatalogFallsBackToBuiltin(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SILICONFLOW_API_KEY", "")

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "services:\n  - name: figlet\n    defaultUrl: http://localhost:9001\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	catalog, err := services.LoadCatalog(path)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	// The custom catalog has no cowsay entry; the provider still registers
	// with the builtin defaults.
	idx := BuildIndex(config.DefaultConfig(), catalog, nil)
	p, err := idx.Provider("cowsay")
	if err != nil {
		t.Fatalf("expected cowsay provider: %v", err)
	}
	cow, ok := p.(*CowsayProvider)
	if !ok {
		t.Fatalf("expected *CowsayProvider, got %T", p)
	}
	if cow.Service().DefaultURL != "http://localhost:8101" {
		t.Errorf("expected builtin default URL, got %s", cow.Service().DefaultURL)
	}
}
