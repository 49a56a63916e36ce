package providers

import (
	"os"

	"github.com/mediabridge/mediabridge-go/pkg/config"
	"github.com/mediabridge/mediabridge-go/pkg/services"
)

// BuildIndex assembles the provider index from configuration. Docker-backed
// providers are always registered because they can fall back to their default
// URLs; hosted providers only join when an API key is configured.
func BuildIndex(cfg *config.Config, catalog *services.Catalog, loc services.Locator) *Index {
	// Helper to check env if config is empty
	checkEnv := func(cfgVal, envKey string) string {
		if cfgVal != "" {
			return cfgVal
		}
		return os.Getenv(envKey)
	}

	idx := NewIndex()

	idx.Register(NewCowsayProvider(catalogEntry(catalog, "cowsay"), loc))
	idx.Register(NewChatterboxProvider(catalogEntry(catalog, "chatterbox"), loc))

	if key := checkEnv(cfg.Providers.OpenAI.APIKey, "OPENAI_API_KEY"); key != "" {
		idx.Register(NewOpenAIProvider(key, cfg.Providers.OpenAI.APIBase))
	}
	if key := checkEnv(cfg.Providers.SiliconFlow.APIKey, "SILICONFLOW_API_KEY"); key != "" {
		idx.Register(NewSiliconFlowProvider(key, cfg.Providers.SiliconFlow.APIBase))
	}

	return idx
}

// catalogEntry pulls a service entry from the active catalog, falling back to
// the built-in defaults when a custom catalog omits it.
func catalogEntry(catalog *services.Catalog, name string) services.CatalogEntry {
	if catalog != nil {
		if entry, ok := catalog.Get(name); ok {
			return entry
		}
	}
	entry, _ := services.BuiltinCatalog().Get(name)
	return entry
}
