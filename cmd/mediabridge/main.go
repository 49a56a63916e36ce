package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"

	"github.com/mediabridge/mediabridge-go/pkg/config"
	"github.com/mediabridge/mediabridge-go/pkg/providers"
	"github.com/mediabridge/mediabridge-go/pkg/services"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: mediabridge <command> [args]")
		fmt.Println("Commands: validate, status, models, generate, watch, serve, onboard")
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "validate":
		runValidate(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "models":
		runModels(os.Args[2:])
	case "generate":
		runGenerate(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "onboard":
		runOnboard()
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// stack bundles the pieces most commands need.
type stack struct {
	cfg      *config.Config
	catalog  *services.Catalog
	registry *services.Registry
	prober   *services.Prober
	index    *providers.Index
}

func buildStack(configPath string) (*stack, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %v", err)
	}

	catalog, err := services.LoadCatalog(expandPath(cfg.Services.Catalog))
	if err != nil {
		return nil, fmt.Errorf("error loading service catalog: %v", err)
	}

	registryURL := cfg.Services.Registry.URL
	if env := os.Getenv("MEDIABRIDGE_REGISTRY_URL"); env != "" {
		registryURL = env
	}
	registry := services.NewRegistry(registryURL, time.Duration(cfg.Services.Registry.Timeout)*time.Second)
	prober := services.NewProber(5 * time.Second)
	index := providers.BuildIndex(cfg, catalog, registry)

	return &stack{
		cfg:      cfg,
		catalog:  catalog,
		registry: registry,
		prober:   prober,
		index:    index,
	}, nil
}

func runOnboard() {
	configDir := ".mediabridge"
	if err := os.MkdirAll(configDir, 0755); err != nil {
		fmt.Printf("Error creating config directory: %v\n", err)
		os.Exit(1)
	}

	catalogFile := filepath.Join(configDir, "catalog.yaml")

	configFile := filepath.Join(configDir, "config.json")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		cfg.Services.Catalog = catalogFile
		if abs, err := filepath.Abs(filepath.Join(configDir, "workspace")); err == nil {
			cfg.Workspace = abs
		} else {
			cfg.Workspace = filepath.Join(configDir, "workspace")
		}

		file, err := os.Create(configFile)
		if err != nil {
			fmt.Printf("Warning: Could not create config file: %v\n", err)
		} else {
			defer file.Close()
			encoder := json.NewEncoder(file)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(cfg); err != nil {
				fmt.Printf("Error writing config file: %v\n", err)
			}
			fmt.Printf("Created config file at %s\n", configFile)
		}
	} else {
		fmt.Printf("Config file already exists at %s\n", configFile)
	}

	// Seed the service catalog with the built-in entries so users have
	// something concrete to edit.
	if _, err := os.Stat(catalogFile); os.IsNotExist(err) {
		out := struct {
			Services []services.CatalogEntry `yaml:"services"`
		}{Services: services.BuiltinCatalog().Entries()}

		data, err := yaml.Marshal(out)
		if err != nil {
			fmt.Printf("Error rendering catalog: %v\n", err)
		} else if err := os.WriteFile(catalogFile, data, 0644); err != nil {
			fmt.Printf("Error creating catalog file: %v\n", err)
		} else {
			fmt.Printf("Created service catalog at %s\n", catalogFile)
		}
	} else {
		fmt.Printf("Service catalog already exists at %s\n", catalogFile)
	}

	workspace := filepath.Join(configDir, "workspace")
	if err := os.MkdirAll(workspace, 0755); err != nil {
		fmt.Printf("Error creating workspace: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created workspace at %s\n", workspace)

	historyDir := filepath.Join(configDir, "history")
	if err := os.MkdirAll(historyDir, 0755); err != nil {
		fmt.Printf("Error creating history directory: %v\n", err)
	}

	fmt.Println("Onboarding complete! Edit .mediabridge/config.json to add provider API keys.")
	fmt.Println("Docker services resolve through *_SERVICE_URL overrides, the registry at MEDIABRIDGE_REGISTRY_URL, or their default URLs.")
}
