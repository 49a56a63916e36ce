package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type RegistryConfig struct {
	URL     string `json:"url"`
	Timeout int    `json:"timeout"` // seconds
}

type ServicesConfig struct {
	// Catalog points at a YAML service catalog. Empty means the built-in one.
	Catalog  string         `json:"catalog,omitempty"`
	Registry RegistryConfig `json:"registry"`
}

type ProviderConfig struct {
	APIKey  string `json:"apiKey"`
	APIBase string `json:"apiBase,omitempty"`
}

type ProvidersConfig struct {
	OpenAI      ProviderConfig `json:"openai"`
	SiliconFlow ProviderConfig `json:"siliconflow"`
}

type StatusConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type WatchConfig struct {
	Interval  int    `json:"interval"`           // seconds between sweeps
	Schedule  string `json:"schedule,omitempty"` // cron expression, overrides interval
	StatePath string `json:"statePath"`
}

type HistoryConfig struct {
	Dir string `json:"dir"`
}

type Config struct {
	Workspace string          `json:"workspace"`
	Services  ServicesConfig  `json:"services"`
	Providers ProvidersConfig `json:"providers"`
	Status    StatusConfig    `json:"status"`
	Watch     WatchConfig     `json:"watch"`
	History   HistoryConfig   `json:"history"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Workspace: ".mediabridge/workspace",
		Services: ServicesConfig{
			Registry: RegistryConfig{
				URL:     "http://localhost:8095",
				Timeout: 10,
			},
		},
		Status: StatusConfig{
			Host: "0.0.0.0",
			Port: 8090,
		},
		Watch: WatchConfig{
			Interval:  30,
			StatePath: ".mediabridge/status.json",
		},
		History: HistoryConfig{
			Dir: ".mediabridge/history",
		},
	}
}

// LoadConfig loads the configuration from the given path. A missing file is
// not an error; the defaults apply.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(".mediabridge", "config.json")
	}

	config := DefaultConfig()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	return config, nil
}
