package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mediabridge/mediabridge-go/pkg/media"
)

// CatalogEntry describes one Docker-backed service the layer knows how to
// reach: its registry ref, its image, and where to find it when the registry
// cannot be asked.
type CatalogEntry struct {
	Name          string             `yaml:"name" json:"name"`
	Ref           string             `yaml:"ref" json:"ref"`
	Image         string             `yaml:"image" json:"image"`
	DefaultURL    string             `yaml:"defaultUrl" json:"default_url"`
	EnvVar        string             `yaml:"envVar" json:"env_var"`
	HealthPath    string             `yaml:"healthPath" json:"health_path"`
	ContainerPort int                `yaml:"containerPort" json:"container_port"`
	Capabilities  []media.Capability `yaml:"capabilities" json:"capabilities"`
}

// HealthURL returns the health-check URL for the given base URL.
func (e CatalogEntry) HealthURL(baseURL string) string {
	path := e.HealthPath
	if path == "" {
		path = "/health"
	}
	return strings.TrimRight(baseURL, "/") + path
}

// ports derives the port mapping from a base URL. Only the host side is
// knowable outside the registry; the container side comes from the entry.
func (e CatalogEntry) ports(baseURL string) []PortMapping {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	host, err := strconv.Atoi(u.Port())
	if err != nil {
		return nil
	}
	container := e.ContainerPort
	if container == 0 {
		container = host
	}
	return []PortMapping{{Host: host, Container: container, Protocol: "tcp"}}
}

// ResolveHandle resolves the entry to a running service handle. Resolution
// order: environment override, then the registry, then the catalog default
// URL. It only fails when all three are empty.
func (e CatalogEntry) ResolveHandle(ctx context.Context, loc Locator) (*ServiceHandle, error) {
	if override := os.Getenv(e.EnvVar); e.EnvVar != "" && override != "" {
		base := strings.TrimRight(override, "/")
		return &ServiceHandle{
			Info: ServiceInfo{
				Name:         e.Name,
				Ref:          e.Ref,
				Image:        e.Image,
				Ports:        e.ports(base),
				BaseURL:      base,
				HealthURL:    e.HealthURL(base),
				Capabilities: e.Capabilities,
			},
			BaseURL: base,
		}, nil
	}

	if loc != nil && e.Ref != "" {
		handle, err := loc.Resolve(ctx, e.Ref)
		if err == nil {
			return handle, nil
		}
		log.Printf("Registry resolution failed for %s, falling back to default URL: %v", e.Ref, err)
	}

	if e.DefaultURL == "" {
		return nil, fmt.Errorf("no URL for service %s: set %s or configure the registry", e.Name, e.EnvVar)
	}
	base := strings.TrimRight(e.DefaultURL, "/")
	return &ServiceHandle{
		Info: ServiceInfo{
			Name:         e.Name,
			Ref:          e.Ref,
			Image:        e.Image,
			Ports:        e.ports(base),
			BaseURL:      base,
			HealthURL:    e.HealthURL(base),
			Capabilities: e.Capabilities,
		},
		BaseURL: base,
	}, nil
}

// Catalog holds the known service entries in declaration order.
type Catalog struct {
	entries []CatalogEntry
	byName  map[string]int
}

type catalogFile struct {
	Services []CatalogEntry `yaml:"services"`
}

// BuiltinCatalog returns the services shipped with the layer. A catalog file
// replaces it entirely.
func BuiltinCatalog() *Catalog {
	c, _ := newCatalog([]CatalogEntry{
		{
			Name:          "cowsay",
			Ref:           "github:mediabridge/cowsay-service",
			Image:         "mediabridge/cowsay-service:latest",
			DefaultURL:    "http://localhost:8101",
			EnvVar:        "COWSAY_SERVICE_URL",
			HealthPath:    "/health",
			ContainerPort: 8080,
			Capabilities:  []media.Capability{media.TextToText},
		},
		{
			Name:          "chatterbox",
			Ref:           "github:mediabridge/chatterbox-service",
			Image:         "mediabridge/chatterbox-service:latest",
			DefaultURL:    "http://localhost:8102",
			EnvVar:        "CHATTERBOX_SERVICE_URL",
			HealthPath:    "/health",
			ContainerPort: 8080,
			Capabilities:  []media.Capability{media.TextToAudio},
		},
	})
	return c
}

// LoadCatalog reads a YAML catalog from path. An empty path or a missing file
// yields the builtin catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return BuiltinCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BuiltinCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read catalog: %v", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %v", path, err)
	}
	if len(file.Services) == 0 {
		return nil, fmt.Errorf("catalog %s declares no services", path)
	}
	return newCatalog(file.Services)
}

func newCatalog(entries []CatalogEntry) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int)}
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry without a name")
		}
		if e.Ref == "" && e.DefaultURL == "" {
			return nil, fmt.Errorf("service %s has neither ref nor defaultUrl", e.Name)
		}
		if _, dup := c.byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate service name %q in catalog", e.Name)
		}
		if e.EnvVar == "" {
			e.EnvVar = envVarFor(e.Name)
		}
		if e.HealthPath == "" {
			e.HealthPath = "/health"
		}
		c.byName[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// envVarFor derives the URL override variable for a service name,
// e.g. "cowsay" -> "COWSAY_SERVICE_URL".
func envVarFor(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	return strings.ToUpper(cleaned) + "_SERVICE_URL"
}

// Entries returns the catalog entries in declaration order.
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Get returns the entry registered under the short name.
func (c *Catalog) Get(name string) (CatalogEntry, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return CatalogEntry{}, false
	}
	return c.entries[idx], true
}

// Lookup accepts either a short name or a full github: ref.
func (c *Catalog) Lookup(nameOrRef string) (CatalogEntry, bool) {
	if e, ok := c.Get(nameOrRef); ok {
		return e, true
	}
	for _, e := range c.entries {
		if e.Ref == nameOrRef {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// Names returns the short names of all entries.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.Name)
	}
	return names
}
