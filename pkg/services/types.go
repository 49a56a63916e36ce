package services

import (
	"context"
	"time"

	"github.com/mediabridge/mediabridge-go/pkg/media"
)

// Health strings reported for a service.
const (
	HealthHealthy     = "healthy"
	HealthUnhealthy   = "unhealthy"
	HealthUnreachable = "unreachable"
	HealthUnknown     = "unknown"
)

// PortMapping is one published container port.
type PortMapping struct {
	Host      int    `json:"host"`
	Container int    `json:"container"`
	Protocol  string `json:"protocol,omitempty"`
}

// ServiceInfo is a read-only snapshot of a remote container-backed service.
// It is fetched on demand from the registry; nothing here is kept consistent
// after the call returns.
type ServiceInfo struct {
	Name          string             `json:"name"`
	Ref           string             `json:"ref"`
	ContainerName string             `json:"container_name"`
	Image         string             `json:"image"`
	Ports         []PortMapping      `json:"ports"`
	BaseURL       string             `json:"base_url"`
	HealthURL     string             `json:"health_url"`
	Capabilities  []media.Capability `json:"capabilities,omitempty"`
}

// ServiceStatus is the result of one health query.
type ServiceStatus struct {
	Running    bool      `json:"running"`
	Health     string    `json:"health"`
	CheckedAt  time.Time `json:"checked_at"`
	ResponseMs int64     `json:"response_ms"`
	Error      string    `json:"error,omitempty"`
}

// Healthy reports whether the service answered its health check.
func (s ServiceStatus) Healthy() bool {
	return s.Running && s.Health == HealthHealthy
}

// ServiceHandle is a resolved reference to a running service. Model wrappers
// bind to the handle's base URL.
type ServiceHandle struct {
	Info    ServiceInfo `json:"info"`
	BaseURL string      `json:"base_url"`
}

// Locator resolves service refs of the form github:<org>/<repo> to running
// service handles. The HTTP registry client implements it; tests substitute
// their own.
type Locator interface {
	Resolve(ctx context.Context, ref string) (*ServiceHandle, error)
}
