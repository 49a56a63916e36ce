package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// Prober queries service health endpoints directly, bypassing the registry.
type Prober struct {
	client *http.Client
}

// NewProber creates a prober. A zero timeout selects 5 seconds, which is
// plenty for a local health endpoint.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{client: &http.Client{Timeout: timeout}}
}

// Check probes one health URL and classifies the answer.
func (p *Prober) Check(ctx context.Context, healthURL string) ServiceStatus {
	started := time.Now()
	status := ServiceStatus{CheckedAt: started, Health: HealthUnknown}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		status.Health = HealthUnreachable
		status.Error = fmt.Sprintf("bad health URL: %v", err)
		return status
	}

	resp, err := p.client.Do(req)
	status.ResponseMs = time.Since(started).Milliseconds()
	if err != nil {
		status.Health = HealthUnreachable
		status.Error = err.Error()
		return status
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	status.Running = true

	if resp.StatusCode != http.StatusOK {
		status.Health = HealthUnhealthy
		status.Error = fmt.Sprintf("health check returned status %d", resp.StatusCode)
		return status
	}

	status.Health = parseHealthBody(body)
	return status
}

// parseHealthBody accepts either a JSON document with a status field or plain
// text; anything that does not say otherwise counts as healthy.
func parseHealthBody(body []byte) string {
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Status != "" {
		switch strings.ToLower(payload.Status) {
		case "ok", "healthy", "up", "running":
			return HealthHealthy
		default:
			return HealthUnhealthy
		}
	}
	return HealthHealthy
}

// Report pairs a catalog entry with its resolved handle and probe result.
type Report struct {
	Entry  CatalogEntry   `json:"entry"`
	Handle *ServiceHandle `json:"handle,omitempty"`
	Status ServiceStatus  `json:"status"`
}

// CheckAll resolves and probes every catalog entry, a few services at a time.
// The returned slice preserves catalog order.
func (p *Prober) CheckAll(ctx context.Context, catalog *Catalog, loc Locator) []Report {
	entries := catalog.Entries()
	reports := make([]Report, len(entries))

	wg := pool.New().WithMaxGoroutines(4)
	for i, entry := range entries {
		i, entry := i, entry
		wg.Go(func() {
			handle, err := entry.ResolveHandle(ctx, loc)
			if err != nil {
				reports[i] = Report{
					Entry:  entry,
					Status: ServiceStatus{Health: HealthUnknown, Error: err.Error(), CheckedAt: time.Now()},
				}
				return
			}
			reports[i] = Report{
				Entry:  entry,
				Handle: handle,
				Status: p.Check(ctx, handle.Info.HealthURL),
			}
		})
	}
	wg.Wait()

	return reports
}
