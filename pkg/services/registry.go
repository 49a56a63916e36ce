package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// DefaultRegistryURL is where the registry daemon listens when nothing else
// is configured.
const DefaultRegistryURL = "http://localhost:8095"

// ErrServiceNotFound is returned when the registry does not know a ref.
var ErrServiceNotFound = errors.New("service not found")

// Registry is an HTTP client for the external registry daemon. The daemon
// owns container lifecycles and ref resolution; this client only reads.
type Registry struct {
	BaseURL string
	client  *http.Client
}

// NewRegistry creates a registry client. An empty baseURL selects
// DefaultRegistryURL; a zero timeout selects 10 seconds.
func NewRegistry(baseURL string, timeout time.Duration) *Registry {
	if baseURL == "" {
		baseURL = DefaultRegistryURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Registry{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Resolve asks the registry for a running service handle for the given ref
// (github:<org>/<repo> or a catalog short name the daemon also accepts).
func (r *Registry) Resolve(ctx context.Context, ref string) (*ServiceHandle, error) {
	var info ServiceInfo
	path := fmt.Sprintf("/api/services/%s", url.PathEscape(ref))
	if err := r.getJSON(ctx, path, &info); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, ref)
		}
		return nil, fmt.Errorf("failed to resolve %s: %w", ref, err)
	}

	base := info.BaseURL
	if base == "" {
		return nil, fmt.Errorf("registry returned no base URL for %s", ref)
	}
	return &ServiceHandle{Info: info, BaseURL: strings.TrimRight(base, "/")}, nil
}

// Status queries the running/health state of a service.
func (r *Registry) Status(ctx context.Context, ref string) (*ServiceStatus, error) {
	var status ServiceStatus
	path := fmt.Sprintf("/api/services/%s/status", url.PathEscape(ref))
	if err := r.getJSON(ctx, path, &status); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, ref)
		}
		return nil, fmt.Errorf("failed to query status of %s: %w", ref, err)
	}
	if status.CheckedAt.IsZero() {
		status.CheckedAt = time.Now()
	}
	return &status, nil
}

// List returns snapshots of every service the registry knows about.
func (r *Registry) List(ctx context.Context) ([]ServiceInfo, error) {
	var infos []ServiceInfo
	if err := r.getJSON(ctx, "/api/services", &infos); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return infos, nil
}

// getJSON performs a GET with bounded retries on transient failures.
// 404 maps to ErrServiceNotFound; other 4xx are terminal.
func (r *Registry) getJSON(ctx context.Context, path string, out interface{}) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+path, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %v", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-Id", uuid.New().String())

		resp, err := r.client.Do(req)
		if err != nil {
			return fmt.Errorf("registry request failed: %v", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read registry response: %v", err)
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrServiceNotFound)
		case resp.StatusCode >= 500:
			return fmt.Errorf("registry error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("registry error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body))))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse registry response: %v", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 3), ctx))
}
