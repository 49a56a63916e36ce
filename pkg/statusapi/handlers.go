package statusapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mediabridge/mediabridge-go/pkg/history"
	"github.com/mediabridge/mediabridge-go/pkg/media"
	"github.com/mediabridge/mediabridge-go/pkg/providers"
	"github.com/mediabridge/mediabridge-go/pkg/services"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SendJSON sends a JSON response
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// SendError sends an error response
func SendError(w http.ResponseWriter, message string, statusCode int) {
	SendJSON(w, statusCode, Response{Success: false, Message: message})
}

// SendSuccess sends a success response
func SendSuccess(w http.ResponseWriter, data interface{}) {
	SendJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// Handler serves the read-only status endpoints.
type Handler struct {
	catalog *services.Catalog
	locator services.Locator
	prober  *services.Prober
	index   *providers.Index
	history *history.Store
}

// NewHandler wires the handler. history may be nil when the history endpoint
// is not wanted.
func NewHandler(catalog *services.Catalog, loc services.Locator, prober *services.Prober, index *providers.Index, store *history.Store) *Handler {
	return &Handler{
		catalog: catalog,
		locator: loc,
		prober:  prober,
		index:   index,
		history: store,
	}
}

type serviceView struct {
	Name         string                 `json:"name"`
	Ref          string                 `json:"ref"`
	BaseURL      string                 `json:"base_url,omitempty"`
	Capabilities []media.Capability     `json:"capabilities"`
	Status       services.ServiceStatus `json:"status"`
}

// ListServices probes every cataloged service and reports the results.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	reports := h.prober.CheckAll(r.Context(), h.catalog, h.locator)

	views := make([]serviceView, 0, len(reports))
	for _, rep := range reports {
		view := serviceView{
			Name:         rep.Entry.Name,
			Ref:          rep.Entry.Ref,
			Capabilities: rep.Entry.Capabilities,
			Status:       rep.Status,
		}
		if rep.Handle != nil {
			view.BaseURL = rep.Handle.BaseURL
		}
		views = append(views, view)
	}
	SendSuccess(w, views)
}

// GetService resolves one service and returns its descriptor.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	entry, ok := h.catalog.Get(name)
	if !ok {
		SendError(w, fmt.Sprintf("unknown service: %s (known: %v)", name, h.catalog.Names()), http.StatusNotFound)
		return
	}

	handle, err := entry.ResolveHandle(r.Context(), h.locator)
	if err != nil {
		SendError(w, fmt.Sprintf("could not resolve service %s: %v", name, err), http.StatusBadGateway)
		return
	}
	SendSuccess(w, handle.Info)
}

// GetServiceStatus resolves one service and probes its health endpoint.
func (h *Handler) GetServiceStatus(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	entry, ok := h.catalog.Get(name)
	if !ok {
		SendError(w, fmt.Sprintf("unknown service: %s (known: %v)", name, h.catalog.Names()), http.StatusNotFound)
		return
	}

	handle, err := entry.ResolveHandle(r.Context(), h.locator)
	if err != nil {
		SendError(w, fmt.Sprintf("could not resolve service %s: %v", name, err), http.StatusBadGateway)
		return
	}
	status := h.prober.Check(r.Context(), entry.HealthURL(handle.BaseURL))
	SendSuccess(w, status)
}

type providerView struct {
	Name         string             `json:"name"`
	Type         media.ProviderType `json:"type"`
	Capabilities []media.Capability `json:"capabilities"`
	Models       []string           `json:"models"`
}

// ListProviders reports every registered provider with its declared models.
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	all := h.index.Providers()
	views := make([]providerView, 0, len(all))
	for _, p := range all {
		views = append(views, providerView{
			Name:         p.Name(),
			Type:         p.Type(),
			Capabilities: p.Capabilities(),
			Models:       p.AvailableModels(),
		})
	}
	SendSuccess(w, views)
}

// ListModels reports declared models, optionally filtered by capability.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	capParam := r.URL.Query().Get("capability")
	if capParam == "" {
		SendSuccess(w, h.index.Models())
		return
	}

	c, err := media.ParseCapability(capParam)
	if err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	models := h.index.ModelsForCapability(c)
	if models == nil {
		models = []media.ModelInfo{}
	}
	SendSuccess(w, models)
}

// RecentHistory reports recent generation records.
func (h *Handler) RecentHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		SendError(w, "history not enabled", http.StatusNotFound)
		return
	}

	days := queryInt(r, "days", 7)
	limit := queryInt(r, "limit", 50)
	records, err := h.history.Recent(days, limit)
	if err != nil {
		SendError(w, fmt.Sprintf("failed to read history: %v", err), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	SendSuccess(w, records)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
