package statusapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a Chi router with all status routes configured.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		SendSuccess(w, map[string]string{"message": "mediabridge status API is running"})
	})

	r.Route("/api/services", func(r chi.Router) {
		r.Get("/", h.ListServices)
		r.Get("/{name}", h.GetService)
		r.Get("/{name}/status", h.GetServiceStatus)
	})

	r.Get("/api/providers", h.ListProviders)
	r.Get("/api/models", h.ListModels)
	r.Get("/api/history", h.RecentHistory)

	return r
}

// Server wraps the HTTP server for the status API.
type Server struct {
	httpServer *http.Server
}

// NewServer builds the server on the given listen address.
func NewServer(addr string, h *Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(h),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	log.Printf("Status API listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
