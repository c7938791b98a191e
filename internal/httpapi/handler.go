// Package httpapi serves the agent's read-only HTTP API: prometheus
// metrics, health, the factory catalog and the expression table.
//
// Handlers never touch the registry or the table. The agent loop, which
// owns both, publishes an immutable Snapshot after every change.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zjrosen/mibstore/internal/log"
	"github.com/zjrosen/mibstore/internal/presentation"
)

var (
	errNoSnapshot = errors.New("agent not ready")
	errNotFound   = errors.New("not found")
)

// Snapshot is the state served by the API.
type Snapshot struct {
	Factories   []presentation.FactoryDTO
	Aliases     []presentation.AliasDTO
	Expressions []presentation.ExpressionDTO
	TakenAt     time.Time
}

// Resolve returns the first factory in a colon separated list that the
// snapshot knows about.
func (s *Snapshot) Resolve(list string) (presentation.ResolveDTO, bool) {
	for _, name := range strings.Split(list, ":") {
		if name == "" {
			continue
		}
		for _, f := range s.Factories {
			if f.Name == name {
				return presentation.ResolveDTO{List: list, Factory: f.Factory, Product: f.Product}, true
			}
		}
	}
	return presentation.ResolveDTO{}, false
}

// Handler serves the API from the latest published Snapshot.
type Handler struct {
	snapshot atomic.Pointer[Snapshot]
	metrics  http.Handler
}

// NewHandler creates a handler. metrics serves /metrics and may be nil.
func NewHandler(metrics http.Handler) *Handler {
	return &Handler{metrics: metrics}
}

// Publish replaces the served snapshot.
func (h *Handler) Publish(s *Snapshot) {
	h.snapshot.Store(s)
}

// Router returns a router with every route registered.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the API routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
	r.Route("/registry", func(r chi.Router) {
		r.Get("/", h.ListFactories)
		r.Get("/aliases", h.ListAliases)
		r.Get("/resolve/{list}", h.Resolve)
	})
	r.Route("/expressions", func(r chi.Router) {
		r.Get("/", h.ListExpressions)
		r.Get("/{owner}/{name}", h.GetExpression)
	})
}

// Health reports readiness and snapshot sizes
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	s := h.snapshot.Load()
	if s == nil {
		h.respondError(w, http.StatusServiceUnavailable, errNoSnapshot)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"factories":   len(s.Factories),
		"expressions": len(s.Expressions),
		"taken_at":    s.TakenAt.UTC().Format(time.RFC3339),
	})
}

// ListFactories returns every registered name
func (h *Handler) ListFactories(w http.ResponseWriter, _ *http.Request) {
	s, ok := h.load(w)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, s.Factories)
}

// ListAliases returns configured aliases
func (h *Handler) ListAliases(w http.ResponseWriter, _ *http.Request) {
	s, ok := h.load(w)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, s.Aliases)
}

// Resolve resolves a colon list to a factory
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w)
	if !ok {
		return
	}
	list := chi.URLParam(r, "list")
	dto, found := s.Resolve(list)
	if !found {
		h.respondError(w, http.StatusNotFound, errNotFound)
		return
	}
	h.respondJSON(w, http.StatusOK, dto)
}

// ListExpressions returns every expression row in index order
func (h *Handler) ListExpressions(w http.ResponseWriter, _ *http.Request) {
	s, ok := h.load(w)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, s.Expressions)
}

// GetExpression returns one expression row
func (h *Handler) GetExpression(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w)
	if !ok {
		return
	}
	owner, name := chi.URLParam(r, "owner"), chi.URLParam(r, "name")
	for _, e := range s.Expressions {
		if e.Owner == owner && e.Name == name {
			h.respondJSON(w, http.StatusOK, e)
			return
		}
	}
	h.respondError(w, http.StatusNotFound, errNotFound)
}

func (h *Handler) load(w http.ResponseWriter) (*Snapshot, bool) {
	s := h.snapshot.Load()
	if s == nil {
		h.respondError(w, http.StatusServiceUnavailable, errNoSnapshot)
		return nil, false
	}
	return s, true
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.ErrorErr(log.CatHTTP, "Failed to encode JSON response", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, err error) {
	log.Debug(log.CatHTTP, "API error", "status", status, "error", err.Error())
	h.respondJSON(w, status, map[string]string{
		"error": err.Error(),
	})
}
