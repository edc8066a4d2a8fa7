// Package api provides the HTTP handlers for the farmerchat pages.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/farmerchat/internal/backend"
	"github.com/ashureev/farmerchat/internal/domain"
	"github.com/ashureev/farmerchat/internal/live"
	"github.com/ashureev/farmerchat/internal/page"
	"github.com/ashureev/farmerchat/web"
	"github.com/go-chi/chi/v5"
)

// QueryBackend is the advisory inference service.
type QueryBackend interface {
	page.Querier
	ExportPDF(ctx context.Context, req domain.QueryRequest) (*backend.PDF, error)
	BaseURL() string
}

// AlertBackend is the alert generation service.
type AlertBackend interface {
	page.AlertGenerator
	Locations(ctx context.Context) (*domain.LocationCatalog, error)
	BaseURL() string
}

// Handler serves the landing, advisor and alert pages.
type Handler struct {
	registry *live.Registry
	views    *web.Views
	queries  QueryBackend
	alerts   AlertBackend
	now      func() time.Time
}

// NewHandler creates a new Handler with its page dependencies.
func NewHandler(registry *live.Registry, views *web.Views, queries QueryBackend, alerts AlertBackend) *Handler {
	return &Handler{
		registry: registry,
		views:    views,
		queries:  queries,
		alerts:   alerts,
		now:      time.Now,
	}
}

// RegisterRoutes registers the page routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Route("/advisor", func(r chi.Router) {
		r.Get("/", h.AdvisorPage)
		r.Post("/", h.AdvisorSubmit)
		r.Post("/export", h.AdvisorExport)
	})
	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.AlertsPage)
		r.Get("/select", h.AlertsSelect)
	})
}

// Index renders the landing page.
func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	HTML(w, http.StatusOK, h.views.Index)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// HTML renders a page into memory and writes it with the given status code.
// A template failure yields a 500 instead of a truncated page.
func HTML(w http.ResponseWriter, status int, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		slog.Error("Failed to render page", "error", err)
		Error(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("Failed to write page", "error", err)
	}
}
