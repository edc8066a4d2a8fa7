package api

import (
	"net/http"

	"github.com/ashureev/farmerchat/internal/config"
	"github.com/ashureev/farmerchat/internal/live"
	"github.com/go-chi/chi/v5"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	registry *live.Registry
	cfg      *config.Config
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(registry *live.Registry, cfg *config.Config) *HealthHandler {
	return &HealthHandler{registry: registry, cfg: cfg}
}

// Health reports process health and a configuration summary. Backends are
// not probed: each is called once per user action and nowhere else.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"checks": map[string]string{"api": "ok"},
		"sessions": map[string]int{
			string(live.AppAdvisor): h.registry.Count(live.AppAdvisor),
			string(live.AppAlerts):  h.registry.Count(live.AppAlerts),
		},
		"backends": map[string]string{
			"query": h.cfg.Backend.QueryURL,
			"alert": h.cfg.Backend.AlertURL,
		},
	})
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
