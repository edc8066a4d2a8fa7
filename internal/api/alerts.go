package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/ashureev/farmerchat/internal/identity"
	"github.com/ashureev/farmerchat/internal/live"
)

// AlertsPage starts a new alert page session and loads the location
// catalog for it.
func (h *Handler) AlertsPage(w http.ResponseWriter, r *http.Request) {
	sess := h.newAlertsSession(r.Context(), identity.AnonIDFromContext(r.Context()))
	h.renderAlerts(w, sess)
}

// AlertsSelect is the form submit of the alert page. A village that belongs
// to the selected district triggers alert generation.
func (h *Handler) AlertsSelect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := identity.AnonIDFromContext(ctx)
	q := r.URL.Query()

	sess, ok := h.registry.Lookup(q.Get("session"), owner, live.AppAlerts)
	if !ok {
		sess = h.newAlertsSession(ctx, owner)
	}

	sess.Alerts.SelectDistrict(q.Get("district"))
	if village := q.Get("village"); village != "" {
		if sess.Alerts.Choose(ctx, village, h.alerts) {
			slog.Info("Alert generated", "session_id", sess.ID, "district", q.Get("district"), "village", village,
				"error", sess.Alerts.Snapshot().Error)
		}
	} else {
		sess.Alerts.SelectVillage("")
	}
	h.renderAlerts(w, sess)
}

func (h *Handler) newAlertsSession(ctx context.Context, owner string) *live.Session {
	sess := h.registry.Create(live.AppAlerts, owner)
	catalog, err := h.alerts.Locations(ctx)
	if err != nil {
		slog.Warn("Failed to load location catalog", "error", err, "session_id", sess.ID)
	}
	sess.Alerts.LoadCatalog(catalog, err)
	return sess
}

func (h *Handler) renderAlerts(w http.ResponseWriter, sess *live.Session) {
	view := sess.Alerts.Snapshot()
	HTML(w, http.StatusOK, func(out io.Writer) error {
		return h.views.AlertsPage(out, sess.ID, view)
	})
}
