package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ashureev/farmerchat/internal/domain"
	"github.com/ashureev/farmerchat/internal/identity"
	"github.com/ashureev/farmerchat/internal/live"
	"github.com/ashureev/farmerchat/internal/render"
)

// AdvisorPage starts a new advisor page session. An optional q parameter
// pre-fills the query box.
func (h *Handler) AdvisorPage(w http.ResponseWriter, r *http.Request) {
	sess := h.registry.Create(live.AppAdvisor, identity.AnonIDFromContext(r.Context()))
	if q := r.URL.Query().Get("q"); q != "" {
		sess.Advisor.SetQuery(q)
	}
	h.renderAdvisor(w, http.StatusOK, sess)
}

// AdvisorSubmit is the form submit of the advisor page. It waits for the
// backend and renders the outcome.
func (h *Handler) AdvisorSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		Error(w, http.StatusBadRequest, "invalid form")
		return
	}
	sess := h.advisorSession(r, r.PostFormValue("session"))
	sess.Advisor.SetQuery(r.PostFormValue("query"))

	if sess.Advisor.Submit(r.Context(), h.queries) {
		slog.Info("Advisor query answered", "session_id", sess.ID, "error", sess.Advisor.Snapshot().Result.Err())
	}
	h.renderAdvisor(w, http.StatusOK, sess)
}

// AdvisorExport proxies the PDF export of the current query as a download.
func (h *Handler) AdvisorExport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		Error(w, http.StatusBadRequest, "invalid form")
		return
	}
	query := r.PostFormValue("query")
	if strings.TrimSpace(query) == "" {
		http.Redirect(w, r, "/advisor", http.StatusSeeOther)
		return
	}

	owner := identity.AnonIDFromContext(r.Context())
	pdf, err := h.queries.ExportPDF(r.Context(), domain.NewQueryRequest(query))
	if err != nil {
		// The failure page replaces the exporting page, whose session ends
		// when that page's live connection closes.
		sess := h.registry.Create(live.AppAdvisor, owner)
		sess.Advisor.SetQuery(query)
		sess.Advisor.FailExport(err)
		slog.Warn("PDF export failed", "error", err, "session_id", sess.ID,
			"previous_session_id", r.PostFormValue("session"))
		h.renderAdvisor(w, http.StatusOK, sess)
		return
	}

	filename := render.ExportFilename(h.now())
	w.Header().Set("Content-Type", pdf.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf.Data); err != nil {
		slog.Debug("Failed to write PDF", "error", err, "session_id", r.PostFormValue("session"))
		return
	}
	slog.Info("PDF exported", "session_id", r.PostFormValue("session"), "filename", filename, "bytes", len(pdf.Data))
}

// advisorSession resumes the page session id, or starts a new one when it
// is unknown or has expired.
func (h *Handler) advisorSession(r *http.Request, id string) *live.Session {
	owner := identity.AnonIDFromContext(r.Context())
	if sess, ok := h.registry.Lookup(id, owner, live.AppAdvisor); ok {
		return sess
	}
	return h.registry.Create(live.AppAdvisor, owner)
}

func (h *Handler) renderAdvisor(w http.ResponseWriter, status int, sess *live.Session) {
	view := sess.Advisor.Snapshot()
	HTML(w, status, func(out io.Writer) error {
		return h.views.AdvisorPage(out, sess.ID, h.queries.BaseURL(), view)
	})
}
