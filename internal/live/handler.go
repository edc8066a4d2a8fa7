package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/ashureev/farmerchat/internal/identity"
	"github.com/ashureev/farmerchat/internal/metrics"
	"github.com/ashureev/farmerchat/internal/page"
	"github.com/coder/websocket"
)

const writeTimeout = 10 * time.Second

// Message types exchanged with the browser.
const (
	MsgSetQuery       = "set_query"
	MsgSubmit         = "submit"
	MsgSelectDistrict = "select_district"
	MsgSelectVillage  = "select_village"
	MsgPing           = "ping"

	MsgRender = "render"
	MsgPong   = "pong"
	MsgError  = "error"
)

// ErrSessionNotFound is sent when the page session is unknown or expired.
const ErrSessionNotFound = "session_not_found"

// Renderer turns a page snapshot into HTML fragments keyed by region id.
type Renderer interface {
	AdvisorRegions(sessionID string, v page.AdvisorView) (map[string]string, error)
	AlertRegions(sessionID string, v page.AlertsView) (map[string]string, error)
}

// Inbound is a browser-to-server message.
type Inbound struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Outbound is a server-to-browser message.
type Outbound struct {
	Type    string            `json:"type"`
	Pending bool              `json:"pending,omitempty"`
	Regions map[string]string `json:"regions,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Handler serves live page connections.
type Handler struct {
	registry       *Registry
	renderer       Renderer
	queries        page.Querier
	alerts         page.AlertGenerator
	allowedOrigins []string
	isDev          bool
}

// NewHandler creates a live connection handler.
func NewHandler(registry *Registry, renderer Renderer, queries page.Querier, alerts page.AlertGenerator, allowedOrigins []string, isDev bool) *Handler {
	return &Handler{
		registry:       registry,
		renderer:       renderer,
		queries:        queries,
		alerts:         alerts,
		allowedOrigins: allowedOrigins,
		isDev:          isDev,
	}
}

// For returns an http.Handler accepting live connections for app's pages.
func (h *Handler) For(app App) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.serve(app, w, r)
	})
}

func (h *Handler) serve(app App, w http.ResponseWriter, r *http.Request) {
	owner := identity.AnonIDFromContext(r.Context())
	sessionID := r.URL.Query().Get("session")
	slog.Info("Live connection request", "app", app, "session_id", sessionID, "ip", identity.IPFromRequest(r))

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept live connection", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "page closed"); closeErr != nil {
			slog.Debug("Failed to close live connection", "error", closeErr, "session_id", sessionID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess, ok := h.registry.Lookup(sessionID, owner, app)
	if !ok {
		slog.Warn("Live connection for unknown session", "app", app, "session_id", sessionID)
		if err := writeJSON(ctx, ws, Outbound{Type: MsgError, Error: ErrSessionNotFound}); err != nil {
			slog.Debug("Failed to send session_not_found", "error", err)
		}
		return
	}

	h.registry.Attach(sess, ws)
	defer h.registry.Detach(sess, ws)

	gauge := metrics.LiveConnectionsActive.WithLabelValues(string(app))
	gauge.Inc()
	defer gauge.Dec()

	h.push(sess)
	h.readLoop(ctx, ws, sess)
	slog.Info("Live connection ended", "app", app, "session_id", sess.ID)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(h.allowedOrigins, "*") {
		return true
	}
	if slices.Contains(h.allowedOrigins, origin) {
		return true
	}
	slog.Warn("Live connection origin rejected", "origin", origin, "allowed", h.allowedOrigins)
	return false
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, sess *Session) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
				slog.Debug("Live connection closed by client", "session_id", sess.ID)
			} else {
				slog.Warn("Live connection read error", "error", err, "session_id", sess.ID)
			}
			return
		}
		sess.touch(h.registry.now())

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("Ignoring malformed live message", "error", err, "session_id", sess.ID)
			continue
		}
		h.handle(ctx, ws, sess, msg)
	}
}

// handle applies one browser message. Dispatches run on the session context
// and push to the connection that is current when they complete.
func (h *Handler) handle(ctx context.Context, ws *websocket.Conn, sess *Session, msg Inbound) {
	switch {
	case msg.Type == MsgPing:
		if err := writeJSON(ctx, ws, Outbound{Type: MsgPong}); err != nil {
			slog.Debug("Failed to send pong", "error", err, "session_id", sess.ID)
		}

	case msg.Type == MsgSetQuery && sess.Advisor != nil:
		sess.Advisor.SetQuery(msg.Value)

	case msg.Type == MsgSubmit && sess.Advisor != nil:
		sess.Advisor.SetQuery(msg.Value)
		req, ok := sess.Advisor.Begin()
		h.push(sess)
		if !ok {
			return
		}
		go func() {
			resp, err := h.queries.Query(sess.ctx, req)
			if err != nil {
				slog.Warn("Advisor query failed", "error", err, "session_id", sess.ID)
			}
			sess.Advisor.Complete(resp, err)
			h.push(sess)
		}()

	case msg.Type == MsgSelectDistrict && sess.Alerts != nil:
		sess.Alerts.SelectDistrict(msg.Value)
		h.push(sess)

	case msg.Type == MsgSelectVillage && sess.Alerts != nil:
		ticket, ok := sess.Alerts.SelectVillage(msg.Value)
		h.push(sess)
		if !ok {
			return
		}
		go func() {
			resp, err := h.alerts.GenerateAlert(sess.ctx, ticket.Request)
			if err != nil {
				slog.Warn("Alert generation failed", "error", err, "session_id", sess.ID,
					"district", ticket.Request.District, "village", ticket.Request.LocationName)
			}
			if !sess.Alerts.Complete(ticket.Seq, resp, err) {
				metrics.StaleResponsesDiscardedTotal.Inc()
				slog.Debug("Discarded superseded alert response", "session_id", sess.ID, "seq", ticket.Seq)
				return
			}
			h.push(sess)
		}()

	default:
		slog.Debug("Ignoring live message", "type", msg.Type, "app", sess.App, "session_id", sess.ID)
	}
}

// push renders the current state of sess and sends it to the session's
// current live connection, if any.
func (h *Handler) push(sess *Session) {
	sess.pushMu.Lock()
	defer sess.pushMu.Unlock()

	ws := sess.current()
	if ws == nil {
		return
	}
	msg, err := h.render(sess)
	if err != nil {
		slog.Error("Failed to render page regions", "error", err, "session_id", sess.ID)
		return
	}
	if err := writeJSON(sess.ctx, ws, msg); err != nil {
		slog.Debug("Failed to push render", "error", err, "session_id", sess.ID)
	}
}

func (h *Handler) render(sess *Session) (Outbound, error) {
	var (
		regions map[string]string
		pending bool
		err     error
	)
	switch sess.App {
	case AppAdvisor:
		v := sess.Advisor.Snapshot()
		pending = v.Pending
		regions, err = h.renderer.AdvisorRegions(sess.ID, v)
	case AppAlerts:
		v := sess.Alerts.Snapshot()
		pending = v.Pending
		regions, err = h.renderer.AlertRegions(sess.ID, v)
	default:
		err = fmt.Errorf("unknown app %q", sess.App)
	}
	if err != nil {
		return Outbound{}, err
	}
	return Outbound{Type: MsgRender, Pending: pending, Regions: regions}, nil
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal live message: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
