// Package live keeps page sessions in memory and drives them over websocket
// connections.
package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/farmerchat/internal/metrics"
	"github.com/ashureev/farmerchat/internal/page"
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// App names which page a session belongs to.
type App string

const (
	AppAdvisor App = "advisor"
	AppAlerts  App = "alerts"
)

// Session is the server-side state of one rendered page. Exactly one of
// Advisor and Alerts is set, according to App.
type Session struct {
	ID      string
	App     App
	Owner   string
	Advisor *page.Advisor
	Alerts  *page.Alerts

	// pushMu orders snapshot, render and write so that pushes from
	// concurrent dispatches reach the browser in state order.
	pushMu sync.Mutex

	// ctx outlives any single live connection and is cancelled when the
	// session is removed.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	lastSeen time.Time
	conn     *websocket.Conn
}

// current returns the live connection of s, or nil.
func (s *Session) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Registry holds the page sessions of this process.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new page session for owner.
func (r *Registry) Create(app App, owner string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:       uuid.NewString(),
		App:      app,
		Owner:    owner,
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: r.now(),
	}
	switch app {
	case AppAdvisor:
		s.Advisor = page.NewAdvisor()
	case AppAlerts:
		s.Alerts = page.NewAlerts()
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	metrics.PageSessionsActive.WithLabelValues(string(app)).Inc()
	slog.Debug("Page session created", "session_id", s.ID, "app", app)
	return s
}

// Lookup returns the session with id if it belongs to owner and app, and
// marks it as active.
func (r *Registry) Lookup(id, owner string, app App) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || s.App != app || s.Owner != owner {
		return nil, false
	}
	s.touch(r.now())
	return s, true
}

// Attach makes conn the live connection of s. A previous connection for
// the same session is closed.
func (r *Registry) Attach(s *Session, conn *websocket.Conn) {
	s.mu.Lock()
	existing := s.conn
	s.conn = conn
	s.lastSeen = r.now()
	s.mu.Unlock()

	if existing != nil && existing != conn {
		go func() { _ = existing.Close(websocket.StatusNormalClosure, "session replaced") }()
		slog.Info("Live connection replaced", "session_id", s.ID, "app", s.App)
	}
}

// Detach ends the session if conn is still its live connection. It reports
// whether the session was removed.
func (r *Registry) Detach(s *Session, conn *websocket.Conn) bool {
	s.mu.Lock()
	current := s.conn == conn
	if current {
		s.conn = nil
	}
	s.mu.Unlock()

	if !current {
		return false
	}
	return r.Remove(s.ID)
}

// Remove deletes the session with id. It reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if ok {
		s.cancel()
		metrics.PageSessionsActive.WithLabelValues(string(s.App)).Dec()
		slog.Debug("Page session removed", "session_id", id, "app", s.App)
	}
	return ok
}

// Count returns the number of sessions for app.
func (r *Registry) Count(app App) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.sessions {
		if s.App == app {
			n++
		}
	}
	return n
}

// Sweep removes sessions without a live connection that have been idle for
// longer than ttl, and returns how many it removed.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	var expired []*Session
	r.mu.RLock()
	for _, s := range r.sessions {
		s.mu.Lock()
		idle := s.conn == nil && s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			expired = append(expired, s)
		}
	}
	r.mu.RUnlock()

	removed := 0
	for _, s := range expired {
		if r.Remove(s.ID) {
			metrics.PageSessionsExpiredTotal.WithLabelValues(string(s.App)).Inc()
			removed++
		}
	}
	return removed
}
