package page

import (
	"context"

	"github.com/ashureev/farmerchat/internal/domain"
)

// Querier sends an advisory query to the inference backend.
type Querier interface {
	Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error)
}

// AlertGenerator asks the alert backend for a village summary.
type AlertGenerator interface {
	GenerateAlert(ctx context.Context, req domain.AlertRequest) (*domain.AlertResponse, error)
}

// Submit runs one submit of the current query to completion. It reports
// whether a request was dispatched.
func (a *Advisor) Submit(ctx context.Context, q Querier) bool {
	req, ok := a.Begin()
	if !ok {
		return false
	}
	resp, err := q.Query(ctx, req)
	a.Complete(resp, err)
	return true
}

// Choose selects a village and waits for its alert. It reports whether a
// request was dispatched.
func (a *Alerts) Choose(ctx context.Context, village string, g AlertGenerator) bool {
	ticket, ok := a.SelectVillage(village)
	if !ok {
		return false
	}
	resp, err := g.GenerateAlert(ctx, ticket.Request)
	a.Complete(ticket.Seq, resp, err)
	return true
}
