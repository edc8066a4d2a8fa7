package page

import (
	"strings"
	"sync"

	"github.com/ashureev/farmerchat/internal/domain"
)

// ExampleQueries are offered as one-click query suggestions.
var ExampleQueries = []string{
	"What is the weather like?",
	"Should I plant rice today?",
	"What is my soil composition?",
	"Are groundwater levels low?",
}

// AdvisorView is an immutable snapshot of the advisor page.
type AdvisorView struct {
	Query     string
	Pending   bool
	Result    Result[domain.QueryResponse]
	CanSubmit bool
}

// Advisor is the view state of one advisor page. It is safe for concurrent
// use; a submit in flight blocks further submits until it completes.
type Advisor struct {
	mu      sync.Mutex
	query   string
	pending bool
	result  Result[domain.QueryResponse]
}

// NewAdvisor creates an idle advisor page.
func NewAdvisor() *Advisor {
	return &Advisor{}
}

// SetQuery replaces the query text. Ignored while a request is pending.
func (a *Advisor) SetQuery(q string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending {
		return false
	}
	a.query = q
	return true
}

// Begin starts a submit of the current query. It returns false, and changes
// nothing, when the query is blank or a request is already pending.
// On success the page becomes pending and the previous result is cleared.
func (a *Advisor) Begin() (domain.QueryRequest, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending || strings.TrimSpace(a.query) == "" {
		return domain.QueryRequest{}, false
	}
	a.pending = true
	a.result = Result[domain.QueryResponse]{}
	return domain.NewQueryRequest(a.query), true
}

// Complete ends the pending submit with its response or error.
func (a *Advisor) Complete(resp *domain.QueryResponse, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = false
	if err != nil {
		a.result = Failed[domain.QueryResponse](QueryErrorMessage(err))
		return
	}
	a.result = Succeeded(resp)
}

// FailExport replaces the page result with an export failure banner.
func (a *Advisor) FailExport(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result = Failed[domain.QueryResponse](ExportErrorMessage(err))
}

// Snapshot returns the current view.
func (a *Advisor) Snapshot() AdvisorView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AdvisorView{
		Query:     a.query,
		Pending:   a.pending,
		Result:    a.result,
		CanSubmit: !a.pending && strings.TrimSpace(a.query) != "",
	}
}
