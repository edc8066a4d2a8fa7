package page

import (
	"slices"
	"sync"

	"github.com/ashureev/farmerchat/internal/domain"
)

// AlertTicket identifies one generate-alert dispatch. Only the ticket with
// the current sequence number may complete the page.
type AlertTicket struct {
	Seq     uint64
	Request domain.AlertRequest
}

// AlertsView is an immutable snapshot of the alert page.
type AlertsView struct {
	CatalogLoaded bool
	Districts     []string
	District      string
	Villages      []string
	Village       string
	Pending       bool
	Result        Result[domain.AlertResponse]
	// Error is the banner text: a catalog failure or the alert failure.
	Error string
}

// Welcome reports whether the page has nothing to show yet.
func (v AlertsView) Welcome() bool {
	return !v.Pending && v.Result.Value() == nil && v.Error == ""
}

// Alerts is the view state of one alert page. Selecting a village is the
// explicit trigger for a dispatch; each trigger, and each district change,
// advances a sequence number so that a late response to an earlier
// selection is dropped instead of overwriting a newer one.
type Alerts struct {
	mu         sync.Mutex
	catalog    *domain.LocationCatalog
	catalogErr string
	district   string
	village    string
	pending    bool
	seq        uint64
	result     Result[domain.AlertResponse]
}

// NewAlerts creates an alert page with no catalog yet.
func NewAlerts() *Alerts {
	return &Alerts{}
}

// LoadCatalog records the outcome of the location catalog fetch.
func (a *Alerts) LoadCatalog(catalog *domain.LocationCatalog, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.catalog = nil
		a.catalogErr = MsgLocationsFailed
		return
	}
	a.catalog = catalog
	a.catalogErr = ""
}

// SelectDistrict changes the district. A change clears the village and any
// prior alert, and abandons a pending alert. It returns false if nothing
// changed or the district is unknown.
func (a *Alerts) SelectDistrict(district string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if district == a.district {
		return false
	}
	if district != "" {
		if a.catalog == nil {
			return false
		}
		if _, ok := a.catalog.Districts[district]; !ok {
			return false
		}
	}
	a.district = district
	a.village = ""
	a.result = Result[domain.AlertResponse]{}
	if a.pending {
		a.pending = false
		a.seq++
	}
	return true
}

// SelectVillage selects a village of the current district and, if a
// dispatch is needed, returns its ticket. Selecting "" clears the village.
// Re-selecting the village that is pending or already succeeded is a no-op.
func (a *Alerts) SelectVillage(village string) (AlertTicket, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if village == "" {
		a.village = ""
		return AlertTicket{}, false
	}
	if a.district == "" || !a.catalog.HasVillage(a.district, village) {
		return AlertTicket{}, false
	}
	if village == a.village && (a.pending || a.result.Value() != nil) {
		return AlertTicket{}, false
	}
	a.village = village
	a.seq++
	a.pending = true
	a.result = Result[domain.AlertResponse]{}
	return AlertTicket{
		Seq:     a.seq,
		Request: domain.AlertRequest{LocationName: village, District: a.district},
	}, true
}

// Complete applies the outcome of the dispatch identified by seq. It returns
// false, leaving the page untouched, if a newer selection superseded it.
func (a *Alerts) Complete(seq uint64, resp *domain.AlertResponse, err error) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.seq || !a.pending {
		return false
	}
	a.pending = false
	if err != nil {
		a.result = Failed[domain.AlertResponse](AlertErrorMessage(err))
		return true
	}
	a.result = Succeeded(resp)
	return true
}

// Snapshot returns the current view.
func (a *Alerts) Snapshot() AlertsView {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := AlertsView{
		CatalogLoaded: a.catalog != nil,
		Districts:     a.catalog.DistrictNames(),
		District:      a.district,
		Village:       a.village,
		Pending:       a.pending,
		Result:        a.result,
		Error:         a.catalogErr,
	}
	if a.district != "" {
		v.Villages = slices.Clone(a.catalog.Villages(a.district))
	}
	if msg := a.result.Err(); msg != "" {
		v.Error = msg
	}
	return v
}
