package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ashureev/farmerchat/internal/domain"
	"github.com/ashureev/farmerchat/internal/page"
	"github.com/ashureev/farmerchat/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViews(t *testing.T) *Views {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	v, err := NewViews(loc, render.DefaultStyles)
	require.NoError(t, err)
	return v
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func sampleQueryResponse() *domain.QueryResponse {
	return &domain.QueryResponse{
		Success: true,
		Query:   "Should I plant rice today?",
		Advice:  "## Verdict\n\nPlant **now**.\n\n- irrigate\n- fertilise",
		Routing: domain.Routing{
			Intent:          "planting_decision",
			RequiredServers: []string{"weather", "soil", "weather"},
		},
		Data: domain.ExecutionData{
			SuccessfulServers: []string{"weather"},
			Data:              map[string]json.RawMessage{"weather": json.RawMessage(`{"temp":31}`)},
		},
		ExecutionTimeSeconds: 3.42,
	}
}

func advisorView(t *testing.T, resp *domain.QueryResponse, err error, pending bool) page.AdvisorView {
	t.Helper()
	a := page.NewAdvisor()
	a.SetQuery("Should I plant rice today?")
	_, ok := a.Begin()
	require.True(t, ok)
	if !pending {
		a.Complete(resp, err)
	}
	return a.Snapshot()
}

func TestAdvisorRegionsSuccess(t *testing.T) {
	v := newTestViews(t)
	regions, err := v.AdvisorRegions("sess-1", advisorView(t, sampleQueryResponse(), nil, false))
	require.NoError(t, err)

	doc := parse(t, regions[RegionAdvisorResult])

	assert.Equal(t, 0, doc.Find(".error-banner").Length())
	assert.Equal(t, 0, doc.Find(".loading").Length())

	badges := doc.Find(".badge")
	require.Equal(t, 2, badges.Length(), "duplicate required servers collapse to one badge")
	assert.True(t, doc.Find(`.badge[data-server="weather"]`).HasClass("badge-ok"))
	assert.True(t, doc.Find(`.badge[data-server="soil"]`).HasClass("badge-failed"))
	assert.Equal(t, "1/3 servers successful", doc.Find(".server-summary").Text())

	assert.Equal(t, 1, doc.Find("h2.advice-h2").Length())
	assert.Equal(t, "now", doc.Find("strong.advice-strong").Text())
	assert.Equal(t, 2, doc.Find("li.advice-li").Length())
	assert.Contains(t, doc.Find(".value").Text(), "3.42s")
	assert.Contains(t, doc.Find(".value").Text(), "planting_decision")

	details := doc.Find("details.raw-data")
	require.Equal(t, 1, details.Length())
	_, open := details.Attr("open")
	assert.False(t, open)
	assert.Contains(t, details.Find("pre").Text(), "\"temp\": 31")

	exportSession, _ := doc.Find(`.export-form input[name="session"]`).Attr("value")
	assert.Equal(t, "sess-1", exportSession)
	exportQuery, _ := doc.Find(`.export-form input[name="query"]`).Attr("value")
	assert.Equal(t, "Should I plant rice today?", exportQuery)
}

func TestAdvisorRegionsError(t *testing.T) {
	v := newTestViews(t)
	view := advisorView(t, nil, errors.New("dial tcp: refused"), false)
	regions, err := v.AdvisorRegions("sess-1", view)
	require.NoError(t, err)

	doc := parse(t, regions[RegionAdvisorResult])
	assert.Contains(t, doc.Find(".error-banner").Text(), page.MsgQueryUnreachable)
	assert.Equal(t, 0, doc.Find(".advice").Length(), "error and success are never shown together")
}

func TestAdvisorRegionsPending(t *testing.T) {
	v := newTestViews(t)
	regions, err := v.AdvisorRegions("sess-1", advisorView(t, nil, nil, true))
	require.NoError(t, err)

	doc := parse(t, regions[RegionAdvisorResult])
	assert.Contains(t, doc.Find(".loading").Text(), "Processing your query through MCP pipeline...")
	assert.Contains(t, doc.Find(".loading").Text(), "This typically takes 3-5 seconds")
}

func TestAdvisorPage(t *testing.T) {
	v := newTestViews(t)
	var buf bytes.Buffer
	require.NoError(t, v.AdvisorPage(&buf, "sess-9", "https://backend.example", page.NewAdvisor().Snapshot()))

	doc := parse(t, buf.String())
	session, _ := doc.Find("body").Attr("data-session")
	assert.Equal(t, "sess-9", session)
	live, _ := doc.Find("body").Attr("data-live")
	assert.Equal(t, "/ws/advisor", live)

	assert.Equal(t, len(page.ExampleQueries), doc.Find("[data-example]").Length())
	_, disabled := doc.Find(`#advisor-form button[type="submit"]`).Attr("disabled")
	assert.True(t, disabled, "ask is disabled for an empty query")
	href, _ := doc.Find(".footer a").Attr("href")
	assert.Equal(t, "https://backend.example", href)
}

func alertsWithCatalog() *page.Alerts {
	a := page.NewAlerts()
	a.LoadCatalog(&domain.LocationCatalog{Districts: map[string][]string{
		"Patna": {"Danapur", "Barh"},
		"Gaya":  {"Bodh Gaya"},
	}}, nil)
	return a
}

func TestAlertRegionsWelcome(t *testing.T) {
	v := newTestViews(t)
	regions, err := v.AlertRegions("sess-2", alertsWithCatalog().Snapshot())
	require.NoError(t, err)

	body := parse(t, regions[RegionAlertBody])
	assert.Equal(t, 1, body.Find(".welcome").Length())

	sel := parse(t, regions[RegionAlertSelectors])
	assert.Equal(t, []string{"", "Gaya", "Patna"}, sel.Find("#district option").Map(func(_ int, s *goquery.Selection) string {
		val, _ := s.Attr("value")
		return val
	}))
	_, disabled := sel.Find("#village").Attr("disabled")
	assert.True(t, disabled)
}

func TestAlertRegionsSuccess(t *testing.T) {
	v := newTestViews(t)
	a := alertsWithCatalog()
	require.True(t, a.SelectDistrict("Patna"))
	ticket, ok := a.SelectVillage("Danapur")
	require.True(t, ok)
	require.True(t, a.Complete(ticket.Seq, &domain.AlertResponse{
		Location:     "Danapur",
		Coordinates:  domain.Coordinates{Latitude: 25.63, Longitude: 85.04},
		AlertSummary: "Heavy rain expected.\nDelay sowing.",
		Timestamp:    "2026-10-19T09:30:00",
	}, nil))

	regions, err := v.AlertRegions("sess-2", a.Snapshot())
	require.NoError(t, err)

	body := parse(t, regions[RegionAlertBody])
	assert.Equal(t, "Heavy rain expected.\nDelay sowing.", body.Find("#alert-text").Text())
	assert.Equal(t, len(render.AlertChecklist), body.Find(".check").Length())
	assert.Equal(t, 0, body.Find(".welcome").Length())
	assert.Equal(t, 0, body.Find(".error-banner").Length())

	sel := parse(t, regions[RegionAlertSelectors])
	selected, _ := sel.Find(`#village option[selected]`).Attr("value")
	assert.Equal(t, "Danapur", selected)
	info := sel.Find(".location-info").Text()
	assert.Contains(t, info, "25.6300°N, 85.0400°E")
	assert.Contains(t, info, "19 Oct 2026, 9:30 am")
}

func TestAlertRegionsPendingAndError(t *testing.T) {
	v := newTestViews(t)
	a := alertsWithCatalog()
	require.True(t, a.SelectDistrict("Gaya"))
	ticket, ok := a.SelectVillage("Bodh Gaya")
	require.True(t, ok)

	regions, err := v.AlertRegions("sess-2", a.Snapshot())
	require.NoError(t, err)
	body := parse(t, regions[RegionAlertBody])
	assert.Contains(t, body.Find(".loading").Text(), "Generating Alert Summary...")
	assert.Contains(t, body.Find(".loading").Text(), "Querying Weather, Soil, Water, Elevation & Pest data...")

	require.True(t, a.Complete(ticket.Seq, nil, errors.New("boom")))
	regions, err = v.AlertRegions("sess-2", a.Snapshot())
	require.NoError(t, err)
	body = parse(t, regions[RegionAlertBody])
	assert.Contains(t, body.Find(".error-banner").Text(), page.MsgAlertFailed)
	assert.Equal(t, 0, body.Find("#alert-text").Length())
	assert.Equal(t, 0, body.Find(".welcome").Length())
}

func TestAlertsPageCatalogFailure(t *testing.T) {
	v := newTestViews(t)
	a := page.NewAlerts()
	a.LoadCatalog(nil, errors.New("unreachable"))

	var buf bytes.Buffer
	require.NoError(t, v.AlertsPage(&buf, "sess-3", a.Snapshot()))

	doc := parse(t, buf.String())
	assert.Contains(t, doc.Find(".error-banner").Text(), page.MsgLocationsFailed)
	_, disabled := doc.Find("#district").Attr("disabled")
	assert.True(t, disabled)
}

func TestIndex(t *testing.T) {
	v := newTestViews(t)
	var buf bytes.Buffer
	require.NoError(t, v.Index(&buf))

	doc := parse(t, buf.String())
	assert.Equal(t, 1, doc.Find(`a[href="/advisor"]`).Length())
	assert.Equal(t, 1, doc.Find(`a[href="/alerts"]`).Length())
	_, live := doc.Find("body").Attr("data-session")
	assert.False(t, live)
}

func TestStaticHandler(t *testing.T) {
	h := StaticHandler("/static/")

	tests := []struct {
		path string
		want int
	}{
		{"/static/style.css", http.StatusOK},
		{"/static/app.js", http.StatusOK},
		{"/static/", http.StatusNotFound},
		{"/static/missing.css", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
