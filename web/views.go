package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/ashureev/farmerchat/internal/page"
	"github.com/ashureev/farmerchat/internal/render"
)

// Region ids updated by live pushes.
const (
	RegionAdvisorResult  = "advisor-result"
	RegionAlertSelectors = "alert-selectors"
	RegionAlertBody      = "alert-body"
)

// Views renders full pages and the live regions inside them.
type Views struct {
	pages    map[string]*template.Template
	regions  *template.Template
	markdown *render.Markdown
	loc      *time.Location
}

// NewViews parses the embedded templates. Timestamps are shown in loc.
func NewViews(loc *time.Location, styles render.StyleMap) (*Views, error) {
	regions, err := template.New("regions").ParseFS(assets, "templates/regions.html")
	if err != nil {
		return nil, fmt.Errorf("parse region templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"index", "advisor", "alerts"} {
		t, err := template.New(name).ParseFS(assets,
			"templates/layout.html", "templates/regions.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		pages[name] = t
	}

	if loc == nil {
		loc = time.UTC
	}
	return &Views{
		pages:    pages,
		regions:  regions,
		markdown: render.NewMarkdown(styles),
		loc:      loc,
	}, nil
}

type layoutData struct {
	Title     string
	App       string
	SessionID string
	LivePath  string

	BackendURL string
	Examples   []string
	Advisor    *advisorPage
	Alerts     *alertsPage
}

type advisorPage struct {
	Query     string
	Pending   bool
	CanSubmit bool
	Region    advisorRegion
}

type advisorRegion struct {
	SessionID string
	Query     string
	Pending   bool
	Error     string
	Response  *responseCard
}

type responseCard struct {
	AdviceHTML    template.HTML
	Intent        string
	ExecutionTime string
	Badges        []render.Badge
	Summary       string
	RawData       string
}

type alertsPage struct {
	Selectors alertSelectors
	Body      alertBody
}

type alertSelectors struct {
	SessionID     string
	CatalogLoaded bool
	Districts     []string
	District      string
	Villages      []string
	Village       string
	Alert         *alertCard
}

type alertBody struct {
	Pending   bool
	Error     string
	Welcome   bool
	Alert     *alertCard
	Checklist []string
}

type alertCard struct {
	Location    string
	Coordinates string
	GeneratedAt string
	Summary     string
}

// Index renders the landing page.
func (v *Views) Index(w io.Writer) error {
	return v.pages["index"].ExecuteTemplate(w, "layout", layoutData{
		Title: "Farmer.Chat",
		App:   "index",
	})
}

// AdvisorPage renders the advisor page for one page session.
func (v *Views) AdvisorPage(w io.Writer, sessionID, backendURL string, view page.AdvisorView) error {
	region, err := v.advisorRegion(sessionID, view)
	if err != nil {
		return err
	}
	return v.pages["advisor"].ExecuteTemplate(w, "layout", layoutData{
		Title:      "Farmer.Chat",
		App:        "advisor",
		SessionID:  sessionID,
		LivePath:   "/ws/advisor",
		BackendURL: backendURL,
		Examples:   page.ExampleQueries,
		Advisor: &advisorPage{
			Query:     view.Query,
			Pending:   view.Pending,
			CanSubmit: view.CanSubmit,
			Region:    region,
		},
	})
}

// AlertsPage renders the alert page for one page session.
func (v *Views) AlertsPage(w io.Writer, sessionID string, view page.AlertsView) error {
	return v.pages["alerts"].ExecuteTemplate(w, "layout", layoutData{
		Title:     "Farmer.chat Alert Summary Generator",
		App:       "alerts",
		SessionID: sessionID,
		LivePath:  "/ws/alerts",
		Alerts:    v.alertsPage(sessionID, view),
	})
}

// AdvisorRegions renders the live regions of the advisor page.
func (v *Views) AdvisorRegions(sessionID string, view page.AdvisorView) (map[string]string, error) {
	region, err := v.advisorRegion(sessionID, view)
	if err != nil {
		return nil, err
	}
	html, err := v.execute(RegionAdvisorResult, region)
	if err != nil {
		return nil, err
	}
	return map[string]string{RegionAdvisorResult: html}, nil
}

// AlertRegions renders the live regions of the alert page.
func (v *Views) AlertRegions(sessionID string, view page.AlertsView) (map[string]string, error) {
	p := v.alertsPage(sessionID, view)
	selectors, err := v.execute(RegionAlertSelectors, p.Selectors)
	if err != nil {
		return nil, err
	}
	body, err := v.execute(RegionAlertBody, p.Body)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		RegionAlertSelectors: selectors,
		RegionAlertBody:      body,
	}, nil
}

func (v *Views) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := v.regions.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (v *Views) advisorRegion(sessionID string, view page.AdvisorView) (advisorRegion, error) {
	region := advisorRegion{
		SessionID: sessionID,
		Query:     view.Query,
		Pending:   view.Pending,
		Error:     view.Result.Err(),
	}
	resp := view.Result.Value()
	if resp == nil {
		return region, nil
	}

	advice, err := v.markdown.Render(resp.Advice)
	if err != nil {
		return advisorRegion{}, err
	}
	region.Response = &responseCard{
		AdviceHTML:    advice,
		Intent:        resp.Routing.Intent,
		ExecutionTime: render.FormatSeconds(resp.ExecutionTimeSeconds),
		Badges:        render.Badges(resp.Routing, resp.Data),
		Summary:       render.ServerSummary(resp.Routing, resp.Data),
		RawData:       render.PrettyJSON(resp.Data.Data),
	}
	return region, nil
}

func (v *Views) alertsPage(sessionID string, view page.AlertsView) *alertsPage {
	var card *alertCard
	if resp := view.Result.Value(); resp != nil {
		card = &alertCard{
			Location:    resp.Location,
			Coordinates: render.FormatCoordinates(resp.Coordinates),
			GeneratedAt: render.FormatTimestamp(resp.Timestamp, v.loc),
			Summary:     resp.AlertSummary,
		}
	}
	return &alertsPage{
		Selectors: alertSelectors{
			SessionID:     sessionID,
			CatalogLoaded: view.CatalogLoaded,
			Districts:     view.Districts,
			District:      view.District,
			Villages:      view.Villages,
			Village:       view.Village,
			Alert:         card,
		},
		Body: alertBody{
			Pending:   view.Pending,
			Error:     view.Error,
			Welcome:   view.Welcome(),
			Alert:     card,
			Checklist: render.AlertChecklist,
		},
	}
}
