package backend

import (
	"context"
	"net/http"

	"github.com/ashureev/farmerchat/internal/domain"
)

// AlertClient talks to the alert generator backend.
type AlertClient struct {
	client  *Client
	baseURL string
}

// NewAlertClient creates a client for the alert backend rooted at baseURL.
func NewAlertClient(c *Client, baseURL string) *AlertClient {
	return &AlertClient{client: c, baseURL: baseURL}
}

// BaseURL returns the alert backend root.
func (a *AlertClient) BaseURL() string { return a.baseURL }

// Locations issues GET {base}/locations.
func (a *AlertClient) Locations(ctx context.Context) (*domain.LocationCatalog, error) {
	var catalog domain.LocationCatalog
	if err := a.client.doJSON(ctx, EndpointLocations, http.MethodGet, joinURL(a.baseURL, "/locations"), nil, catalogSchema, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// GenerateAlert issues POST {base}/generate-alert.
func (a *AlertClient) GenerateAlert(ctx context.Context, req domain.AlertRequest) (*domain.AlertResponse, error) {
	var resp domain.AlertResponse
	if err := a.client.doJSON(ctx, EndpointGenerateAlert, http.MethodPost, joinURL(a.baseURL, "/generate-alert"), req, alertSchema, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
