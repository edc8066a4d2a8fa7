// Package backend dispatches requests to the remote inference and alert
// services and converts their responses into domain types.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/farmerchat/internal/metrics"
	"github.com/xeipuuv/gojsonschema"
)

const (
	maxJSONBodySize   = 8 << 20  // 8MB
	maxBinaryBodySize = 64 << 20 // 64MB
	maxErrorBodySize  = 64 << 10
)

// Endpoint names used in logs, errors and metric labels.
const (
	EndpointQuery         = "query"
	EndpointExportPDF     = "export_pdf"
	EndpointLocations     = "locations"
	EndpointGenerateAlert = "generate_alert"
)

// Client is the shared HTTP transport for all backend endpoints.
// Each call issues exactly one request and reads exactly one response.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a client whose requests time out after timeout.
func NewClient(timeout time.Duration) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a client around an existing *http.Client.
func NewClientWithHTTP(hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{httpClient: hc, userAgent: "farmerchat/1"}
}

// SetUserAgent overrides the User-Agent header sent with every request.
func (c *Client) SetUserAgent(ua string) {
	c.userAgent = ua
}

// doJSON sends body (if non-nil) as JSON, validates the 2xx response against
// schema and decodes it into out.
func (c *Client) doJSON(ctx context.Context, endpoint, method, url string, body any, schema *gojsonschema.Schema, out any) (err error) {
	start := time.Now()
	defer func() { observe(endpoint, start, err) }()

	resp, err := c.send(ctx, endpoint, method, url, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(endpoint, resp); err != nil {
		return err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONBodySize+1))
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(raw) > maxJSONBodySize {
		return &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("body exceeds %d bytes", maxJSONBodySize)}
	}
	if err := validate(schema, raw); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// doBinary sends body as JSON and returns the raw 2xx response body along
// with its Content-Type.
func (c *Client) doBinary(ctx context.Context, endpoint, method, url string, body any) (data []byte, contentType string, err error) {
	start := time.Now()
	defer func() { observe(endpoint, start, err) }()

	resp, err := c.send(ctx, endpoint, method, url, body, "application/pdf, application/octet-stream")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(endpoint, resp); err != nil {
		return nil, "", err
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxBinaryBodySize+1))
	if err != nil {
		return nil, "", &TransportError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(data) > maxBinaryBodySize {
		return nil, "", &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("body exceeds %d bytes", maxBinaryBodySize)}
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) send(ctx context.Context, endpoint, method, url string, body any, accept string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	slog.Debug("Dispatching backend request", "endpoint", endpoint, "method", method, "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	return resp, nil
}

// checkStatus converts a non-2xx response into a StatusError, keeping the
// server's "detail" string when the error body carries one.
func checkStatus(endpoint string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	se := &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err == nil && len(raw) > 0 {
		var payload struct {
			Detail json.RawMessage `json:"detail"`
		}
		if json.Unmarshal(raw, &payload) == nil && len(payload.Detail) > 0 {
			var detail string
			if json.Unmarshal(payload.Detail, &detail) == nil {
				se.Detail = strings.TrimSpace(detail)
			}
		}
	}
	slog.Warn("Backend returned error status", "endpoint", endpoint, "status", resp.StatusCode, "detail", se.Detail)
	return se
}

func observe(endpoint string, start time.Time, err error) {
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	metrics.BackendRequestsTotal.WithLabelValues(endpoint, outcome(err)).Inc()
}

func outcome(err error) string {
	switch err.(type) {
	case nil:
		return metrics.OutcomeOK
	case *StatusError:
		return metrics.OutcomeStatus
	case *DecodeError:
		return metrics.OutcomeDecode
	default:
		return metrics.OutcomeTransport
	}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
