package backend

import (
	"context"
	"net/http"

	"github.com/ashureev/farmerchat/internal/domain"
)

// QueryClient talks to the advisory backend.
type QueryClient struct {
	client  *Client
	baseURL string
}

// NewQueryClient creates a client for the advisory backend rooted at baseURL.
func NewQueryClient(c *Client, baseURL string) *QueryClient {
	return &QueryClient{client: c, baseURL: baseURL}
}

// BaseURL returns the advisory backend root.
func (q *QueryClient) BaseURL() string { return q.baseURL }

// Query issues POST {base}/api/query.
func (q *QueryClient) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	var resp domain.QueryResponse
	if err := q.client.doJSON(ctx, EndpointQuery, http.MethodPost, joinURL(q.baseURL, "/api/query"), req, querySchema, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PDF is an exported advisory document.
type PDF struct {
	Data        []byte
	ContentType string
}

// ExportPDF issues POST {base}/api/export-pdf and returns the document bytes.
func (q *QueryClient) ExportPDF(ctx context.Context, req domain.QueryRequest) (*PDF, error) {
	data, contentType, err := q.client.doBinary(ctx, EndpointExportPDF, http.MethodPost, joinURL(q.baseURL, "/api/export-pdf"), req)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/pdf"
	}
	return &PDF{Data: data, ContentType: contentType}, nil
}
