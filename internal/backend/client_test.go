package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ashureev/farmerchat/internal/domain"
	"github.com/ashureev/farmerchat/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleQueryResponse = `{
	"success": true,
	"query": "Should I plant rice today?",
	"advice": "## Planting\n\n- Soil is **moist**",
	"routing": {"intent": "planting_decision", "required_servers": ["weather", "soil", "water"], "reasoning": "needs rain and soil"},
	"data": {"successful_servers": ["weather", "soil"], "failed_servers": ["water"], "data": {"weather": {"temp_c": 31.5}}},
	"execution_time_seconds": 3.42,
	"timestamp": "2025-06-01T09:30:00"
}`

func newTestClient() *Client {
	return NewClient(5 * time.Second)
}

func TestQuerySendsExactlyOneRequest(t *testing.T) {
	var calls atomic.Int32
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, sampleQueryResponse)
	}))
	defer srv.Close()

	qc := NewQueryClient(newTestClient(), srv.URL)
	resp, err := qc.Query(context.Background(), domain.NewQueryRequest("Should I plant rice today?"))
	require.NoError(t, err)

	assert.EqualValues(t, 1, calls.Load())
	assert.JSONEq(t,
		`{"query":"Should I plant rice today?","location":{"name":"Guntur, Tamil Nadu","lat":15.912,"lon":79.740}}`,
		string(gotBody))
	assert.Equal(t, "planting_decision", resp.Routing.Intent)
	assert.Equal(t, []string{"weather", "soil", "water"}, resp.Routing.RequiredServers)
	assert.Equal(t, []string{"weather", "soil"}, resp.Data.SuccessfulServers)
	assert.Len(t, resp.Data.FailedServers, 1)
	assert.JSONEq(t, `{"temp_c": 31.5}`, string(resp.Data.Data["weather"]))
	assert.InDelta(t, 3.42, resp.ExecutionTimeSeconds, 1e-9)
}

func TestQueryNon2xxIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	failures := metrics.BackendRequestsTotal.WithLabelValues(EndpointQuery, metrics.OutcomeStatus)
	before := testutil.ToFloat64(failures)

	_, err := NewQueryClient(newTestClient(), srv.URL).Query(context.Background(), domain.NewQueryRequest("q"))
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, EndpointQuery, se.Endpoint)
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
	assert.Equal(t, before+1, testutil.ToFloat64(failures))
}

func TestQueryMalformedBodyIsDecodeError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>oops</html>"},
		{name: "missing routing", body: `{"advice": "x", "data": {}}`},
		{name: "servers not strings", body: `{"advice": "x", "routing": {"required_servers": [1, 2]}, "data": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewQueryClient(newTestClient(), srv.URL).Query(context.Background(), domain.NewQueryRequest("q"))
			var de *DecodeError
			require.True(t, errors.As(err, &de), "got %v", err)
		})
	}
}

func TestTransportFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewAlertClient(newTestClient(), url).Locations(context.Background())
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, EndpointLocations, te.Endpoint)
	assert.Zero(t, StatusCode(err))
}

func TestExportPDF(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/export-pdf", r.URL.Path)
		var req domain.QueryRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "soil pH?", req.Query)
		assert.Equal(t, domain.FieldLocation, req.Location)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	}))
	defer srv.Close()

	got, err := NewQueryClient(newTestClient(), srv.URL+"/").ExportPDF(context.Background(), domain.NewQueryRequest("soil pH?"))
	require.NoError(t, err)
	assert.Equal(t, pdf, got.Data)
	assert.Equal(t, "application/pdf", got.ContentType)
}

func TestExportPDFNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewQueryClient(newTestClient(), srv.URL).ExportPDF(context.Background(), domain.NewQueryRequest("q"))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/locations", r.URL.Path)
		_, _ = io.WriteString(w, `{"districts": {"Patna": ["Danapur", "Barh"], "Gaya": ["Bodh Gaya"]}}`)
	}))
	defer srv.Close()

	catalog, err := NewAlertClient(newTestClient(), srv.URL).Locations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Gaya", "Patna"}, catalog.DistrictNames())
	assert.Equal(t, []string{"Danapur", "Barh"}, catalog.Villages("Patna"))
}

func TestGenerateAlert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate-alert", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"location_name":"Barh","district":"Patna"}`, string(body))
		_, _ = io.WriteString(w, `{"location":"Barh, Patna","coordinates":{"latitude":25.4833,"longitude":85.7167},"district":null,"alert_summary":"Heat wave\nIrrigate early","timestamp":"2025-06-01T09:30:00"}`)
	}))
	defer srv.Close()

	resp, err := NewAlertClient(newTestClient(), srv.URL).GenerateAlert(context.Background(), domain.AlertRequest{LocationName: "Barh", District: "Patna"})
	require.NoError(t, err)
	assert.Equal(t, "Barh, Patna", resp.Location)
	assert.Empty(t, resp.District)
	assert.Equal(t, "Heat wave\nIrrigate early", resp.AlertSummary)
}

func TestGenerateAlertDetail(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{name: "string detail", body: `{"detail": "Location not found"}`, wantDetail: "Location not found"},
		{name: "validation detail list", body: `{"detail": [{"loc": ["body"], "msg": "field required"}]}`, wantDetail: ""},
		{name: "plain text", body: `Internal Server Error`, wantDetail: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewAlertClient(newTestClient(), srv.URL).GenerateAlert(context.Background(), domain.AlertRequest{LocationName: "X", District: "Y"})
			require.Error(t, err)
			assert.Equal(t, http.StatusNotFound, StatusCode(err))
			assert.Equal(t, tt.wantDetail, Detail(err))
		})
	}
}

func TestOutcomeLabels(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "http_error", outcome(&StatusError{}))
	assert.Equal(t, "decode_error", outcome(&DecodeError{}))
	assert.Equal(t, "transport_error", outcome(&TransportError{}))
}
