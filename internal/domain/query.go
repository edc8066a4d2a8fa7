// Package domain contains core domain types for the farmerchat application.
package domain

import (
	"encoding/json"
	"slices"
)

// Location is a named coordinate pair sent along with an advisory query.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// FieldLocation is the fixed location every advisory query is asked about.
var FieldLocation = Location{
	Name: "Guntur, Tamil Nadu",
	Lat:  15.912,
	Lon:  79.740,
}

// QueryRequest is the body of POST /api/query and POST /api/export-pdf.
type QueryRequest struct {
	Query    string   `json:"query"`
	Location Location `json:"location"`
}

// NewQueryRequest builds a request for the given text at FieldLocation.
// The text is passed through verbatim.
func NewQueryRequest(query string) QueryRequest {
	return QueryRequest{Query: query, Location: FieldLocation}
}

// Routing describes which remote data sources the backend decided to consult.
type Routing struct {
	Intent          string   `json:"intent"`
	RequiredServers []string `json:"required_servers"`
	Reasoning       string   `json:"reasoning"`
}

// ExecutionData reports which data sources answered and what they returned.
type ExecutionData struct {
	SuccessfulServers []string                   `json:"successful_servers"`
	FailedServers     []json.RawMessage          `json:"failed_servers"`
	Data              map[string]json.RawMessage `json:"data"`
}

// Succeeded reports whether server is listed in SuccessfulServers.
func (d ExecutionData) Succeeded(server string) bool {
	return slices.Contains(d.SuccessfulServers, server)
}

// QueryResponse is the body returned by POST /api/query.
type QueryResponse struct {
	Success              bool          `json:"success"`
	Query                string        `json:"query"`
	Advice               string        `json:"advice"`
	Routing              Routing       `json:"routing"`
	Data                 ExecutionData `json:"data"`
	ExecutionTimeSeconds float64       `json:"execution_time_seconds"`
	Timestamp            string        `json:"timestamp"`
}
