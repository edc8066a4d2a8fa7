package page

import (
	"errors"
	"fmt"

	"github.com/ashureev/farmerchat/internal/backend"
)

// Display messages for failed requests.
const (
	MsgQueryUnreachable = "Failed to connect to backend"
	MsgQueryMalformed   = "Unexpected response from backend"
	MsgExportFailed     = "Failed to export PDF"
	MsgLocationsFailed  = "Failed to load locations. Please refresh the page."
	MsgAlertFailed      = "Failed to generate alert. Please try again."
)

// QueryErrorMessage converts an advisory query failure into its banner text.
func QueryErrorMessage(err error) string {
	if code := backend.StatusCode(err); code != 0 {
		return fmt.Sprintf("API Error: %d", code)
	}
	var de *backend.DecodeError
	if errors.As(err, &de) {
		return MsgQueryMalformed
	}
	return MsgQueryUnreachable
}

// ExportErrorMessage converts a PDF export failure into its banner text.
func ExportErrorMessage(err error) string {
	if code := backend.StatusCode(err); code != 0 {
		return fmt.Sprintf("PDF Export Error: %d", code)
	}
	return MsgExportFailed
}

// AlertErrorMessage converts an alert failure into its banner text,
// preferring the server's own detail.
func AlertErrorMessage(err error) string {
	if detail := backend.Detail(err); detail != "" {
		return detail
	}
	return MsgAlertFailed
}
