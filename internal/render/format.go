package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/farmerchat/internal/domain"
)

// timestampLayout is a medium date with a short time, e.g. "19 Oct 2026, 3:04 pm".
const timestampLayout = "2 Jan 2006, 3:04 pm"

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// FormatTimestamp formats a backend timestamp in loc. Timestamps without a
// zone are read as wall-clock time in loc. Unparseable input is returned as is.
func FormatTimestamp(raw string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(loc).Format(timestampLayout)
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.Format(timestampLayout)
		}
	}
	return raw
}

// FormatCoordinates renders a coordinate pair to four decimal places.
func FormatCoordinates(c domain.Coordinates) string {
	return fmt.Sprintf("%.4f°N, %.4f°E", c.Latitude, c.Longitude)
}

// FormatSeconds renders an elapsed time such as "3.42s".
func FormatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "s"
}

// PrettyJSON renders v with two-space indentation.
func PrettyJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// ExportFilename names a downloaded advisory PDF after the export time.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("farmer-chat-%d.pdf", t.UnixMilli())
}
