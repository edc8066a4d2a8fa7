package render

import (
	"fmt"

	"github.com/ashureev/farmerchat/internal/domain"
)

// Badge is one required server and whether the backend reached it.
type Badge struct {
	Server string
	OK     bool
}

// Badges lists each required server once, in routing order.
func Badges(r domain.Routing, d domain.ExecutionData) []Badge {
	seen := make(map[string]struct{}, len(r.RequiredServers))
	badges := make([]Badge, 0, len(r.RequiredServers))
	for _, server := range r.RequiredServers {
		if _, dup := seen[server]; dup {
			continue
		}
		seen[server] = struct{}{}
		badges = append(badges, Badge{Server: server, OK: d.Succeeded(server)})
	}
	return badges
}

// ServerSummary renders "k/n servers successful".
func ServerSummary(r domain.Routing, d domain.ExecutionData) string {
	return fmt.Sprintf("%d/%d servers successful", len(d.SuccessfulServers), len(r.RequiredServers))
}

// AlertChecklist is the fixed set of data categories shown under an alert.
// Every entry is displayed as queried regardless of the response.
var AlertChecklist = []string{"Weather", "Soil", "Water", "Elevation", "Pests"}
