package domain

import "sort"

// LocationCatalog maps district names to their ordered village names.
type LocationCatalog struct {
	Districts map[string][]string `json:"districts"`
}

// DistrictNames returns the catalog's districts in lexical order.
func (c *LocationCatalog) DistrictNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Districts))
	for name := range c.Districts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Villages returns the villages of district in catalog order.
func (c *LocationCatalog) Villages(district string) []string {
	if c == nil {
		return nil
	}
	return c.Districts[district]
}

// HasVillage reports whether village belongs to district.
func (c *LocationCatalog) HasVillage(district, village string) bool {
	for _, v := range c.Villages(district) {
		if v == village {
			return true
		}
	}
	return false
}

// AlertRequest is the body of POST /generate-alert.
type AlertRequest struct {
	LocationName string `json:"location_name"`
	District     string `json:"district"`
}

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AlertResponse is the body returned by POST /generate-alert.
type AlertResponse struct {
	Location     string      `json:"location"`
	Coordinates  Coordinates `json:"coordinates"`
	District     string      `json:"district,omitempty"`
	AlertSummary string      `json:"alert_summary"`
	Timestamp    string      `json:"timestamp"`
}
