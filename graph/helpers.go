package graph

import (
	"strings"
)

// normalizeNodeID creates a safe, lowercase node ID for graph
// visualization. Special characters become underscores so IDs stay
// valid for D3 selectors. Example: "Pump 101/A" becomes "pump_101_a".
func normalizeNodeID(id string) string {
	normalized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, id)

	return strings.ToLower(normalized)
}
