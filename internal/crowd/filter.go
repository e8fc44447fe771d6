package crowd

import (
	"strings"

	"campus-crowd-backend/internal/model"
)

// AllLevels is the level filter value that disables level matching.
const AllLevels = "all"

// Filter returns the locations whose name contains search (case-insensitive)
// and whose crowd level equals level, or any level when level is AllLevels.
// Source order is preserved.
func Filter(locations []model.Location, search, level string) []model.Location {
	needle := strings.ToLower(search)
	matched := make([]model.Location, 0, len(locations))
	for _, loc := range locations {
		if !strings.Contains(strings.ToLower(loc.Name), needle) {
			continue
		}
		if level != AllLevels && string(loc.CrowdLevel) != level {
			continue
		}
		matched = append(matched, loc)
	}
	return matched
}
