package chartquery

import (
	"strings"

	"analytics/internal/domain"
)

// CheckColumns rejects a plan that references a column missing from known, the
// column catalog of the dataset's table. Names compare case-insensitively.
func CheckColumns(plan *Plan, known []string) error {
	catalog := make(map[string]bool, len(known))
	for _, c := range known {
		catalog[strings.ToLower(c)] = true
	}
	for _, c := range plan.Columns() {
		if !catalog[strings.ToLower(c)] {
			return domain.ErrValidation("unknown column %q", c)
		}
	}
	return nil
}
