package cleanse

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/facility-atlas/internal/model"
)

// Specialty facilities excluded from the service-area analysis. Psychiatric
// and behavioral hospitals and pediatric specialty hospitals do not provide
// general primary or acute care, so their proximity to other facilities is
// not redundancy.
var excludeNamePattern = regexp.MustCompile(`(?i)PSYCHIATRIC|MENTAL|BEHAVIORAL|SHRINERS|RANKEN`)

const excludedSubtype = "Psychiatric"

// Exclude drops specialty facilities and returns the survivors along with the
// facilities that were removed.
func Exclude(facilities []model.Facility) (kept, removed []model.Facility) {
	kept = make([]model.Facility, 0, len(facilities))
	for _, f := range facilities {
		if isSpecialty(f) {
			zap.L().Debug("cleanse: specialty facility excluded",
				zap.String("facility", f.Name),
				zap.String("subtype", f.Subtype),
			)
			removed = append(removed, f)
			continue
		}
		kept = append(kept, f)
	}
	return kept, removed
}

func isSpecialty(f model.Facility) bool {
	if strings.EqualFold(strings.TrimSpace(f.Subtype), excludedSubtype) {
		return true
	}
	return excludeNamePattern.MatchString(f.Name)
}

// DropUnlocated removes facilities without usable coordinates. They cannot
// participate in distance analysis; callers typically geocode first and call
// this as a last resort.
func DropUnlocated(facilities []model.Facility) (kept, dropped []model.Facility) {
	kept = make([]model.Facility, 0, len(facilities))
	for _, f := range facilities {
		if !f.HasCoordinates() {
			dropped = append(dropped, f)
			continue
		}
		kept = append(kept, f)
	}
	return kept, dropped
}
