package cleanse

import (
	"fmt"
	"sort"

	"github.com/sells-group/facility-atlas/internal/model"
)

// CoordinateGroup is a set of distinct facilities that share one exact
// coordinate pair, usually because a batch geocoder fell back to the city
// centroid for all of them.
type CoordinateGroup struct {
	Lat        float64          `json:"lat"`
	Lon        float64          `json:"lon"`
	Facilities []model.Facility `json:"facilities"`
}

// SharedCoordinates finds coordinate pairs occupied by more than one
// facility. Facilities without usable coordinates are ignored. Groups are
// returned largest first, ties broken by latitude then longitude for a
// stable report order.
func SharedCoordinates(facilities []model.Facility) []CoordinateGroup {
	byCoord := make(map[string][]model.Facility)
	for _, f := range facilities {
		if !f.HasCoordinates() {
			continue
		}
		key := fmt.Sprintf("%.6f,%.6f", f.Latitude, f.Longitude)
		byCoord[key] = append(byCoord[key], f)
	}

	var groups []CoordinateGroup
	for _, fs := range byCoord {
		if len(fs) < 2 {
			continue
		}
		groups = append(groups, CoordinateGroup{
			Lat:        fs[0].Latitude,
			Lon:        fs[0].Longitude,
			Facilities: fs,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Facilities) != len(groups[j].Facilities) {
			return len(groups[i].Facilities) > len(groups[j].Facilities)
		}
		if groups[i].Lat != groups[j].Lat {
			return groups[i].Lat < groups[j].Lat
		}
		return groups[i].Lon < groups[j].Lon
	})
	return groups
}
