// Package healthsys classifies facilities into the health systems that
// operate them by matching well-known system keywords against facility names.
package healthsys

import (
	"strings"

	"github.com/sells-group/facility-atlas/internal/model"
)

// Independent is the classification for facilities that match no known
// system.
const Independent = "Independent"

// rule maps a name substring to a system label. Rules are checked in order;
// the first match wins, so more specific keywords come first.
type rule struct {
	Keyword string
	System  string
}

var rules = []rule{
	{"BJC", "BJC HealthCare"},
	{"BARNES", "BJC HealthCare"},
	{"MISSOURI BAPTIST", "BJC HealthCare"},
	{"SSM", "SSM Health"},
	{"ST. MARY", "SSM Health"},
	{"SAINT MARY", "SSM Health"},
	{"MERCY", "Mercy"},
	{"COX", "CoxHealth"},
	{"CITIZENS MEMORIAL", "Citizens Memorial"},
	{"FREEMAN", "Freeman Health System"},
	{"MOSAIC", "Mosaic Life Care"},
	{"UNIVERSITY OF MISSOURI", "MU Health Care"},
	{"MU HEALTH", "MU Health Care"},
	{"SAINT FRANCIS", "Saint Francis Healthcare System"},
	{"ST. FRANCIS", "Saint Francis Healthcare System"},
	{"SAINT LUKE", "Saint Luke's Health System"},
	{"ST. LUKE", "Saint Luke's Health System"},
	{"GOLDEN VALLEY", "Golden Valley Memorial"},
	{"HANNIBAL REGIONAL", "Hannibal Regional"},
	{"LAKE REGIONAL", "Lake Regional Health System"},
	{"PHELPS", "Phelps Health"},
	{"BOTHWELL", "Bothwell Regional"},
	{"MISSOURI DELTA", "Missouri Delta Medical Center"},
	{"POPLAR BLUFF REGIONAL", "Poplar Bluff Regional"},
	{"MIDWEST DIVISION", "HCA Midwest Health"},
	{"RESEARCH MEDICAL", "HCA Midwest Health"},
	{"JORDAN VALLEY", "Jordan Valley Community Health"},
	{"ACCESS FAMILY CARE", "ACCESS Family Care"},
	{"COMPASS HEALTH", "Compass Health Network"},
}

// Classify returns the health system for a facility name, or Independent if
// no keyword matches. Matching is case-insensitive.
func Classify(name string) string {
	upper := strings.ToUpper(name)
	for _, r := range rules {
		if strings.Contains(upper, r.Keyword) {
			return r.System
		}
	}
	return Independent
}

// Assign fills HealthSystem on every facility in place and returns the count
// of facilities per system.
func Assign(facilities []model.Facility) map[string]int {
	counts := make(map[string]int)
	for i := range facilities {
		sys := Classify(facilities[i].Name)
		facilities[i].HealthSystem = sys
		counts[sys]++
	}
	return counts
}
