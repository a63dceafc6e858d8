// Package model defines the core domain types shared across the pipeline.
package model

import "math"

// Category identifies the kind of healthcare facility.
type Category string

// Facility categories. The set is closed for analysis purposes but new
// categories only require a new constant and a cost assumption.
const (
	CategoryHospital Category = "Hospital"
	CategoryRHC      Category = "RHC"
	CategoryFQHC     Category = "FQHC"
)

// Categories lists all known categories in reporting order.
func Categories() []Category {
	return []Category{CategoryHospital, CategoryRHC, CategoryFQHC}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryHospital, CategoryRHC, CategoryFQHC:
		return true
	}
	return false
}

// Facility is a single geolocated healthcare facility after source
// normalization. ID is stable within a run but opaque across runs.
type Facility struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       Category `json:"category"`
	Subtype        string   `json:"subtype,omitempty"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Address        string   `json:"address,omitempty"`
	City           string   `json:"city"`
	County         string   `json:"county,omitempty"`
	ZIP            string   `json:"zip,omitempty"`
	HealthSystem   string   `json:"health_system,omitempty"`
	Source         string   `json:"source,omitempty"`
	GeocodeQuality string   `json:"geocode_quality,omitempty"`
}

// HasCoordinates reports whether the facility carries a usable location:
// finite, non-zero, and inside the valid lat/lon ranges. A (0,0) point is
// treated as missing; it is the null island sentinel the upstream sources
// use for failed geocodes.
func (f Facility) HasCoordinates() bool {
	if math.IsNaN(f.Latitude) || math.IsNaN(f.Longitude) ||
		math.IsInf(f.Latitude, 0) || math.IsInf(f.Longitude, 0) {
		return false
	}
	if f.Latitude == 0 && f.Longitude == 0 {
		return false
	}
	return f.Latitude >= -90 && f.Latitude <= 90 &&
		f.Longitude >= -180 && f.Longitude <= 180
}
