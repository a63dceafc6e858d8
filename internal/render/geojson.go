// Package render produces the report artifacts: GeoJSON feature collections
// and a self-contained Leaflet coverage map.
package render

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/facility-atlas/internal/model"
	"github.com/sells-group/facility-atlas/internal/overlap"
)

// FacilityCollection converts facilities to a GeoJSON FeatureCollection.
// Facilities without usable coordinates are skipped.
func FacilityCollection(facilities []model.Facility) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	for _, f := range facilities {
		if !f.HasCoordinates() {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       f.ID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{f.Longitude, f.Latitude}),
			Properties: map[string]interface{}{
				"name":          f.Name,
				"category":      string(f.Category),
				"subtype":       f.Subtype,
				"city":          f.City,
				"county":        f.County,
				"health_system": f.HealthSystem,
				"source":        f.Source,
			},
		})
	}
	return fc
}

// OverlapCollection annotates facility features with their analysis results
// so a map can style by redundancy. Facilities absent from the result (for
// example dropped for missing coordinates) are skipped.
func OverlapCollection(facilities []model.Facility, result *overlap.Result) *geojson.FeatureCollection {
	byID := make(map[string]overlap.OverlapResult, len(result.Overlaps))
	for _, r := range result.Overlaps {
		byID[r.FacilityID] = r
	}

	fc := &geojson.FeatureCollection{}
	for _, f := range facilities {
		r, ok := byID[f.ID]
		if !ok {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       f.ID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{f.Longitude, f.Latitude}),
			Properties: map[string]interface{}{
				"name":           f.Name,
				"category":       string(f.Category),
				"city":           f.City,
				"county":         f.County,
				"health_system":  f.HealthSystem,
				"neighbor_count": r.NeighborCount,
			},
		})
	}
	return fc
}

// WriteGeoJSON marshals a FeatureCollection to a file.
func WriteGeoJSON(path string, fc *geojson.FeatureCollection) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "render: marshal geojson")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "render: write %s", path)
	}
	return nil
}
