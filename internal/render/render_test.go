package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/facility-atlas/internal/model"
	"github.com/sells-group/facility-atlas/internal/overlap"
)

func sampleFacilities() []model.Facility {
	return []model.Facility{
		{
			ID: "hosp-0001", Name: "Salem Memorial Hospital", Category: model.CategoryHospital,
			City: "Salem", County: "Dent", HealthSystem: "Independent",
			Latitude: 37.6245, Longitude: -91.5380, Source: "state_hospitals",
		},
		{
			ID: "rhc-0001", Name: "Mercy Clinic Salem", Category: model.CategoryRHC,
			City: "Salem", HealthSystem: "Mercy",
			Latitude: 37.6205, Longitude: -91.5365,
		},
		{ID: "rhc-0002", Name: "Unlocated Clinic", Category: model.CategoryRHC},
	}
}

func TestFacilityCollection(t *testing.T) {
	t.Parallel()
	fc := FacilityCollection(sampleFacilities())
	require.Len(t, fc.Features, 2, "unlocated facility skipped")

	f := fc.Features[0]
	assert.Equal(t, "hosp-0001", f.ID)
	assert.Equal(t, "Salem Memorial Hospital", f.Properties["name"])
	assert.Equal(t, "Hospital", f.Properties["category"])
	assert.Equal(t, []float64{-91.5380, 37.6245}, f.Geometry.FlatCoords())
}

func TestOverlapCollection(t *testing.T) {
	t.Parallel()
	result := &overlap.Result{
		Overlaps: []overlap.OverlapResult{
			{FacilityID: "hosp-0001", NeighborCount: 1},
			{FacilityID: "rhc-0001", NeighborCount: 1},
		},
	}

	fc := OverlapCollection(sampleFacilities(), result)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, 1, fc.Features[0].Properties["neighbor_count"])
}

func TestWriteGeoJSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "facilities.geojson")
	require.NoError(t, WriteGeoJSON(path, FacilityCollection(sampleFacilities())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "FeatureCollection", doc["type"])
	assert.Len(t, doc["features"], 2)
}

func TestWriteCoverageMap(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "coverage.html")
	require.NoError(t, WriteCoverageMap(path, sampleFacilities(), DefaultMapOptions()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "leaflet")
	assert.Contains(t, html, "Salem Memorial Hospital")
	assert.Contains(t, html, "Facilities (2)")
}
