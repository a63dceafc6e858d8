package county

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/facility-atlas/internal/model"
)

// square returns a flat XY ring for an axis-aligned square.
func square(minLon, minLat, maxLon, maxLat float64) []float64 {
	return []float64{
		minLon, minLat,
		maxLon, minLat,
		maxLon, maxLat,
		minLon, maxLat,
		minLon, minLat,
	}
}

func testIndex() *Index {
	return &Index{counties: []County{
		{
			GEOID: "29161",
			Name:  "Phelps",
			box:   shp.Box{MinX: -92.0, MinY: 37.5, MaxX: -91.5, MaxY: 38.0},
			rings: [][]float64{square(-92.0, 37.5, -91.5, 38.0)},
		},
		{
			GEOID: "29155",
			Name:  "Pemiscot",
			box:   shp.Box{MinX: -90.0, MinY: 36.0, MaxX: -89.5, MaxY: 36.5},
			rings: [][]float64{
				square(-90.0, 36.0, -89.5, 36.5),
				// hole in the middle
				square(-89.8, 36.2, -89.7, 36.3),
			},
		},
	}}
}

func TestLocate(t *testing.T) {
	t.Parallel()
	idx := testIndex()

	c, ok := idx.Locate(37.75, -91.75)
	require.True(t, ok)
	assert.Equal(t, "Phelps", c.Name)
	assert.Equal(t, "29161", c.GEOID)

	_, ok = idx.Locate(40.0, -95.0)
	assert.False(t, ok, "point outside every county")
}

func TestLocate_EvenOddHole(t *testing.T) {
	t.Parallel()
	idx := testIndex()

	c, ok := idx.Locate(36.1, -89.9)
	require.True(t, ok)
	assert.Equal(t, "Pemiscot", c.Name)

	// Inside the hole counts as outside.
	_, ok = idx.Locate(36.25, -89.75)
	assert.False(t, ok)
}

func TestAssign(t *testing.T) {
	t.Parallel()
	idx := testIndex()

	fs := []model.Facility{
		{ID: "1", Latitude: 37.75, Longitude: -91.75, County: "Wrong"},
		{ID: "2", Latitude: 36.1, Longitude: -89.9},
		{ID: "3", Latitude: 40.0, Longitude: -95.0, County: "Kept"},
		{ID: "4"}, // no coordinates
	}

	assigned := idx.Assign(fs)
	assert.Equal(t, 2, assigned)
	assert.Equal(t, "Phelps", fs[0].County)
	assert.Equal(t, "Pemiscot", fs[1].County)
	assert.Equal(t, "Kept", fs[2].County, "unlocated facility keeps its source label")
	assert.Empty(t, fs[3].County)
}

func TestPolygonRings_SplitsParts(t *testing.T) {
	t.Parallel()
	poly := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 3},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
			{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 5, Y: 6}, {X: 5, Y: 5},
		},
	}

	rings := polygonRings(poly)
	require.Len(t, rings, 2)
	assert.Equal(t, []float64{0, 0, 1, 0, 0, 1}, rings[0])
	assert.Len(t, rings[1], 8)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load("/nonexistent/counties.shp", MissouriFIPS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "county: open shapefile")
}
