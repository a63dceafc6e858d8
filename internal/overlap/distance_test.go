package overlap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_Symmetric(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"st louis to kansas city", 38.627, -90.199, 39.100, -94.578},
		{"springfield to columbia", 37.209, -93.292, 38.952, -92.334},
		{"equator pair", 0, 0.5, 0, 1.5},
		{"antimeridian", 10, 179.5, 10, -179.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ab := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			ba := Distance(tt.lat2, tt.lon2, tt.lat1, tt.lon1)
			assert.InDelta(t, ab, ba, 1e-9)
		})
	}
}

func TestDistance_SamePointIsZero(t *testing.T) {
	t.Parallel()
	assert.Zero(t, Distance(38.627, -90.199, 38.627, -90.199))
	assert.Zero(t, Distance(0, 0, 0, 0))
	assert.Zero(t, Distance(-45.5, 170.25, -45.5, 170.25))
}

func TestDistance_KnownValues(t *testing.T) {
	t.Parallel()

	// One degree of longitude at the equator: 3959 * pi/180 ≈ 69.097 miles.
	assert.InDelta(t, 69.097, Distance(0, 0, 0, 1), 0.01)

	// One degree of latitude anywhere is the same arc.
	assert.InDelta(t, 69.097, Distance(38, -92, 39, -92), 0.01)

	// St. Louis to Kansas City is roughly 238 miles.
	d := Distance(38.627, -90.199, 39.100, -94.578)
	assert.InDelta(t, 238, d, 5)
}

func TestDistance_TriangleInequality(t *testing.T) {
	t.Parallel()

	// Three points on a rough line near the equator; curvature is negligible
	// at this scale.
	type pt struct{ lat, lon float64 }
	a := pt{0, 0}
	b := pt{0, 0.2}
	c := pt{0, 0.5}

	ab := Distance(a.lat, a.lon, b.lat, b.lon)
	bc := Distance(b.lat, b.lon, c.lat, c.lon)
	ac := Distance(a.lat, a.lon, c.lat, c.lon)

	assert.LessOrEqual(t, ac, ab+bc+1e-9)
}
