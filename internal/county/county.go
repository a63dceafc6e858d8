// Package county assigns facilities to counties by point-in-polygon tests
// against TIGER/Line county boundaries.
package county

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/sells-group/facility-atlas/internal/model"
)

// DefaultShapefileURL is the TIGER/Line national county boundary archive.
const DefaultShapefileURL = "https://www2.census.gov/geo/tiger/TIGER2024/COUNTY/tl_2024_us_county.zip"

// MissouriFIPS is the state FIPS code used to filter the national file.
const MissouriFIPS = "29"

// County is one county boundary with its rings stored as flat XY coordinate
// slices. Outer rings and holes are not distinguished; containment uses the
// even-odd rule across all rings.
type County struct {
	GEOID string
	Name  string

	box   shp.Box
	rings [][]float64
}

// Index holds county boundaries for point lookup.
type Index struct {
	counties []County
}

// Load reads county polygons from a TIGER shapefile. When statefp is
// non-empty only counties of that state are kept.
func Load(shpPath, statefp string) (*Index, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "county: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	stateIdx := fieldIndex(reader, "STATEFP")
	geoidIdx := fieldIndex(reader, "GEOID")
	nameIdx := fieldIndex(reader, "NAME")
	if stateIdx < 0 || geoidIdx < 0 || nameIdx < 0 {
		return nil, eris.New("county: required shapefile fields (STATEFP, GEOID, NAME) not found")
	}

	idx := &Index{}
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || len(poly.Points) == 0 {
			continue
		}
		if statefp != "" && strings.TrimSpace(reader.Attribute(stateIdx)) != statefp {
			continue
		}

		idx.counties = append(idx.counties, County{
			GEOID: strings.TrimSpace(reader.Attribute(geoidIdx)),
			Name:  strings.TrimSpace(reader.Attribute(nameIdx)),
			box:   poly.Box,
			rings: polygonRings(poly),
		})
	}

	if len(idx.counties) == 0 {
		return nil, eris.Errorf("county: no county polygons loaded from %s", shpPath)
	}
	zap.L().Info("county boundaries loaded",
		zap.String("path", shpPath),
		zap.Int("counties", len(idx.counties)),
	)
	return idx, nil
}

// polygonRings splits a shapefile polygon into flat XY rings, one per part.
func polygonRings(p *shp.Polygon) [][]float64 {
	parts := make([]int32, 0, p.NumParts+1)
	parts = append(parts, p.Parts...)
	parts = append(parts, int32(len(p.Points)))

	rings := make([][]float64, 0, p.NumParts)
	for i := 0; i+1 < len(parts); i++ {
		ring := make([]float64, 0, 2*(parts[i+1]-parts[i]))
		for _, pt := range p.Points[parts[i]:parts[i+1]] {
			ring = append(ring, pt.X, pt.Y)
		}
		rings = append(rings, ring)
	}
	return rings
}

// Locate returns the county containing the coordinate, or false when the
// point falls outside every loaded county.
func (idx *Index) Locate(lat, lon float64) (County, bool) {
	coord := geom.Coord{lon, lat}
	for _, c := range idx.counties {
		if lon < c.box.MinX || lon > c.box.MaxX || lat < c.box.MinY || lat > c.box.MaxY {
			continue
		}
		if c.contains(coord) {
			return c, true
		}
	}
	return County{}, false
}

// contains applies the even-odd rule: a point inside an odd number of rings
// is inside the polygon, which handles holes and multi-part counties.
func (c County) contains(coord geom.Coord) bool {
	inside := false
	for _, ring := range c.rings {
		if xy.IsPointInRing(geom.XY, coord, ring) {
			inside = !inside
		}
	}
	return inside
}

// Assign fills the County field of every located facility in place. Existing
// county labels from the source files are overwritten; the boundary lookup
// is authoritative. Returns the number of facilities assigned.
func (idx *Index) Assign(facilities []model.Facility) int {
	assigned := 0
	for i := range facilities {
		f := &facilities[i]
		if !f.HasCoordinates() {
			continue
		}
		c, ok := idx.Locate(f.Latitude, f.Longitude)
		if !ok {
			zap.L().Debug("county: facility outside all loaded counties",
				zap.String("facility", f.Name),
				zap.Float64("lat", f.Latitude),
				zap.Float64("lon", f.Longitude),
			)
			continue
		}
		f.County = c.Name
		assigned++
	}
	return assigned
}

// Count returns the number of loaded counties.
func (idx *Index) Count() int { return len(idx.counties) }

func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
