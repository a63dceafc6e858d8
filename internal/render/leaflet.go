package render

import (
	"encoding/json"
	"os"
	"text/template"

	"github.com/rotisserie/eris"

	"github.com/sells-group/facility-atlas/internal/model"
)

// Marker colors by facility category.
var categoryColors = map[model.Category]string{
	model.CategoryHospital: "#d73027",
	model.CategoryRHC:      "#4575b4",
	model.CategoryFQHC:     "#1a9850",
}

const defaultColor = "#888888"

// MapOptions configures the coverage map.
type MapOptions struct {
	Title       string
	CenterLat   float64
	CenterLon   float64
	Zoom        int
	RadiusMiles []float64 // one toggleable circle layer per radius
}

// DefaultMapOptions centers on Missouri with 10, 20 and 30 mile service
// rings.
func DefaultMapOptions() MapOptions {
	return MapOptions{
		Title:       "Facility Coverage",
		CenterLat:   38.5,
		CenterLon:   -92.5,
		Zoom:        7,
		RadiusMiles: []float64{10, 20, 30},
	}
}

const milesToMeters = 1609.344

type mapMarker struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	City     string  `json:"city"`
	System   string  `json:"system"`
	Color    string  `json:"color"`
}

type mapData struct {
	Title       string
	CenterLat   float64
	CenterLon   float64
	Zoom        int
	MarkersJSON string
	RadiiJSON   string // radii in meters
	MarkerCount int
}

// WriteCoverageMap renders a self-contained Leaflet HTML page with one marker
// per located facility and toggleable service-radius circle layers.
func WriteCoverageMap(path string, facilities []model.Facility, opts MapOptions) error {
	markers := make([]mapMarker, 0, len(facilities))
	for _, f := range facilities {
		if !f.HasCoordinates() {
			continue
		}
		color, ok := categoryColors[f.Category]
		if !ok {
			color = defaultColor
		}
		markers = append(markers, mapMarker{
			Lat:      f.Latitude,
			Lon:      f.Longitude,
			Name:     f.Name,
			Category: string(f.Category),
			City:     f.City,
			System:   f.HealthSystem,
			Color:    color,
		})
	}

	radii := make([]float64, 0, len(opts.RadiusMiles))
	for _, m := range opts.RadiusMiles {
		radii = append(radii, m*milesToMeters)
	}

	markersJSON, err := json.Marshal(markers)
	if err != nil {
		return eris.Wrap(err, "render: marshal markers")
	}
	radiiJSON, err := json.Marshal(radii)
	if err != nil {
		return eris.Wrap(err, "render: marshal radii")
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	data := mapData{
		Title:       opts.Title,
		CenterLat:   opts.CenterLat,
		CenterLon:   opts.CenterLon,
		Zoom:        opts.Zoom,
		MarkersJSON: string(markersJSON),
		RadiiJSON:   string(radiiJSON),
		MarkerCount: len(markers),
	}
	if err := mapTemplate.Execute(f, data); err != nil {
		return eris.Wrap(err, "render: execute map template")
	}
	return nil
}

var mapTemplate = template.Must(template.New("coverage").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body, #map { height: 100%; margin: 0; }
  .legend { background: white; padding: 8px 12px; line-height: 1.6; font: 13px sans-serif; border-radius: 4px; box-shadow: 0 1px 4px rgba(0,0,0,.3); }
  .legend i { display: inline-block; width: 10px; height: 10px; border-radius: 50%; margin-right: 6px; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

var markers = {{.MarkersJSON}};
var radii = {{.RadiiJSON}};

var markerLayer = L.layerGroup().addTo(map);
var circleLayers = radii.map(function () { return L.layerGroup(); });

markers.forEach(function (m) {
  L.circleMarker([m.lat, m.lon], {
    radius: 6, color: m.color, fillColor: m.color, fillOpacity: 0.85, weight: 1
  }).bindPopup(
    '<b>' + m.name + '</b><br>' + m.category +
    (m.city ? '<br>' + m.city : '') +
    (m.system ? '<br>' + m.system : '')
  ).addTo(markerLayer);

  radii.forEach(function (r, i) {
    L.circle([m.lat, m.lon], {
      radius: r, color: m.color, weight: 1, fill: false, opacity: 0.25
    }).addTo(circleLayers[i]);
  });
});

var overlays = { 'Facilities ({{.MarkerCount}})': markerLayer };
radii.forEach(function (r, i) {
  overlays[(r / 1609.344).toFixed(0) + ' mile radius'] = circleLayers[i];
});
L.control.layers(null, overlays).addTo(map);

var legend = L.control({ position: 'bottomright' });
legend.onAdd = function () {
  var div = L.DomUtil.create('div', 'legend');
  div.innerHTML =
    '<i style="background:#d73027"></i>Hospital<br>' +
    '<i style="background:#4575b4"></i>RHC<br>' +
    '<i style="background:#1a9850"></i>FQHC';
  return div;
};
legend.addTo(map);
</script>
</body>
</html>
`))
