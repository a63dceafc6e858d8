package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// googleGeocodeResponse is the JSON response from the Google Geocoding API.
type googleGeocodeResponse struct {
	Results []googleResult `json:"results"`
	Status  string         `json:"status"`
}

type googleResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		LocationType string `json:"location_type"`
	} `json:"geometry"`
	AddressComponents []googleAddressComponent `json:"address_components"`
	PartialMatch      bool                     `json:"partial_match"`
}

type googleAddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// geocodeGoogle is the fallback for addresses the Census geocoder cannot
// match, typically PO boxes and rural-route addresses in the enrollment
// extracts. The request is constrained to the address's state so a fuzzy
// match cannot resolve a Missouri clinic to a same-named street elsewhere.
func (g *geocoder) geocodeGoogle(ctx context.Context, addr AddressInput) (*Result, error) {
	if g.googleKey == "" {
		return nil, eris.New("geocode: google api key not configured")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: google rate limit")
	}

	components := []string{"country:US"}
	if addr.State != "" {
		components = append(components, "administrative_area:"+addr.State)
	}
	params := url.Values{
		"address":    {formatOneLine(addr)},
		"components": {strings.Join(components, "|")},
		"key":        {g.googleKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleGeocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: google build request")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: google request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: google returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: google read body")
	}

	var googleResp googleGeocodeResponse
	if err := json.Unmarshal(body, &googleResp); err != nil {
		return nil, eris.Wrap(err, "geocode: google parse response")
	}

	if googleResp.Status != "OK" || len(googleResp.Results) == 0 {
		return &Result{Matched: false, Source: "google"}, nil
	}

	best := googleResp.Results[0]
	state, county := googleAdminAreas(best.AddressComponents)

	// The components filter is only a bias. A hit that resolved into another
	// state is a miscode, not a usable fallback.
	if addr.State != "" && state != "" && !strings.EqualFold(state, addr.State) {
		return &Result{Matched: false, Source: "google"}, nil
	}

	quality := googleLocationTypeToQuality(best.Geometry.LocationType)
	if best.PartialMatch {
		quality = "approximate"
	}

	return &Result{
		Latitude:   best.Geometry.Location.Lat,
		Longitude:  best.Geometry.Location.Lng,
		Source:     "google",
		Quality:    quality,
		CountyName: county,
		Matched:    true,
	}, nil
}

// googleAdminAreas pulls the state and county out of the address components.
// Google labels counties administrative_area_level_2 and suffixes the name
// with " County", which the facility records do not carry.
func googleAdminAreas(components []googleAddressComponent) (state, county string) {
	for _, c := range components {
		for _, typ := range c.Types {
			switch typ {
			case "administrative_area_level_1":
				state = c.ShortName
			case "administrative_area_level_2":
				county = strings.TrimSuffix(c.LongName, " County")
			}
		}
	}
	return state, county
}

// googleLocationTypeToQuality maps Google's location_type to the quality
// taxonomy the Census paths use. Anything unrecognized is approximate.
func googleLocationTypeToQuality(locType string) string {
	switch strings.ToUpper(locType) {
	case "ROOFTOP":
		return "rooftop"
	case "RANGE_INTERPOLATED":
		return "range"
	case "GEOMETRIC_CENTER":
		return "centroid"
	default:
		return "approximate"
	}
}
