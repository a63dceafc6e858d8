package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoogleTestGeocoder(srvURL string) *geocoder {
	return &geocoder{
		httpClient: newRewriteClient(srvURL, googleGeocodeURL),
		googleKey:  "test-key",
		limiter:    newTestLimiter(),
	}
}

func TestGoogleGeocode_RooftopWithCounty(t *testing.T) {
	var gotComponents string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotComponents = r.URL.Query().Get("components")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"results": [{
				"geometry": {
					"location": {"lat": 37.6213, "lng": -91.5357},
					"location_type": "ROOFTOP"
				},
				"address_components": [
					{"long_name": "Missouri", "short_name": "MO", "types": ["administrative_area_level_1", "political"]},
					{"long_name": "Dent County", "short_name": "Dent County", "types": ["administrative_area_level_2", "political"]}
				]
			}]
		}`)
	}))
	defer srv.Close()

	result, err := newGoogleTestGeocoder(srv.URL).geocodeGoogle(context.Background(), AddressInput{
		Street: "35629 Highway 72", City: "Salem", State: "MO", ZipCode: "65560",
	})
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.InDelta(t, 37.6213, result.Latitude, 0.0001)
	assert.InDelta(t, -91.5357, result.Longitude, 0.0001)
	assert.Equal(t, "google", result.Source)
	assert.Equal(t, "rooftop", result.Quality)
	assert.Equal(t, "Dent", result.CountyName)
	assert.Equal(t, "country:US|administrative_area:MO", gotComponents)
}

func TestGoogleGeocode_RejectsOutOfStateHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"results": [{
				"geometry": {
					"location": {"lat": 36.3729, "lng": -89.6787},
					"location_type": "ROOFTOP"
				},
				"address_components": [
					{"long_name": "Tennessee", "short_name": "TN", "types": ["administrative_area_level_1", "political"]}
				]
			}]
		}`)
	}))
	defer srv.Close()

	result, err := newGoogleTestGeocoder(srv.URL).geocodeGoogle(context.Background(), AddressInput{
		Street: "100 Main St", City: "Steele", State: "MO",
	})
	require.NoError(t, err)
	assert.False(t, result.Matched, "a hit resolved into another state must not be used")
}

func TestGoogleGeocode_PartialMatchDowngraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"results": [{
				"geometry": {
					"location": {"lat": 36.7753, "lng": -90.4082},
					"location_type": "ROOFTOP"
				},
				"address_components": [
					{"long_name": "Missouri", "short_name": "MO", "types": ["administrative_area_level_1", "political"]},
					{"long_name": "Butler County", "short_name": "Butler County", "types": ["administrative_area_level_2", "political"]}
				],
				"partial_match": true
			}]
		}`)
	}))
	defer srv.Close()

	result, err := newGoogleTestGeocoder(srv.URL).geocodeGoogle(context.Background(), AddressInput{
		Street: "RR 1 Box 99", City: "Poplar Bluff", State: "MO",
	})
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, "approximate", result.Quality, "partial matches cannot claim rooftop quality")
	assert.Equal(t, "Butler", result.CountyName)
}

func TestGoogleGeocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status": "ZERO_RESULTS", "results": []}`)
	}))
	defer srv.Close()

	result, err := newGoogleTestGeocoder(srv.URL).geocodeGoogle(context.Background(), AddressInput{
		Street: "000 Nonexistent", City: "Nowhere", State: "MO",
	})
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestGoogleGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newGoogleTestGeocoder(srv.URL).geocodeGoogle(context.Background(), AddressInput{
		Street: "123 Main St", City: "Salem", State: "MO",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestGoogleGeocode_NoKey(t *testing.T) {
	g := &geocoder{
		httpClient: http.DefaultClient,
		limiter:    newTestLimiter(),
	}

	_, err := g.geocodeGoogle(context.Background(), AddressInput{
		Street: "123 Main St", City: "Salem", State: "MO",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestGoogleLocationTypeToQuality(t *testing.T) {
	tests := []struct {
		locType  string
		expected string
	}{
		{"ROOFTOP", "rooftop"},
		{"RANGE_INTERPOLATED", "range"},
		{"GEOMETRIC_CENTER", "centroid"},
		{"APPROXIMATE", "approximate"},
		{"UNKNOWN", "approximate"},
		{"", "approximate"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, googleLocationTypeToQuality(tt.locType), "location_type=%s", tt.locType)
	}
}

func TestGoogleAdminAreas(t *testing.T) {
	state, county := googleAdminAreas([]googleAddressComponent{
		{LongName: "Kennett", ShortName: "Kennett", Types: []string{"locality", "political"}},
		{LongName: "Dunklin County", ShortName: "Dunklin County", Types: []string{"administrative_area_level_2", "political"}},
		{LongName: "Missouri", ShortName: "MO", Types: []string{"administrative_area_level_1", "political"}},
	})
	assert.Equal(t, "MO", state)
	assert.Equal(t, "Dunklin", county)

	state, county = googleAdminAreas(nil)
	assert.Empty(t, state)
	assert.Empty(t, county)
}
