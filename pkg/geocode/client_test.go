package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noMatchBody = `{"result": {"addressMatches": []}}`

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestCompositeClient_CensusSucceeds_NoGoogleCall(t *testing.T) {
	var googleCalled atomic.Int32

	censusSrv := httptest.NewServer(jsonHandler(`{
		"result": {
			"addressMatches": [{
				"coordinates": {"x": -91.5357, "y": 37.6213},
				"matchedAddress": "35629 HIGHWAY 72, SALEM, MO, 65560",
				"geographies": {
					"Counties": [{"GEOID": "29065", "BASENAME": "Dent"}]
				}
			}]
		}
	}`))
	defer censusSrv.Close()

	googleSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		googleCalled.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":37.6,"lng":-91.5},"location_type":"ROOFTOP"}}]}`)
	}))
	defer googleSrv.Close()

	g := &geocoder{
		httpClient: newSplitClient(map[string]string{
			censusOneLineURL: censusSrv.URL,
			googleGeocodeURL: googleSrv.URL,
		}),
		googleKey: "test-key",
		limiter:   newTestLimiter(),
	}

	result, err := g.Geocode(context.Background(), AddressInput{
		Street: "35629 Highway 72", City: "Salem", State: "MO", ZipCode: "65560",
	})
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, "census", result.Source)
	assert.Equal(t, "Dent", result.CountyName)
	assert.Equal(t, int32(0), googleCalled.Load(), "Google should not be called when Census succeeds")
}

func TestCompositeClient_CensusFails_GoogleFallback(t *testing.T) {
	censusSrv := httptest.NewServer(jsonHandler(noMatchBody))
	defer censusSrv.Close()

	googleSrv := httptest.NewServer(jsonHandler(`{
		"status": "OK",
		"results": [{
			"geometry": {
				"location": {"lat": 36.0553, "lng": -89.8295},
				"location_type": "ROOFTOP"
			},
			"address_components": [
				{"long_name": "Missouri", "short_name": "MO", "types": ["administrative_area_level_1", "political"]},
				{"long_name": "Pemiscot County", "short_name": "Pemiscot County", "types": ["administrative_area_level_2", "political"]}
			]
		}]
	}`))
	defer googleSrv.Close()

	g := &geocoder{
		httpClient: newSplitClient(map[string]string{
			censusOneLineURL: censusSrv.URL,
			googleGeocodeURL: googleSrv.URL,
		}),
		googleKey: "test-key",
		limiter:   newTestLimiter(),
	}

	result, err := g.Geocode(context.Background(), AddressInput{
		Street: "201 N Walnut St", City: "Steele", State: "MO",
	})
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, "google", result.Source)
	assert.Equal(t, "rooftop", result.Quality)
	assert.Equal(t, "Pemiscot", result.CountyName)
}

func TestCompositeClient_BothFail_NoMatch(t *testing.T) {
	censusSrv := httptest.NewServer(jsonHandler(noMatchBody))
	defer censusSrv.Close()

	googleSrv := httptest.NewServer(jsonHandler(`{"status": "ZERO_RESULTS", "results": []}`))
	defer googleSrv.Close()

	g := &geocoder{
		httpClient: newSplitClient(map[string]string{
			censusOneLineURL: censusSrv.URL,
			googleGeocodeURL: googleSrv.URL,
		}),
		googleKey: "test-key",
		limiter:   newTestLimiter(),
	}

	result, err := g.Geocode(context.Background(), AddressInput{
		Street: "000 Nowhere", City: "Faketown", State: "MO",
	})
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestCompositeClient_NoGoogleKey_CensusOnly(t *testing.T) {
	censusSrv := httptest.NewServer(jsonHandler(noMatchBody))
	defer censusSrv.Close()

	g := &geocoder{
		httpClient: newRewriteClient(censusSrv.URL, censusOneLineURL),
		limiter:    newTestLimiter(),
		// No googleKey set.
	}

	result, err := g.Geocode(context.Background(), AddressInput{
		Street: "123 Main St", City: "Salem", State: "MO",
	})
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestCompositeClient_DefaultState(t *testing.T) {
	var gotAddress string

	censusSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, noMatchBody)
	}))
	defer censusSrv.Close()

	g := &geocoder{
		httpClient:   newRewriteClient(censusSrv.URL, censusOneLineURL),
		defaultState: "MO",
		limiter:      newTestLimiter(),
	}

	_, err := g.Geocode(context.Background(), AddressInput{
		Street: "615 Main St", City: "New Madrid", ZipCode: "63869",
	})
	require.NoError(t, err)
	assert.Equal(t, "615 Main St, New Madrid, MO, 63869", gotAddress)
}
