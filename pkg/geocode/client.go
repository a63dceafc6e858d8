// Package geocode resolves street addresses to coordinates via the Census
// Geocoder (primary) and Google (fallback). The Census geographies endpoint
// also returns the containing county, which downstream analysis uses.
package geocode

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client geocodes addresses.
type Client interface {
	// Geocode geocodes a single address.
	Geocode(ctx context.Context, addr AddressInput) (*Result, error)

	// BatchGeocode geocodes multiple addresses.
	BatchGeocode(ctx context.Context, addrs []AddressInput) ([]Result, error)
}

// AddressInput represents an address to geocode.
type AddressInput struct {
	ID      string // Optional identifier for batch correlation
	Street  string
	City    string
	State   string
	ZipCode string
}

// Result holds the geocoding output for an address.
type Result struct {
	Latitude   float64
	Longitude  float64
	Source     string // "census" or "google"
	Quality    string // "rooftop", "range", "centroid", "approximate"
	CountyFIPS string // 5-digit state+county FIPS, census matches only
	CountyName string
	Matched    bool
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithGoogleAPIKey enables Google Geocoding API as a fallback.
func WithGoogleAPIKey(key string) Option {
	return func(g *geocoder) {
		g.googleKey = key
	}
}

// WithHTTPClient sets a custom HTTP client for both Census and Google requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit for upstream calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithDefaultState fills in the state for addresses that omit it. The CMS
// and HRSA extracts frequently carry city and ZIP but no state column.
func WithDefaultState(state string) Option {
	return func(g *geocoder) {
		g.defaultState = state
	}
}

type geocoder struct {
	httpClient   *http.Client
	googleKey    string
	defaultState string
	limiter      *rate.Limiter
}

// NewClient creates a new geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(50, 50), // Census default: 50 req/s
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *geocoder) fillDefaults(addr AddressInput) AddressInput {
	if addr.State == "" {
		addr.State = g.defaultState
	}
	return addr
}

// Geocode geocodes a single address, trying Census first, then Google if configured.
func (g *geocoder) Geocode(ctx context.Context, addr AddressInput) (*Result, error) {
	addr = g.fillDefaults(addr)

	result, censusErr := g.geocodeCensus(ctx, addr)
	if censusErr == nil && result.Matched {
		return result, nil
	}

	if g.googleKey != "" {
		googleResult, googleErr := g.geocodeGoogle(ctx, addr)
		if googleErr == nil && googleResult.Matched {
			return googleResult, nil
		}
	}

	// No match from any provider. Not an error, just unmatched.
	return &Result{Matched: false}, nil
}

// BatchGeocode geocodes multiple addresses using the Census batch API,
// falling back to Google for individual unmatched addresses.
func (g *geocoder) BatchGeocode(ctx context.Context, addrs []AddressInput) ([]Result, error) {
	if len(addrs) == 0 {
		return nil, nil
	}

	for i := range addrs {
		if addrs[i].ID == "" {
			addrs[i].ID = fmt.Sprintf("%d", i)
		}
		addrs[i] = g.fillDefaults(addrs[i])
	}

	results, err := g.batchGeocodeCensus(ctx, addrs)
	if err != nil {
		// Batch endpoint down; geocode one at a time.
		results = make([]Result, len(addrs))
		for i, addr := range addrs {
			r, geocodeErr := g.Geocode(ctx, addr)
			if geocodeErr != nil {
				results[i] = Result{Matched: false}
				continue
			}
			results[i] = *r
		}
		return results, nil
	}

	if g.googleKey != "" {
		for i, r := range results {
			if !r.Matched {
				googleResult, googleErr := g.geocodeGoogle(ctx, addrs[i])
				if googleErr == nil && googleResult.Matched {
					results[i] = *googleResult
				}
			}
		}
	}

	return results, nil
}
