package geocode

import (
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// newTestLimiter returns a limiter that never blocks.
func newTestLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// newSplitClient routes requests to per-upstream test servers so handlers can
// stand in for the Census and Google APIs without touching the network. Keys
// are upstream URL prefixes, values the test server to redirect to.
func newSplitClient(routes map[string]string) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			orig := req.URL.String()
			for prefix, server := range routes {
				if !strings.HasPrefix(orig, prefix) {
					continue
				}
				redirected := req.Clone(req.Context())
				parsed, err := req.URL.Parse(server + orig[len(prefix):])
				if err != nil {
					return nil, err
				}
				redirected.URL = parsed
				redirected.Host = parsed.Host
				return http.DefaultTransport.RoundTrip(redirected)
			}
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

// newRewriteClient redirects a single upstream prefix to a test server.
func newRewriteClient(testServerURL, targetPrefix string) *http.Client {
	return newSplitClient(map[string]string{targetPrefix: testServerURL})
}
