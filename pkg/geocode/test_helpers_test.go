package geocode

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
)

// newRewriteClient creates an HTTP client that rewrites requests to a test server URL.
// All requests matching the target prefix are redirected to the test server.
func newRewriteClient(testServerURL, targetPrefix string) *http.Client {
	return &http.Client{
		Transport: &multiRewriteTransport{
			base:     http.DefaultTransport,
			rewrites: map[string]string{targetPrefix: testServerURL},
		},
	}
}

// multiRewriteTransport rewrites URLs based on a prefix map.
type multiRewriteTransport struct {
	base     http.RoundTripper
	rewrites map[string]string
}

func (t *multiRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	origURL := req.URL.String()
	for prefix, testURL := range t.rewrites {
		if strings.HasPrefix(origURL, prefix) {
			newURL := testURL + origURL[len(prefix):]
			newReq := req.Clone(req.Context())
			parsed, err := req.URL.Parse(newURL)
			if err != nil {
				return nil, err
			}
			newReq.URL = parsed
			newReq.Host = parsed.Host
			return t.base.RoundTrip(newReq)
		}
	}
	return t.base.RoundTrip(req)
}

// mockProvider implements Provider for testing tier behavior.
type mockProvider struct {
	name      string
	available bool
	result    *Result
	err       error
	calls     atomic.Int32
	queries   []string
}

func (m *mockProvider) Name() string    { return m.name }
func (m *mockProvider) Available() bool { return m.available }
func (m *mockProvider) Geocode(_ context.Context, q string) (*Result, error) {
	m.calls.Add(1)
	m.queries = append(m.queries, q)
	return m.result, m.err
}

func matched(lat, lon float64) *Result {
	return &Result{Matched: true, Latitude: lat, Longitude: lon, Quality: "rooftop"}
}

// cancelingProvider cancels the batch context while a lookup for target is
// in flight and then waits for the cancellation to land, like an HTTP call
// aborted by Ctrl-C.
type cancelingProvider struct {
	target string
	cancel context.CancelFunc
	calls  atomic.Int32
}

func (p *cancelingProvider) Name() string    { return "canceling" }
func (p *cancelingProvider) Available() bool { return true }
func (p *cancelingProvider) Geocode(ctx context.Context, q string) (*Result, error) {
	p.calls.Add(1)
	if q != p.target {
		return matched(29.5, -98.4), nil
	}
	p.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}
