// Package geocode resolves free-text property addresses to coordinates using a
// cache in front of an ordered list of providers (a free, rate-limited primary
// and an optional paid backup).
package geocode

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/sells-group/property-zones/internal/resilience"
)

// AddressRecord is one input row as delivered by ingestion. All fields are optional.
type AddressRecord struct {
	Address string
	City    string
	State   string
	Zip     string
}

// Result holds the output of a single provider call.
type Result struct {
	Latitude  float64
	Longitude float64
	Source    string // "nominatim", "census" or "google"
	Quality   string // "rooftop", "range", "centroid", "approximate"
	Matched   bool
}

// Method records which resolution tier satisfied a row.
type Method string

// Resolution methods.
const (
	MethodCache   Method = "cache"
	MethodPrimary Method = "primary"
	MethodBackup  Method = "backup"
	MethodFailed  Method = "failed"
)

// ResolvedPoint is an AddressRecord with its (optional) coordinate and the
// tier that produced it. Created once per input row; never mutated afterwards.
type ResolvedPoint struct {
	Record AddressRecord
	Query  string
	Lat    *float64
	Lon    *float64
	Method Method
}

// Resolved reports whether the point carries a coordinate.
func (p ResolvedPoint) Resolved() bool {
	return p.Lat != nil && p.Lon != nil
}

// Coords returns the coordinate and whether it is present.
func (p ResolvedPoint) Coords() (lat, lon float64, ok bool) {
	if !p.Resolved() {
		return 0, 0, false
	}
	return *p.Lat, *p.Lon, true
}

const defaultTimeout = 10 * time.Second

// DefaultMinDelay is the spacing the free providers use unless overridden.
const DefaultMinDelay = time.Second

// Option configures an HTTP-backed provider.
type Option func(*httpProvider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *httpProvider) {
		p.httpClient = hc
	}
}

// WithTimeout sets the per-call HTTP timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(p *httpProvider) {
		if d > 0 {
			p.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithMinDelay sets the minimum delay between consecutive calls. Zero or
// negative disables throttling.
func WithMinDelay(d time.Duration) Option {
	return func(p *httpProvider) {
		p.limiter = newMinDelayLimiter(d)
	}
}

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(u string) Option {
	return func(p *httpProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithCountry restricts results to a single ISO 3166-1 alpha-2 country.
func WithCountry(code string) Option {
	return func(p *httpProvider) {
		if code != "" {
			p.country = code
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(p *httpProvider) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// WithRetry sets the retry policy for transient provider failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(p *httpProvider) {
		p.retry = cfg
	}
}

// newMinDelayLimiter allows one call per d with no burst, so consecutive calls
// are spaced at least d apart.
func newMinDelayLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}
