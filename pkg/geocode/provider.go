package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/property-zones/internal/resilience"
)

// Provider represents a single geocoding backend. Implementations map a
// GeoQuery to a Result; a nil error with Matched=false means "no match".
type Provider interface {
	Name() string
	Geocode(ctx context.Context, query string) (*Result, error)
	Available() bool
}

// httpProvider holds what every HTTP-backed provider shares: client, throttle,
// endpoint, country restriction and retry policy.
type httpProvider struct {
	name       string
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	country    string
	userAgent  string
	retry      resilience.RetryConfig
}

func newHTTPProvider(name, baseURL string, opts []Option) httpProvider {
	p := httpProvider{
		name:       name,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    newMinDelayLimiter(0),
		baseURL:    baseURL,
		country:    DefaultCountry,
		userAgent:  "property-zones/1.0",
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// countryLower returns the configured country restriction as a lowercase code.
func (p *httpProvider) countryLower() string {
	return strings.ToLower(p.country)
}

// getJSON issues a throttled GET against reqURL and decodes the body into out.
// 429 and 5xx responses are marked transient and retried per the retry policy.
func (p *httpProvider) getJSON(ctx context.Context, reqURL string, out any) error {
	return resilience.Do(ctx, p.retry, func(ctx context.Context) error {
		if err := p.limiter.Wait(ctx); err != nil {
			return eris.Wrapf(err, "geocode: %s rate limit", p.name)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrapf(err, "geocode: %s build request", p.name)
		}
		req.Header.Set("User-Agent", p.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return eris.Wrapf(err, "geocode: %s request", p.name)
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			statusErr := eris.Errorf("geocode: %s returned status %d", p.name, resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return resilience.NewTransientError(statusErr, resp.StatusCode)
			}
			return statusErr
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrapf(err, "geocode: %s read body", p.name)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return eris.Wrapf(err, "geocode: %s parse response", p.name)
		}
		return nil
	})
}
