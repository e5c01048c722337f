package pipeline

import (
	"github.com/sells-group/property-zones/internal/config"
	"github.com/sells-group/property-zones/internal/resilience"
	"github.com/sells-group/property-zones/pkg/geocode"
)

// BuildTiers returns the provider tiers described by cfg: the free primary
// (Nominatim or Census) followed by the Google backup. The backup is always
// present; without an API key it reports itself unavailable and is skipped.
func BuildTiers(cfg config.GeocodeConfig) []geocode.Tier {
	common := []geocode.Option{
		geocode.WithTimeout(cfg.Timeout),
		geocode.WithCountry(cfg.Country),
		geocode.WithUserAgent(cfg.UserAgent),
	}

	var primary geocode.Provider
	switch cfg.Primary {
	case config.PrimaryCensus:
		primary = geocode.NewCensusProvider(append(common,
			geocode.WithMinDelay(cfg.MinDelay),
			geocode.WithBaseURL(cfg.CensusURL),
			geocode.WithRetry(resilience.ForProvider("census", cfg.MaxAttempts, 0)),
		)...)
	default:
		primary = geocode.NewNominatimProvider(append(common,
			geocode.WithMinDelay(cfg.MinDelay),
			geocode.WithBaseURL(cfg.NominatimURL),
			geocode.WithRetry(resilience.ForProvider("nominatim", cfg.MaxAttempts, 0)),
		)...)
	}

	backup := geocode.NewGoogleProvider(cfg.GoogleAPIKey, append(common,
		geocode.WithBaseURL(cfg.GoogleURL),
		geocode.WithRetry(resilience.ForProvider("google", cfg.MaxAttempts, 0)),
	)...)

	return []geocode.Tier{
		{Method: geocode.MethodPrimary, Provider: primary},
		{Method: geocode.MethodBackup, Provider: backup},
	}
}

// NewResolver builds a Resolver over BuildTiers(cfg) with the configured
// country and negative-cache policy.
func NewResolver(cfg config.GeocodeConfig, opts ...geocode.ResolverOption) *geocode.Resolver {
	base := []geocode.ResolverOption{
		geocode.WithQueryCountry(cfg.Country),
		geocode.WithRetryNegative(cfg.RetryNegative),
	}
	return geocode.NewResolver(BuildTiers(cfg), append(base, opts...)...)
}
