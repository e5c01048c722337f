package resilience

import "time"

// ForProvider builds the retry policy for one geocoding provider from
// configuration. Non-positive values keep the defaults.
func ForProvider(name string, maxAttempts int, initialBackoff time.Duration) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if initialBackoff > 0 {
		cfg.InitialBackoff = initialBackoff
	}
	cfg.OnRetry = RetryLogger(name)
	return cfg
}
