package geocode

import (
	"context"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoRows is returned by ResolveBatch when there is nothing to resolve.
var ErrNoRows = eris.New("geocode: no rows to resolve")

// Tier is one resolution step: a provider and the method tag recorded when it
// satisfies a row.
type Tier struct {
	Method   Method
	Provider Provider
}

// Summary counts how each row in a batch was resolved.
type Summary struct {
	Total   int `json:"total" yaml:"total"`
	Cache   int `json:"cache" yaml:"cache"`
	Primary int `json:"primary" yaml:"primary"`
	Backup  int `json:"backup" yaml:"backup"`
	Failed  int `json:"failed" yaml:"failed"`
}

func (s *Summary) add(m Method) {
	s.Total++
	switch m {
	case MethodCache:
		s.Cache++
	case MethodPrimary:
		s.Primary++
	case MethodBackup:
		s.Backup++
	default:
		s.Failed++
	}
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithQueryCountry sets the country token appended to every GeoQuery.
func WithQueryCountry(country string) ResolverOption {
	return func(r *Resolver) {
		r.country = country
	}
}

// WithRetryNegative makes negative cache entries count as misses, so queries
// that failed in an earlier run go back to the providers. Each query is still
// sent at most once per batch.
func WithRetryNegative(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.retryNegative = enabled
	}
}

// WithProgress registers a callback invoked after each row.
func WithProgress(fn func(done, total int)) ResolverOption {
	return func(r *Resolver) {
		r.progress = fn
	}
}

// Resolver runs each row through the cache and then the tiers in order,
// stopping at the first match.
type Resolver struct {
	tiers         []Tier
	country       string
	retryNegative bool
	progress      func(done, total int)
}

// NewResolver creates a Resolver over the given tiers, tried in slice order.
func NewResolver(tiers []Tier, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		tiers:   tiers,
		country: DefaultCountry,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tiers returns the configured tiers.
func (r *Resolver) Tiers() []Tier {
	return r.tiers
}

// ResolveBatch resolves rows sequentially, reading and updating cache in
// memory. Persisting the cache is the caller's job. Provider failures never
// surface here: they become MethodFailed rows and negative cache entries.
//
// On context cancellation the rows resolved so far are returned along with
// the error; cache already holds their entries. A lookup cut short by the
// cancellation is not cached, so it is retried on the next run.
func (r *Resolver) ResolveBatch(ctx context.Context, rows []AddressRecord, cache *Cache) ([]ResolvedPoint, Summary, error) {
	var summary Summary
	if len(rows) == 0 {
		return nil, summary, ErrNoRows
	}
	if cache == nil {
		return nil, summary, eris.New("geocode: nil cache")
	}

	log := zap.L().With(zap.String("component", "geocode.resolver"))
	points := make([]ResolvedPoint, 0, len(rows))
	attempted := make(map[string]bool)

	for i, rec := range rows {
		if err := ctx.Err(); err != nil {
			return points, summary, interrupted(err)
		}

		q := BuildQuery(rec, r.country)
		point := ResolvedPoint{Record: rec, Query: q}

		entry, hit := cache.Get(q)
		if hit && entry.Negative() && r.retryNegative && !attempted[q] {
			hit = false
		}

		if hit {
			point.Method = MethodCache
		} else {
			log.Debug("resolving",
				zap.Int("row", i+1),
				zap.Int("total", len(rows)),
				zap.String("query", truncate(q, 50)),
			)
			var err error
			entry, point.Method, err = r.resolveQuery(ctx, q)
			if err != nil {
				return points, summary, interrupted(err)
			}
			cache.Put(q, entry)
			attempted[q] = true
		}

		point.Lat, point.Lon = entry.Lat, entry.Lon
		points = append(points, point)
		summary.add(point.Method)

		if r.progress != nil {
			r.progress(i+1, len(rows))
		}
	}

	log.Info("resolve batch complete",
		zap.Int("total", summary.Total),
		zap.Int("cache", summary.Cache),
		zap.Int("primary", summary.Primary),
		zap.Int("backup", summary.Backup),
		zap.Int("failed", summary.Failed),
	)
	return points, summary, nil
}

// resolveQuery tries each available tier in order and returns the first match.
// It returns ctx.Err() instead of a failed outcome when the context ends
// before a tier matched.
func (r *Resolver) resolveQuery(ctx context.Context, q string) (Entry, Method, error) {
	for _, t := range r.tiers {
		if t.Provider == nil || !t.Provider.Available() {
			continue
		}
		result, err := t.Provider.Geocode(ctx, q)
		if result != nil && result.Matched && err == nil {
			return PositiveEntry(result.Latitude, result.Longitude), t.Method, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Entry{}, MethodFailed, ctxErr
		}
		if err != nil {
			zap.L().Debug("resolver: provider error, trying next",
				zap.String("provider", t.Provider.Name()),
				zap.String("query", truncate(q, 50)),
				zap.Error(err),
			)
		}
	}
	return NegativeEntry(), MethodFailed, nil
}

func interrupted(err error) error {
	return eris.Wrap(err, "geocode: resolve batch interrupted")
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
