// Package cachestore persists the geocode cache between runs. Every backend
// loads the full cache up front and rewrites it wholesale on save.
package cachestore

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/property-zones/pkg/geocode"
)

// Supported drivers.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Defaults used when a Config field is empty.
const (
	DefaultPath     = "data/geocode_cache.csv"
	DefaultTable    = "geocode_cache"
	DefaultRedisKey = "property-zones:geocode-cache"
)

// Config selects and addresses a backend.
type Config struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	Table       string `yaml:"table" mapstructure:"table"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	RedisAddr   string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisKey    string `yaml:"redis_key" mapstructure:"redis_key"`
}

// Open returns the store named by cfg.Driver. An empty driver means csv.
func Open(ctx context.Context, cfg Config) (geocode.CacheStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverCSV:
		return NewCSV(orDefault(cfg.Path, DefaultPath)), nil
	case DriverSQLite:
		return NewSQLite(ctx, orDefault(cfg.Path, "data/geocode_cache.db"))
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, eris.New("cachestore: postgres driver requires cache.database_url")
		}
		return NewPostgres(ctx, cfg.DatabaseURL, orDefault(cfg.Table, DefaultTable))
	case DriverRedis:
		if cfg.RedisAddr == "" {
			return nil, eris.New("cachestore: redis driver requires cache.redis_addr")
		}
		return NewRedis(ctx, cfg.RedisAddr, orDefault(cfg.RedisKey, DefaultRedisKey))
	default:
		return nil, eris.Errorf("cachestore: unknown driver %q", cfg.Driver)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// record is the row shape shared by the tabular backends. Nil coordinates
// mark a negative entry.
type record struct {
	Q   string   `csv:"q"`
	Lat *float64 `csv:"lat,omitempty"`
	Lon *float64 `csv:"lon,omitempty"`
}

// records flattens c in key order.
func records(c *geocode.Cache) []record {
	keys := c.Keys()
	out := make([]record, 0, len(keys))
	for _, k := range keys {
		e, _ := c.Get(k)
		out = append(out, record{Q: k, Lat: e.Lat, Lon: e.Lon})
	}
	return out
}

// put adds r to c. A row with only one coordinate is treated as negative.
func (r record) put(c *geocode.Cache) {
	if r.Lat == nil || r.Lon == nil {
		c.Put(r.Q, geocode.NegativeEntry())
		return
	}
	c.Put(r.Q, geocode.PositiveEntry(*r.Lat, *r.Lon))
}
