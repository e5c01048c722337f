package cachestore

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/property-zones/pkg/geocode"
)

// RedisStore keeps the cache in one Redis hash: field is the query, value is
// "lat,lon" or empty for a negative entry.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedis connects to addr and pings it.
func NewRedis(ctx context.Context, addr, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, eris.Wrapf(err, "cachestore: redis ping %s", addr)
	}
	return &RedisStore{client: client, key: key}, nil
}

// Load implements geocode.CacheStore. Malformed values are skipped with a
// warning so one bad field cannot block a run.
func (s *RedisStore) Load(ctx context.Context) (*geocode.Cache, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, eris.Wrapf(err, "cachestore: redis HGETALL %s", s.key)
	}

	cache := geocode.NewCache()
	for q, v := range fields {
		entry, err := parseRedisValue(v)
		if err != nil {
			zap.L().Warn("cachestore: skipping malformed redis entry",
				zap.String("query", q), zap.String("value", v), zap.Error(err))
			continue
		}
		cache.Put(q, entry)
	}
	return cache, nil
}

// Save replaces the hash atomically with MULTI/EXEC.
func (s *RedisStore) Save(ctx context.Context, cache *geocode.Cache) error {
	if cache == nil {
		return eris.New("cachestore: nil cache")
	}

	values := make(map[string]any, cache.Len())
	for _, r := range records(cache) {
		values[r.Q] = formatRedisValue(r)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values)
		}
		return nil
	})
	return eris.Wrapf(err, "cachestore: redis save %s", s.key)
}

// Close implements geocode.CacheStore.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func formatRedisValue(r record) string {
	if r.Lat == nil || r.Lon == nil {
		return ""
	}
	return strconv.FormatFloat(*r.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(*r.Lon, 'f', -1, 64)
}

func parseRedisValue(v string) (geocode.Entry, error) {
	if v == "" {
		return geocode.NegativeEntry(), nil
	}
	latStr, lonStr, ok := strings.Cut(v, ",")
	if !ok {
		return geocode.Entry{}, eris.Errorf("cachestore: want lat,lon, got %q", v)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return geocode.Entry{}, eris.Wrap(err, "cachestore: parse lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return geocode.Entry{}, eris.Wrap(err, "cachestore: parse lon")
	}
	return geocode.PositiveEntry(lat, lon), nil
}
