package cachestore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-zones/pkg/geocode"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	st, err := NewRedis(context.Background(), mr.Addr(), DefaultRedisKey)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st, mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestRedisStore(t)

	want := sampleCache()
	require.NoError(t, st.Save(ctx, want))

	assert.Equal(t, "29.5,-98.4", mr.HGet(DefaultRedisKey, "100 MAIN ST, SAN ANTONIO, TX, USA"))
	assert.Equal(t, "", mr.HGet(DefaultRedisKey, "NOWHERE, USA"))

	got, err := st.Load(ctx)
	require.NoError(t, err)
	assertSameCache(t, want, got)
}

func TestRedisStore_SaveReplacesHash(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestRedisStore(t)
	require.NoError(t, st.Save(ctx, sampleCache()))

	next := geocode.NewCache()
	next.Put("ONLY, USA", geocode.PositiveEntry(1, 2))
	require.NoError(t, st.Save(ctx, next))

	keys, err := mr.HKeys(DefaultRedisKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"ONLY, USA"}, keys)
}

func TestRedisStore_SaveEmptyDeletesKey(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestRedisStore(t)
	require.NoError(t, st.Save(ctx, sampleCache()))
	require.NoError(t, st.Save(ctx, geocode.NewCache()))

	assert.False(t, mr.Exists(DefaultRedisKey))
	c, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestRedisStore_SkipsMalformed(t *testing.T) {
	st, mr := newTestRedisStore(t)
	mr.HSet(DefaultRedisKey, "GOOD, USA", "29.4,-98.5")
	mr.HSet(DefaultRedisKey, "BAD, USA", "not-a-pair")

	c, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"GOOD, USA"}, c.Keys())
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := NewRedis(context.Background(), "127.0.0.1:1", DefaultRedisKey)
	assert.Error(t, err)
}

func TestParseRedisValue(t *testing.T) {
	e, err := parseRedisValue("")
	require.NoError(t, err)
	assert.True(t, e.Negative())

	e, err = parseRedisValue("29.5,-98.4")
	require.NoError(t, err)
	assert.InDelta(t, -98.4, *e.Lon, 1e-9)

	_, err = parseRedisValue("29.5")
	assert.Error(t, err)
	_, err = parseRedisValue("x,1")
	assert.Error(t, err)
}
