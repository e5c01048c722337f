package cachestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-zones/pkg/geocode"
)

func TestCSVStore_MissingFileIsEmpty(t *testing.T) {
	s := NewCSV(filepath.Join(t.TempDir(), "missing.csv"))
	c, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCSVStore_EmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	c, err := NewCSV(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCSVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "geocode_cache.csv")
	s := NewCSV(path)

	want := sampleCache()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assertSameCache(t, want, got)
}

func TestCSVStore_FileFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.csv")

	c := geocode.NewCache()
	c.Put("B, USA", geocode.NegativeEntry())
	c.Put("A, USA", geocode.PositiveEntry(29.5, -98.4))
	require.NoError(t, NewCSV(path).Save(ctx, c))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "q,lat,lon\n\"A, USA\",29.5,-98.4\n\"B, USA\",,\n", string(data))
}

func TestCSVStore_ReadsHandWrittenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.csv")
	require.NoError(t, os.WriteFile(path, []byte("q,lat,lon\n\"1 ALAMO PLZ, USA\",29.4259,-98.4861\nBAD ADDR,,\n"), 0o644))

	c, err := NewCSV(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	e, ok := c.Get("1 ALAMO PLZ, USA")
	require.True(t, ok)
	assert.InDelta(t, 29.4259, *e.Lat, 1e-9)

	e, ok = c.Get("BAD ADDR")
	require.True(t, ok)
	assert.True(t, e.Negative())
}

func TestCSVStore_SaveIsWholesale(t *testing.T) {
	ctx := context.Background()
	s := NewCSV(filepath.Join(t.TempDir(), "cache.csv"))
	require.NoError(t, s.Save(ctx, sampleCache()))

	smaller := geocode.NewCache()
	smaller.Put("ONLY, USA", geocode.PositiveEntry(1, 2))
	require.NoError(t, s.Save(ctx, smaller))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ONLY, USA"}, got.Keys())
}

func TestCSVStore_SaveEmptyWritesHeader(t *testing.T) {
	ctx := context.Background()
	s := NewCSV(filepath.Join(t.TempDir(), "cache.csv"))
	require.NoError(t, s.Save(ctx, geocode.NewCache()))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestCSVStore_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.csv")
	require.NoError(t, os.WriteFile(path, []byte("q,lat,lon\nX,north,south\n"), 0o644))

	_, err := NewCSV(path).Load(context.Background())
	assert.Error(t, err)
}

func TestCSVStore_NilCache(t *testing.T) {
	assert.Error(t, NewCSV(filepath.Join(t.TempDir(), "c.csv")).Save(context.Background(), nil))
}
