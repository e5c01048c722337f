package cachestore

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/property-zones/pkg/geocode"
)

// CSVStore keeps the cache in a q,lat,lon CSV file. Negative entries are
// written with empty coordinates.
type CSVStore struct {
	path string
}

// NewCSV creates a CSVStore at path. The file need not exist.
func NewCSV(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file.
func (s *CSVStore) Path() string { return s.path }

// Load reads the file. A missing or empty file yields an empty cache.
func (s *CSVStore) Load(_ context.Context) (*geocode.Cache, error) {
	cache := geocode.NewCache()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return cache, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cachestore: read %s", s.path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cache, nil
	}

	var rows []record
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrapf(err, "cachestore: parse %s", s.path)
	}
	for _, r := range rows {
		r.put(cache)
	}
	return cache, nil
}

// Save replaces the file with the full cache contents. The write goes
// through a temp file in the same directory so a crash never leaves a
// truncated cache behind.
func (s *CSVStore) Save(_ context.Context, cache *geocode.Cache) error {
	if cache == nil {
		return eris.New("cachestore: nil cache")
	}

	rows := records(cache)
	var data []byte
	if len(rows) == 0 {
		data = []byte("q,lat,lon\n")
	} else {
		var err error
		data, err = csvutil.Marshal(rows)
		if err != nil {
			return eris.Wrap(err, "cachestore: encode csv")
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "cachestore: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".geocode-cache-*.csv")
	if err != nil {
		return eris.Wrap(err, "cachestore: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "cachestore: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "cachestore: close temp file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return eris.Wrapf(err, "cachestore: replace %s", s.path)
	}
	return nil
}

// Close implements geocode.CacheStore.
func (s *CSVStore) Close() error { return nil }
