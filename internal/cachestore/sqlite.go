package cachestore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/property-zones/pkg/geocode"
)

// SQLiteStore keeps the cache in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	q   TEXT PRIMARY KEY,
	lat REAL,
	lon REAL
);
`

// NewSQLite opens (creating if needed) the database at path, configures WAL
// mode and ensures the cache table exists.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "cachestore: create dir %s", dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cachestore: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "cachestore: sqlite exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "cachestore: sqlite migrate")
	}
	return &SQLiteStore{db: db}, nil
}

// Load implements geocode.CacheStore.
func (s *SQLiteStore) Load(ctx context.Context) (*geocode.Cache, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT q, lat, lon FROM geocode_cache`)
	if err != nil {
		return nil, eris.Wrap(err, "cachestore: sqlite load")
	}
	defer rows.Close() //nolint:errcheck

	cache := geocode.NewCache()
	for rows.Next() {
		var (
			q        string
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&q, &lat, &lon); err != nil {
			return nil, eris.Wrap(err, "cachestore: sqlite scan")
		}
		r := record{Q: q}
		if lat.Valid && lon.Valid {
			r.Lat, r.Lon = &lat.Float64, &lon.Float64
		}
		r.put(cache)
	}
	return cache, eris.Wrap(rows.Err(), "cachestore: sqlite rows")
}

// Save implements geocode.CacheStore.
func (s *SQLiteStore) Save(ctx context.Context, cache *geocode.Cache) error {
	if cache == nil {
		return eris.New("cachestore: nil cache")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "cachestore: sqlite begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM geocode_cache`); err != nil {
		return eris.Wrap(err, "cachestore: sqlite clear")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO geocode_cache (q, lat, lon) VALUES (?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "cachestore: sqlite prepare")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range records(cache) {
		if _, err := stmt.ExecContext(ctx, r.Q, r.Lat, r.Lon); err != nil {
			return eris.Wrapf(err, "cachestore: sqlite insert %q", r.Q)
		}
	}
	return eris.Wrap(tx.Commit(), "cachestore: sqlite commit")
}

// Close implements geocode.CacheStore.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
