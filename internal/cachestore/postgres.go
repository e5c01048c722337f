package cachestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/property-zones/pkg/geocode"
)

// Pool is the subset of pgxpool.Pool used here. pgxmock.PgxPoolIface
// satisfies it in tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore keeps the cache in a shared Postgres table so several
// machines can reuse one cache.
type PostgresStore struct {
	pool  Pool
	table string
}

// NewPostgres connects, pings and ensures the cache table exists. table may
// be schema-qualified.
func NewPostgres(ctx context.Context, connString, table string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "cachestore: postgres parse config")
	}
	pgxCfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "cachestore: postgres create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "cachestore: postgres ping")
	}

	s := &PostgresStore{pool: pool, table: table}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the cache table if it is missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (q TEXT PRIMARY KEY, lat DOUBLE PRECISION, lon DOUBLE PRECISION)`,
		sanitizeTable(s.table),
	))
	return eris.Wrap(err, "cachestore: postgres migrate")
}

// Load implements geocode.CacheStore.
func (s *PostgresStore) Load(ctx context.Context) (*geocode.Cache, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT q, lat, lon FROM %s`, sanitizeTable(s.table)))
	if err != nil {
		return nil, eris.Wrap(err, "cachestore: postgres load")
	}
	defer rows.Close()

	cache := geocode.NewCache()
	for rows.Next() {
		var r record
		if err := rows.Scan(&r.Q, &r.Lat, &r.Lon); err != nil {
			return nil, eris.Wrap(err, "cachestore: postgres scan")
		}
		r.put(cache)
	}
	return cache, eris.Wrap(rows.Err(), "cachestore: postgres rows")
}

// Save clears the table and bulk-loads the cache with COPY inside one
// transaction, so readers see either the old or the new cache.
func (s *PostgresStore) Save(ctx context.Context, cache *geocode.Cache) error {
	if cache == nil {
		return eris.New("cachestore: nil cache")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "cachestore: postgres begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, sanitizeTable(s.table))); err != nil {
		return eris.Wrap(err, "cachestore: postgres clear")
	}

	recs := records(cache)
	if len(recs) > 0 {
		rows := make([][]any, len(recs))
		for i, r := range recs {
			rows[i] = []any{r.Q, r.Lat, r.Lon}
		}
		if _, err := tx.CopyFrom(ctx, identifier(s.table), []string{"q", "lat", "lon"}, pgx.CopyFromRows(rows)); err != nil {
			return eris.Wrapf(err, "cachestore: postgres COPY INTO %s", s.table)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "cachestore: postgres commit")
}

// Close implements geocode.CacheStore.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// identifier splits a possibly schema-qualified table name.
func identifier(table string) pgx.Identifier {
	return pgx.Identifier(strings.SplitN(table, ".", 2))
}

func sanitizeTable(table string) string {
	return identifier(table).Sanitize()
}
