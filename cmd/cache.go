package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-zones/internal/cachestore"
	"github.com/sells-group/property-zones/pkg/geocode"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the geocode cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached entry counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCacheStore(cmd.Context(), func(st geocode.CacheStore) error {
			return cacheStats(cmd.Context(), st, cmd.OutOrStdout())
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCacheStore(cmd.Context(), func(st geocode.CacheStore) error {
			return cacheClear(cmd.Context(), st, cmd.OutOrStdout())
		})
	},
}

var cacheForgetFailedCmd = &cobra.Command{
	Use:   "forget-failed",
	Short: "Drop negative entries so failed addresses are retried next run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCacheStore(cmd.Context(), func(st geocode.CacheStore) error {
			return cacheForgetFailed(cmd.Context(), st, cmd.OutOrStdout())
		})
	},
}

func withCacheStore(ctx context.Context, fn func(geocode.CacheStore) error) error {
	st, err := cachestore.Open(ctx, cfg.Cache)
	if err != nil {
		return eris.Wrap(err, "open cache store")
	}
	defer st.Close()
	return fn(st)
}

func cacheStats(ctx context.Context, st geocode.CacheStore, w io.Writer) error {
	cache, err := st.Load(ctx)
	if err != nil {
		return err
	}
	if p, ok := st.(interface{ Path() string }); ok {
		if _, err := fmt.Fprintf(w, "path: %s\n", p.Path()); err != nil {
			return err
		}
	}
	pos, neg := cache.Stats()
	_, err = fmt.Fprintf(w, "entries: %d\nresolved: %d\nfailed: %d\n", cache.Len(), pos, neg)
	return err
}

func cacheClear(ctx context.Context, st geocode.CacheStore, w io.Writer) error {
	cache, err := st.Load(ctx)
	if err != nil {
		return err
	}
	n := cache.Len()
	if err := st.Save(ctx, geocode.NewCache()); err != nil {
		return err
	}
	zap.L().Info("cache cleared", zap.Int("removed", n))
	_, err = fmt.Fprintf(w, "removed %d entries\n", n)
	return err
}

func cacheForgetFailed(ctx context.Context, st geocode.CacheStore, w io.Writer) error {
	cache, err := st.Load(ctx)
	if err != nil {
		return err
	}
	n := cache.PruneNegative()
	if n > 0 {
		if err := st.Save(ctx, cache); err != nil {
			return err
		}
	}
	zap.L().Info("negative cache entries dropped", zap.Int("removed", n))
	_, err = fmt.Fprintf(w, "removed %d failed entries\n", n)
	return err
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cacheForgetFailedCmd)
	rootCmd.AddCommand(cacheCmd)
}
