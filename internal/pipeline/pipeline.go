// Package pipeline runs a batch end to end: ingest, enrich, geocode, classify
// and export.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/property-zones/internal/enrich"
	"github.com/sells-group/property-zones/internal/export"
	"github.com/sells-group/property-zones/internal/ingest"
	"github.com/sells-group/property-zones/internal/zone"
	"github.com/sells-group/property-zones/pkg/geocode"
)

// Options configures a Pipeline.
type Options struct {
	Area       string
	Classifier zone.Classifier
	Reference  *enrich.Reference
	Export     export.Options
}

// Result is what a completed run produced.
type Result struct {
	Stats      Stats
	Files      []string
	Points     []geocode.ResolvedPoint
	Assignment zone.Assignment
}

// Pipeline drives one batch at a time through the resolver and classifier.
// Runs are serialized because the cache store has no locking of its own.
type Pipeline struct {
	resolver *geocode.Resolver
	store    geocode.CacheStore
	opts     Options

	mu sync.Mutex
}

// New creates a Pipeline. store may be nil, in which case each run starts
// from an empty cache and nothing is persisted.
func New(resolver *geocode.Resolver, store geocode.CacheStore, opts Options) *Pipeline {
	if opts.Export.Area == "" {
		opts.Export.Area = opts.Area
	}
	opts.Export.Classifier = opts.Classifier
	return &Pipeline{resolver: resolver, store: store, opts: opts}
}

// Classifier returns the classifier used for assignment.
func (p *Pipeline) Classifier() zone.Classifier {
	return p.opts.Classifier
}

// RunFile reads path and runs it.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Result, error) {
	tbl, err := ingest.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, tbl)
}

// Run geocodes, classifies and exports tbl. The cache is saved even when the
// run is cancelled mid-batch, so finished lookups are not repeated; no
// outputs are written in that case.
func (p *Pipeline) Run(ctx context.Context, tbl *ingest.Table) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runID := uuid.New().String()
	started := time.Now()
	log := zap.L().With(zap.String("run_id", runID), zap.String("area", p.opts.Area))

	if tbl == nil {
		return nil, eris.New("pipeline: nil table")
	}
	if err := tbl.Validate(); err != nil {
		return nil, err
	}

	enriched := enrich.Apply(tbl, p.opts.Reference)
	if enriched > 0 {
		log.Info("pipeline: enriched rows from reference", zap.Int("matched", enriched))
	}

	cache, err := p.loadCache(ctx)
	if err != nil {
		return nil, err
	}

	rows := tbl.Records()
	providers := make([]string, 0, len(p.resolver.Tiers()))
	for _, t := range p.resolver.Tiers() {
		if t.Provider != nil && t.Provider.Available() {
			providers = append(providers, string(t.Method)+"="+t.Provider.Name())
		}
	}
	log.Info("pipeline: resolving",
		zap.Int("rows", len(rows)),
		zap.Int("cached", cache.Len()),
		zap.Strings("providers", providers),
	)

	points, summary, resolveErr := p.resolver.ResolveBatch(ctx, rows, cache)

	// Persist whatever was learned, including a partial batch.
	if err := p.saveCache(context.WithoutCancel(ctx), cache); err != nil {
		if resolveErr != nil {
			log.Error("pipeline: resolve failed before cache save", zap.Error(resolveErr))
		}
		return nil, err
	}
	if resolveErr != nil {
		log.Warn("pipeline: run interrupted",
			zap.Int("resolved", len(points)),
			zap.Int("total", len(rows)),
			zap.Error(resolveErr),
		)
		return nil, eris.Wrap(resolveErr, "pipeline: run")
	}

	assignment := p.opts.Classifier.AssignBatch(points)

	stats := ComputeStats(points, assignment, summary)
	stats.RunID = runID
	stats.Area = p.opts.Area
	stats.Enriched = enriched
	stats.StartedAt = started.UTC()

	ds := export.Dataset{Table: tbl, Points: points, Assignment: assignment}
	stats.Duration = time.Since(started).Round(time.Millisecond).String()
	files, err := export.Write(ctx, ds, stats, p.opts.Export)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: export")
	}

	log.Info("pipeline: run complete",
		zap.Int("total", stats.Total),
		zap.Int("geocoded", stats.Geocoded),
		zap.Int("zoned", stats.Zoned()),
		zap.Int("unassigned", stats.Unassigned),
		zap.Int("north", stats.North),
		zap.Int("south", stats.South),
		zap.Int("east", stats.East),
		zap.Int("west", stats.West),
		zap.String("duration", stats.Duration),
	)

	return &Result{
		Stats:      stats,
		Files:      files,
		Points:     points,
		Assignment: assignment,
	}, nil
}

func (p *Pipeline) loadCache(ctx context.Context) (*geocode.Cache, error) {
	if p.store == nil {
		return geocode.NewCache(), nil
	}
	cache, err := p.store.Load(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load cache")
	}
	return cache, nil
}

func (p *Pipeline) saveCache(ctx context.Context, cache *geocode.Cache) error {
	if p.store == nil {
		return nil
	}
	return eris.Wrap(p.store.Save(ctx, cache), "pipeline: save cache")
}
