package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/property-zones/internal/cachestore"
	"github.com/sells-group/property-zones/internal/config"
	"github.com/sells-group/property-zones/internal/enrich"
	"github.com/sells-group/property-zones/internal/export"
	"github.com/sells-group/property-zones/internal/pipeline"
	"github.com/sells-group/property-zones/pkg/geocode"
)

// pipelineEnv holds the cache store and the pipeline built on it.
type pipelineEnv struct {
	Store    geocode.CacheStore
	Pipeline *pipeline.Pipeline
}

// Close releases the cache store.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline validates c, opens the cache store and builds the Pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context, c *config.Config, opts ...geocode.ResolverOption) (*pipelineEnv, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	st, err := cachestore.Open(ctx, c.Cache)
	if err != nil {
		return nil, eris.Wrap(err, "open cache store")
	}

	p := pipeline.New(pipeline.NewResolver(c.Geocode, opts...), st, pipeline.Options{
		Area:       c.Zones.Area,
		Classifier: c.Zones.Classifier(),
		Reference:  enrich.LoadReference(c.Enrich.ReferencePath),
		Export: export.Options{
			Dir:       c.Output.Dir,
			XLSX:      c.Output.XLSX,
			GeoJSON:   c.Output.GeoJSON,
			Shapefile: c.Output.Shapefile,
		},
	})

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}
