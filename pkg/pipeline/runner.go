package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/riskflow/pkg/cache"
	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeRisk     = "risk"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so that caching behaves identically everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete analyze → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hash, err := ModelHash(opts.Model)
	if err != nil {
		return nil, err
	}
	result := &Result{ModelHash: hash}
	result.Stats.VertexCount = len(opts.Model.Vertices)
	result.Stats.EdgeCount = len(opts.Model.Edges)

	// Stage 1: Analyze
	analyzeStart := time.Now()
	report, paths, hit, err := r.analyze(ctx, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Report = report
	result.Stats.PathCount = paths
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.CacheInfo.AnalyzeHit = hit

	opts.Logger.Info("computed risk",
		"vertices", result.Stats.VertexCount,
		"edges", result.Stats.EdgeCount,
		"cached", hit,
		"duration", result.Stats.AnalyzeTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, hash, report, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// AnalyzeWithCacheInfo computes the risk report of opts.Model with caching
// and returns cache hit info.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, opts Options) (*Report, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	hash, err := ModelHash(opts.Model)
	if err != nil {
		return nil, false, err
	}
	report, _, hit, err := r.analyze(ctx, hash, opts)
	return report, hit, err
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Report, error) {
	report, _, err := r.AnalyzeWithCacheInfo(ctx, opts)
	return report, err
}

func (r *Runner) analyze(ctx context.Context, hash string, opts Options) (*Report, int, bool, error) {
	cacheKey := r.Keyer.RiskKey(hash, opts.RiskKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if report, err := UnmarshalReport(data); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeRisk)
				return report, 0, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "key", cacheKey, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeRisk)
	}

	hooks := observability.Pipeline()
	m := opts.Model

	hooks.OnBuildStart(ctx, len(m.Vertices), len(m.Edges))
	start := time.Now()
	g, err := model.Build(m, opts.GraphOptions())
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, time.Since(start), err)
		return nil, 0, false, err
	}
	paths := g.PathCount()
	hooks.OnBuildComplete(ctx, paths, time.Since(start), nil)
	opts.Logger.Debug("built graph", "paths", paths, "duration", time.Since(start))

	hooks.OnAnalyzeStart(ctx, g.Len())
	start = time.Now()
	report := ReportFromGraph(g, m.Name)
	elapsed := time.Since(start)
	hooks.OnAnalyzeComplete(ctx, g.Len(), elapsed, nil)
	observability.Graph().OnRiskComputed(ctx, "", g.Len(), paths, elapsed)

	if data, err := MarshalReport(report); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.RiskTTL); err != nil {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeRisk, len(data))
		}
	}

	return report, paths, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info. The hit flag is true only when every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, hash string, report *Report, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
				break
			}
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, opts.Model, report, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
