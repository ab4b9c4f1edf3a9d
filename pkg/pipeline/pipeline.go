// Package pipeline provides the analysis pipeline for riskflow.
//
// This package implements the complete analyze → render pipeline used by
// both the CLI and the API server. By centralizing this logic, every entry
// point builds graphs, caches results and renders artifacts the same way.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Analyze: Build a risk graph from a model and compute the total risk of
//     every vertex, summarised in a [Report]
//  2. Render: Generate output in various formats (DOT, SVG, PNG, PDF, JSON)
//
// Both stages are cached: reports by the content hash of the model and the
// graph options, artifacts additionally by render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Model:   m,
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/riskflow/pkg/cache"
	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/riskgraph"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats lists the supported output formats in display order.
var ValidFormats = []string{FormatJSON, FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// DefaultPNGScale is the PNG resolution multiplier.
const DefaultPNGScale = 2.0

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Model is the graph to analyze.
	Model *model.Model `json:"model"`

	// Graph options
	Capacity      int     `json:"capacity,omitempty"`
	DefaultRisk   float64 `json:"default_risk,omitempty"`
	DefaultWeight float64 `json:"default_weight,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
	Threshold float64  `json:"threshold,omitempty"`

	// Refresh bypasses cached results. Fresh results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ModelHash is the content hash of the canonical model encoding.
	ModelHash string

	// Report holds the computed risk of every vertex.
	Report *Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	VertexCount int
	EdgeCount   int
	PathCount   int // zero when the report came from cache
	AnalyzeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalyzeHit bool // Whether the report came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)",
			format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Model == nil {
		return errors.New(errors.ErrCodeInvalidInput, "model is required")
	}
	if err := o.Model.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "threshold %v outside [0,1]", o.Threshold)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// GraphOptions returns the engine options for this run. Unset values are
// resolved to the engine defaults so that equivalent runs share cache keys.
func (o *Options) GraphOptions() riskgraph.Options {
	opts := riskgraph.Options{
		Capacity:      o.Capacity,
		DefaultRisk:   o.DefaultRisk,
		DefaultWeight: o.DefaultWeight,
	}
	if opts.Capacity <= 0 {
		opts.Capacity = riskgraph.DefaultCapacity
	}
	if opts.DefaultRisk <= 0 || opts.DefaultRisk > 1 {
		opts.DefaultRisk = riskgraph.DefaultRisk
	}
	if opts.DefaultWeight <= 0 || opts.DefaultWeight > 1 {
		opts.DefaultWeight = riskgraph.DefaultWeight
	}
	return opts
}

// RiskKeyOpts returns cache key options for the analyze stage.
func (o *Options) RiskKeyOpts() cache.RiskKeyOpts {
	g := o.GraphOptions()
	return cache.RiskKeyOpts{
		Capacity:      g.Capacity,
		DefaultRisk:   g.DefaultRisk,
		DefaultWeight: g.DefaultWeight,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		Threshold: o.Threshold,
		Detailed:  o.Detailed,
	}
}

// ModelHash returns the content hash of a model's canonical encoding.
func ModelHash(m *model.Model) (string, error) {
	data, err := model.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("hash model: %w", err)
	}
	return cache.Hash(data), nil
}
