// Package cache stores computed risk results and rendered artifacts keyed by
// content hashes.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the server, and [NullCache] when caching is disabled. Keys come from a
// [Keyer] so that callers never build key strings by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default time-to-live values per entry kind.
const (
	RiskTTL     = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// =============================================================================
// Keys
// =============================================================================

// RiskKeyOpts holds the graph options that change a computed risk vector.
type RiskKeyOpts struct {
	Capacity      int     `json:"capacity,omitempty"`
	DefaultRisk   float64 `json:"default_risk,omitempty"`
	DefaultWeight float64 `json:"default_weight,omitempty"`
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Threshold float64 `json:"threshold,omitempty"`
	Detailed  bool    `json:"detailed,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// RiskKey addresses the risk vector computed for a model.
	RiskKey(modelHash string, opts RiskKeyOpts) string

	// ArtifactKey addresses a rendered artifact of an analyzed model.
	ArtifactKey(modelHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RiskKey returns "risk:" followed by the hash of the model hash and options.
func (DefaultKeyer) RiskKey(modelHash string, opts RiskKeyOpts) string {
	return hashKey("risk", modelHash, opts)
}

// ArtifactKey returns "artifact:" followed by the hash of the model hash and
// options.
func (DefaultKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", modelHash, opts)
}
