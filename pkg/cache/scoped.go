package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants can share
// one backend without colliding.
//
// Example usage:
//
//	// Keys for one API session
//	sessionKeyer := NewScopedKeyer(NewDefaultKeyer(), "session:3f2a:")
//
//	// Keys shared by every CLI invocation
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RiskKey generates a prefixed key for risk vectors.
func (k *ScopedKeyer) RiskKey(modelHash string, opts RiskKeyOpts) string {
	return k.prefix + k.inner.RiskKey(modelHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(modelHash, opts)
}
