// Package session manages live, mutable risk graphs for the API server.
//
// Each session owns one [riskgraph.Graph] plus the metadata the graph itself
// does not keep (vertex metadata, a display name). The engine is not safe for
// concurrent use, so every access goes through [Session.Do], which holds the
// session lock for the duration of the callback.
//
// Sessions expire after a sliding TTL: every successful [Manager.Get]
// extends the deadline. [Manager.Run] sweeps expired sessions in the
// background.
//
// # Usage
//
//	mgr := session.NewManager(session.Options{TTL: time.Hour})
//	sess, err := mgr.Create(m)
//	if err != nil {
//	    return err
//	}
//	err = sess.Do(func(g *riskgraph.Graph[string]) error {
//	    return g.SetEdge("db", "api", 0.5)
//	})
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/riskgraph"
)

// Default limits.
const (
	// DefaultTTL is the idle time after which a session expires.
	DefaultTTL = time.Hour

	// DefaultMaxSessions bounds the number of live sessions.
	DefaultMaxSessions = 1024
)

// Session is one live graph.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu        sync.Mutex
	graph     *riskgraph.Graph[string]
	meta      map[string]map[string]any
	expiresAt time.Time
}

// Do runs fn with exclusive access to the session's graph.
func (s *Session) Do(fn func(g *riskgraph.Graph[string]) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.graph)
}

// SetMeta records metadata for a vertex. A nil meta clears it.
func (s *Session) SetMeta(vertex string, meta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if meta == nil {
		delete(s.meta, vertex)
		return
	}
	s.meta[vertex] = meta
}

// Model snapshots the session's graph.
func (s *Session) Model() *model.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.meta {
		if !s.graph.Has(id) {
			delete(s.meta, id)
		}
	}
	return model.FromGraph(s.graph, s.Name, s.meta)
}

// ExpiresAt returns the current expiry deadline.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *Session) touch(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	s.expiresAt = now.Add(ttl)
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.expiresAt)
}

// =============================================================================
// Manager
// =============================================================================

// Options configures a Manager.
type Options struct {
	TTL         time.Duration
	MaxSessions int

	// Graph is passed to riskgraph.New for every session.
	Graph riskgraph.Options

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Manager owns the set of live sessions.
type Manager struct {
	opts     Options
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager with defaults filled in.
func NewManager(opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{opts: opts, sessions: make(map[string]*Session)}
}

// GraphOptions returns the options every session graph is built with.
func (m *Manager) GraphOptions() riskgraph.Options {
	return m.opts.Graph
}

// Create starts a session. A nil model starts an empty graph; otherwise the
// graph is built from m.
func (m *Manager) Create(src *model.Model) (*Session, error) {
	var (
		g    *riskgraph.Graph[string]
		name string
		meta = make(map[string]map[string]any)
	)
	if src == nil {
		g = riskgraph.New[string](m.opts.Graph)
	} else {
		built, err := model.Build(src, m.opts.Graph)
		if err != nil {
			return nil, err
		}
		g, name = built, src.Name
		for _, v := range src.Vertices {
			if v.Meta != nil {
				meta[v.ID] = v.Meta
			}
		}
	}

	now := m.opts.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		graph:     g,
		meta:      meta,
		expiresAt: now.Add(m.opts.TTL),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.opts.MaxSessions {
		m.sweepLocked(now)
		if len(m.sessions) >= m.opts.MaxSessions {
			return nil, errors.New(errors.ErrCodeCapacityExceeded, "session limit %d reached", m.opts.MaxSessions)
		}
	}
	m.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns a live session and extends its expiry.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	now := m.opts.Now()
	if !ok || sess.expired(now) {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	sess.touch(now, m.opts.TTL)
	return sess, nil
}

// Delete ends a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	delete(m.sessions, id)
	return nil
}

// List returns the live sessions, oldest first.
func (m *Manager) List() []*Session {
	now := m.opts.Now()
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if !s.expired(now) {
			out = append(out, s)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of sessions held, expired or not.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Cleanup removes expired sessions and returns how many were removed.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(m.opts.Now())
}

func (m *Manager) sweepLocked(now time.Time) int {
	n := 0
	for id, s := range m.sessions {
		if s.expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run calls Cleanup every interval until ctx is done. onSweep, if non-nil,
// receives the number of sessions removed by each sweep that removed any.
func (m *Manager) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Cleanup(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
