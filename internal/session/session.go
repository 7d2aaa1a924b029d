// Package session holds the state of one acquire session: the global resolver and
// the set of active artifacts.
//
// A Session is passed explicitly to whoever needs it. Reads go through *Session; the
// only way to change the active set is the *Writer returned alongside it by New,
// which is handed to the activation orchestrator alone.
package session

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/resolver"
)

// Repository persists active artifacts across invocations.
type Repository interface {
	Save(ctx context.Context, sessionID string, a artifact.ActiveArtifact) error
	List(ctx context.Context, sessionID string) ([]artifact.ActiveArtifact, error)
	Clear(ctx context.Context, sessionID string) error
	Close() error
}

// Config configures a new session.
type Config struct {
	// ID names the session. Empty means a fresh random id.
	ID             string
	GlobalResolver *resolver.Resolver
	// Repository is optional; without it the active set lives in memory only.
	Repository Repository
}

// Session is the read side of the session state.
type Session struct {
	id     string
	global *resolver.Resolver
	repo   Repository

	mu     sync.RWMutex
	active map[string]artifact.ActiveArtifact
}

// Writer is the capability to mutate the active set.
type Writer struct {
	s *Session
}

// New creates an empty session and its writer.
func New(cfg Config) (*Session, *Writer) {
	id := cfg.ID
	if id == "" {
		id = NewID()
	}
	global := cfg.GlobalResolver
	if global == nil {
		global = resolver.New(0)
	}
	s := &Session{
		id:     id,
		global: global,
		repo:   cfg.Repository,
		active: make(map[string]artifact.ActiveArtifact),
	}
	return s, &Writer{s: s}
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

func (s *Session) ID() string { return s.id }

// GlobalResolver returns the resolver built from global configuration.
func (s *Session) GlobalResolver() *resolver.Resolver { return s.global }

// Persistent reports whether activations outlive the process.
func (s *Session) Persistent() bool { return s.repo != nil }

// Active returns the active entry for name.
func (s *Session) Active(name string) (artifact.ActiveArtifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.active[name]
	return a, ok
}

// ActiveArtifacts returns every active artifact sorted by name.
func (s *Session) ActiveArtifacts() []artifact.ActiveArtifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]artifact.ActiveArtifact, 0, len(s.active))
	for _, a := range s.active {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b artifact.ActiveArtifact) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Len returns the number of active artifacts.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}

// Session returns the session this writer mutates.
func (w *Writer) Session() *Session { return w.s }

// Put records a as active, replacing any entry with the same name. With a repository
// the entry is persisted first; on failure the in-memory set is unchanged.
func (w *Writer) Put(ctx context.Context, a artifact.ActiveArtifact) error {
	if a.Name == "" {
		return fmt.Errorf("put active artifact: empty name")
	}
	if w.s.repo != nil {
		if err := w.s.repo.Save(ctx, w.s.id, a); err != nil {
			return fmt.Errorf("persist %s: %w", a.ID(), err)
		}
	}

	w.s.mu.Lock()
	prev, replaced := w.s.active[a.Name]
	w.s.active[a.Name] = a
	w.s.mu.Unlock()

	if replaced {
		log.Debug(log.CatSession, "replaced active artifact", "session", w.s.id, "from", prev.ID(), "to", a.ID())
	} else {
		log.Debug(log.CatSession, "added active artifact", "session", w.s.id, "artifact", a.ID())
	}
	return nil
}

// Load replaces the in-memory active set with the repository's. Without a repository
// it does nothing.
func (w *Writer) Load(ctx context.Context) error {
	if w.s.repo == nil {
		return nil
	}
	stored, err := w.s.repo.List(ctx, w.s.id)
	if err != nil {
		return fmt.Errorf("load session %s: %w", w.s.id, err)
	}

	active := make(map[string]artifact.ActiveArtifact, len(stored))
	for _, a := range stored {
		active[a.Name] = a
	}
	w.s.mu.Lock()
	w.s.active = active
	w.s.mu.Unlock()

	log.Debug(log.CatSession, "loaded session", "session", w.s.id, "active", len(active))
	return nil
}

// Clear empties the active set, in the repository too when there is one.
func (w *Writer) Clear(ctx context.Context) error {
	if w.s.repo != nil {
		if err := w.s.repo.Clear(ctx, w.s.id); err != nil {
			return fmt.Errorf("clear session %s: %w", w.s.id, err)
		}
	}
	w.s.mu.Lock()
	w.s.active = make(map[string]artifact.ActiveArtifact)
	w.s.mu.Unlock()
	return nil
}
