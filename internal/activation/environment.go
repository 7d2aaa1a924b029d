package activation

import (
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/zjrosen/acquire/internal/domain/artifact"
)

// KV is a key/value pair in a Diff.
type KV struct {
	Key   string
	Value string
}

// Diff is what activation changed relative to the environment snapshot.
type Diff struct {
	Set        []KV     // variables added or changed
	Unset      []string // variables present in the snapshot and removed since
	Properties []KV     // build properties
	Tools      []KV     // tool aliases
}

// IsEmpty reports whether nothing changed.
func (d Diff) IsEmpty() bool {
	return len(d.Set) == 0 && len(d.Unset) == 0 && len(d.Properties) == 0 && len(d.Tools) == 0
}

// Environment is the staged process environment activations write to. The
// snapshot taken at construction is never modified; Diff reports the delta.
type Environment struct {
	mu     sync.RWMutex
	sep    string
	base   map[string]string
	vars   map[string]string
	props  map[string]string
	tools  map[string]string
	owners map[string]string // ownership key -> artifact name
}

// NewEnvironment snapshots environ, a list of "KEY=value" strings as returned by
// os.Environ. Malformed entries are ignored.
func NewEnvironment(environ []string) *Environment {
	base := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		base[k] = v
	}
	return &Environment{
		sep:    string(os.PathListSeparator),
		base:   base,
		vars:   maps.Clone(base),
		props:  make(map[string]string),
		tools:  make(map[string]string),
		owners: make(map[string]string),
	}
}

// ProcessEnvironment snapshots the current process environment.
func ProcessEnvironment() *Environment {
	return NewEnvironment(os.Environ())
}

// Separator returns the path list separator.
func (e *Environment) Separator() string { return e.sep }

// Get returns the current value of key.
func (e *Environment) Get(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vars[key]
	return v, ok
}

// Property returns a build property.
func (e *Environment) Property(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.props[key]
	return v, ok
}

// Tool returns a tool alias target.
func (e *Environment) Tool(alias string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.tools[alias]
	return v, ok
}

// Owner returns the artifact that set the variable, property or tool identified
// by kind and key.
func (e *Environment) Owner(kind artifact.ChangeKind, key string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.owners[ownerKey(kind, key)]
}

// Adopt registers a previously activated artifact: it claims ownership of the
// keys in h and restores its properties and tools, which live only in memory.
// Variables are left alone; the parent shell already carries them.
func (e *Environment) Adopt(name string, h artifact.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range h.Changes {
		switch c.Kind {
		case artifact.ChangeProperty:
			e.props[c.Key] = c.Value
		case artifact.ChangeTool:
			e.tools[c.Key] = c.Value
		case artifact.ChangePath:
			continue
		}
		e.owners[ownerKey(c.Kind, c.Key)] = name
	}
}

// Stage opens an overlay for one artifact. Nothing reaches the environment until
// Commit.
func (e *Environment) Stage(owner string) *Stage {
	return &Stage{
		env:     e,
		owner:   owner,
		vars:    make(map[string]string),
		unset:   make(map[string]struct{}),
		props:   make(map[string]*string),
		tools:   make(map[string]*string),
		owners:  make(map[string]*string),
		changes: nil,
	}
}

// Diff compares the current state with the snapshot. Every slice is sorted by key.
func (e *Environment) Diff() Diff {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var d Diff
	for k, v := range e.vars {
		if old, ok := e.base[k]; !ok || old != v {
			d.Set = append(d.Set, KV{Key: k, Value: v})
		}
	}
	for k := range e.base {
		if _, ok := e.vars[k]; !ok {
			d.Unset = append(d.Unset, k)
		}
	}
	d.Properties = sortedKVs(e.props)
	d.Tools = sortedKVs(e.tools)

	slices.SortFunc(d.Set, compareKV)
	slices.Sort(d.Unset)
	return d
}

// Apply pushes the variable part of the diff to setenv and unsetenv, typically
// os.Setenv and os.Unsetenv. It stops at the first error.
func (e *Environment) Apply(setenv func(key, value string) error, unsetenv func(key string) error) error {
	d := e.Diff()
	for _, kv := range d.Set {
		if err := setenv(kv.Key, kv.Value); err != nil {
			return err
		}
	}
	for _, k := range d.Unset {
		if err := unsetenv(k); err != nil {
			return err
		}
	}
	return nil
}

// Revert undoes the changes recorded in h directly on the environment.
func (e *Environment) Revert(h artifact.Handle) {
	s := e.Stage("")
	s.Revert(h)
	s.Commit()
}

func (e *Environment) commit(s *Stage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k := range s.unset {
		delete(e.vars, k)
	}
	maps.Copy(e.vars, s.vars)
	applyOptional(e.props, s.props)
	applyOptional(e.tools, s.tools)
	applyOptional(e.owners, s.owners)
}

// Stage is a copy-on-write overlay over an Environment scoped to one artifact.
type Stage struct {
	env   *Environment
	owner string

	vars   map[string]string
	unset  map[string]struct{}
	props  map[string]*string // nil value deletes
	tools  map[string]*string
	owners map[string]*string

	changes []artifact.Change
}

// Owner returns the artifact this stage activates.
func (s *Stage) Owner() string { return s.owner }

// Get returns the value of key as seen through the overlay.
func (s *Stage) Get(key string) (string, bool) {
	if v, ok := s.vars[key]; ok {
		return v, true
	}
	if _, ok := s.unset[key]; ok {
		return "", false
	}
	return s.env.Get(key)
}

// OwnerOf returns the artifact owning kind/key as seen through the overlay.
func (s *Stage) OwnerOf(kind artifact.ChangeKind, key string) string {
	if v, ok := s.owners[ownerKey(kind, key)]; ok {
		if v == nil {
			return ""
		}
		return *v
	}
	return s.env.Owner(kind, key)
}

// Set assigns an environment variable.
func (s *Stage) Set(key, value string) {
	prev, had := s.Get(key)
	s.setVar(key, value)
	s.claim(artifact.ChangeEnv, key)
	s.record(artifact.Change{Kind: artifact.ChangeEnv, Key: key, Value: value, Previous: prev, HadPrevious: had})
}

// PrependPath puts entries, in order, at the front of the path list in key.
func (s *Stage) PrependPath(key string, entries ...string) {
	prev, had := s.Get(key)
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		cur, ok := s.Get(key)
		if !ok || cur == "" {
			s.setVar(key, entry)
		} else {
			s.setVar(key, entry+s.env.sep+cur)
		}
		s.record(artifact.Change{Kind: artifact.ChangePath, Key: key, Value: entry, Previous: prev, HadPrevious: had})
	}
}

// SetProperty records a build property.
func (s *Stage) SetProperty(key, value string) {
	prev, had := s.property(key)
	s.props[key] = &value
	s.claim(artifact.ChangeProperty, key)
	s.record(artifact.Change{Kind: artifact.ChangeProperty, Key: key, Value: value, Previous: prev, HadPrevious: had})
}

// SetTool records a tool alias.
func (s *Stage) SetTool(alias, target string) {
	prev, had := s.tool(alias)
	s.tools[alias] = &target
	s.claim(artifact.ChangeTool, alias)
	s.record(artifact.Change{Kind: artifact.ChangeTool, Key: alias, Value: target, Previous: prev, HadPrevious: had})
}

// Revert undoes h inside the overlay. Path entries are removed wherever they now
// sit in the list; other changes restore their previous value. On an owned stage,
// keys another artifact has since taken over are left to their new owner. Reverts
// are not recorded in Changes.
func (s *Stage) Revert(h artifact.Handle) {
	for i := len(h.Changes) - 1; i >= 0; i-- {
		c := h.Changes[i]
		if s.owner != "" && c.Kind != artifact.ChangePath && s.OwnerOf(c.Kind, c.Key) != s.owner {
			continue
		}
		switch c.Kind {
		case artifact.ChangeEnv:
			if c.HadPrevious {
				s.setVar(c.Key, c.Previous)
			} else {
				s.unsetVar(c.Key)
			}
		case artifact.ChangePath:
			cur, ok := s.Get(c.Key)
			if !ok {
				continue
			}
			rest := removeEntry(strings.Split(cur, s.env.sep), c.Value)
			if len(rest) == 0 && !c.HadPrevious {
				s.unsetVar(c.Key)
			} else {
				s.setVar(c.Key, strings.Join(rest, s.env.sep))
			}
		case artifact.ChangeProperty:
			s.props[c.Key] = restored(c)
		case artifact.ChangeTool:
			s.tools[c.Key] = restored(c)
		}
		if c.Kind != artifact.ChangePath {
			s.owners[ownerKey(c.Kind, c.Key)] = nil
		}
	}
}

// Changes returns the changes recorded so far, in order.
func (s *Stage) Changes() []artifact.Change {
	return slices.Clone(s.changes)
}

// Commit writes the overlay to the environment.
func (s *Stage) Commit() {
	s.env.commit(s)
}

func (s *Stage) setVar(key, value string) {
	delete(s.unset, key)
	s.vars[key] = value
}

func (s *Stage) unsetVar(key string) {
	delete(s.vars, key)
	s.unset[key] = struct{}{}
}

func (s *Stage) claim(kind artifact.ChangeKind, key string) {
	if s.owner == "" {
		return
	}
	owner := s.owner
	s.owners[ownerKey(kind, key)] = &owner
}

func (s *Stage) record(c artifact.Change) {
	s.changes = append(s.changes, c)
}

func (s *Stage) property(key string) (string, bool) {
	if v, ok := s.props[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return s.env.Property(key)
}

func (s *Stage) tool(alias string) (string, bool) {
	if v, ok := s.tools[alias]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return s.env.Tool(alias)
}

func ownerKey(kind artifact.ChangeKind, key string) string {
	return string(kind) + ":" + key
}

func restored(c artifact.Change) *string {
	if !c.HadPrevious {
		return nil
	}
	v := c.Previous
	return &v
}

func applyOptional(dst map[string]string, src map[string]*string) {
	for k, v := range src {
		if v == nil {
			delete(dst, k)
		} else {
			dst[k] = *v
		}
	}
}

// removeEntry drops the first occurrence of entry.
func removeEntry(list []string, entry string) []string {
	if i := slices.Index(list, entry); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}

func sortedKVs(m map[string]string) []KV {
	out := make([]KV, 0, len(m))
	for k, v := range m {
		out = append(out, KV{Key: k, Value: v})
	}
	slices.SortFunc(out, compareKV)
	return out
}

func compareKV(a, b KV) int {
	return strings.Compare(a.Key, b.Key)
}
