package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/watcher"
)

// FileSource reads a YAML index from disk. The parsed index is kept until the file
// changes (when watched) or Invalidate is called.
type FileSource struct {
	name string
	path string

	mu  sync.Mutex
	reg *artifact.Registry
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a source for location, which is either an index file or a
// directory containing registry.yaml. The file is not read until the first query.
func NewFileSource(name, location string) *FileSource {
	path := location
	if info, err := os.Stat(location); err == nil && info.IsDir() {
		path = filepath.Join(location, IndexFileName)
	}
	return &FileSource{name: name, path: path}
}

func (s *FileSource) Name() string { return s.name }

// Path returns the index file location.
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) Query(ctx context.Context, name string) ([]*artifact.Artifact, error) {
	reg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return reg.Versions(name), nil
}

func (s *FileSource) List(ctx context.Context) ([]*artifact.Artifact, error) {
	reg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]*artifact.Artifact(nil), reg.List()...), nil
}

// Invalidate drops the parsed index so the next query re-reads the file.
func (s *FileSource) Invalidate() {
	s.mu.Lock()
	s.reg = nil
	s.mu.Unlock()
}

// Watch invalidates the parsed index whenever the file changes, until ctx is done.
func (s *FileSource) Watch(ctx context.Context) error {
	w, err := watcher.New(watcher.DefaultConfig(s.path))
	if err != nil {
		return fmt.Errorf("watch registry %s: %w", s.name, err)
	}
	onChange, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return fmt.Errorf("watch registry %s: %w", s.name, err)
	}

	go func() {
		defer func() { _ = w.Stop() }()
		for {
			select {
			case <-ctx.Done():
				return
			case <-onChange:
				log.Debug(log.CatRegistry, "index changed, dropping parsed copy", "registry", s.name, "path", s.path)
				s.Invalidate()
			}
		}
	}()
	return nil
}

func (s *FileSource) load(ctx context.Context) (*artifact.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reg != nil {
		return s.reg, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &UnreachableError{Source: s.name, Err: err}
	}
	reg, err := ParseIndex(s.name, data, filepath.Dir(s.path))
	if err != nil {
		return nil, fmt.Errorf("registry %s (%s): %w", s.name, s.path, err)
	}

	log.Debug(log.CatRegistry, "loaded index", "registry", s.name, "path", s.path, "artifacts", reg.Len())
	s.reg = reg
	return reg, nil
}
