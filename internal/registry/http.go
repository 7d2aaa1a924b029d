package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/log"
)

// maxIndexSize caps how much of a remote index is read.
const maxIndexSize = 16 << 20

// ErrIndexTooLarge is returned when a remote index exceeds the size limit.
var ErrIndexTooLarge = errors.New("registry index too large")

// HTTPSource fetches a YAML index from a URL on every query; wrap it in a CachedSource
// to avoid refetching.
type HTTPSource struct {
	name        string
	url         string
	installRoot string
	client      *http.Client
	maxSize     int64
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates a source for url. Relative install locations in the index are
// resolved under installRoot/name. A nil client uses http.DefaultClient.
func NewHTTPSource(name, url, installRoot string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{name: name, url: url, installRoot: installRoot, client: client, maxSize: maxIndexSize}
}

func (s *HTTPSource) Name() string { return s.name }

// URL returns the index location.
func (s *HTTPSource) URL() string { return s.url }

func (s *HTTPSource) Query(ctx context.Context, name string) ([]*artifact.Artifact, error) {
	reg, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return reg.Versions(name), nil
}

func (s *HTTPSource) List(ctx context.Context) ([]*artifact.Artifact, error) {
	reg, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return reg.List(), nil
}

func (s *HTTPSource) fetch(ctx context.Context) (*artifact.Registry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("registry %s: build request: %w", s.name, err)
	}
	req.Header.Set("Accept", "application/yaml, text/yaml, */*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &UnreachableError{Source: s.name, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UnreachableError{Source: s.name, Err: fmt.Errorf("GET %s: %s", s.url, resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, &UnreachableError{Source: s.name, Err: err}
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("registry %s (%s): %w: more than %d bytes", s.name, s.url, ErrIndexTooLarge, s.maxSize)
	}

	base := ""
	if s.installRoot != "" {
		base = filepath.Join(s.installRoot, s.name)
	}
	reg, err := ParseIndex(s.name, data, base)
	if err != nil {
		return nil, fmt.Errorf("registry %s (%s): %w", s.name, s.url, err)
	}

	log.Debug(log.CatRegistry, "fetched index", "registry", s.name, "url", s.url, "artifacts", reg.Len())
	return reg, nil
}
