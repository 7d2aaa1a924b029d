package registry

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/acquire/internal/cachemanager"
	"github.com/zjrosen/acquire/internal/config"
	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/paths"
)

// Options controls how FromConfig builds sources.
type Options struct {
	// BaseDir resolves relative file locations. Empty means the working directory.
	BaseDir string

	// InstallRoot is where artifacts from remote indexes are installed.
	InstallRoot string

	// Cache, when non-nil, wraps http sources in a CachedSource with CacheTTL.
	Cache    cachemanager.CacheManager[string, []*artifact.Artifact]
	CacheTTL time.Duration

	// Watch makes file sources drop their parsed index when the file changes. Watching
	// stops when WatchContext is done.
	Watch        bool
	WatchContext context.Context

	HTTPClient *http.Client
}

// NewIndexCache returns the cache manager shared by every cached source.
func NewIndexCache() *cachemanager.InMemoryCacheManager[string, []*artifact.Artifact] {
	return cachemanager.NewInMemoryCacheManager[string, []*artifact.Artifact](
		"registry-index", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
}

// FromConfig builds one source per definition, preserving order.
func FromConfig(defs []config.RegistryConfig, opts Options) ([]Source, error) {
	if err := config.ValidateRegistries(defs); err != nil {
		return nil, err
	}

	sources := make([]Source, 0, len(defs))
	for _, def := range defs {
		src, err := newSource(def, opts)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func newSource(def config.RegistryConfig, opts Options) (Source, error) {
	switch def.ResolvedKind() {
	case config.KindHTTP:
		var src Source = NewHTTPSource(def.Name, def.Location, opts.InstallRoot, opts.HTTPClient)
		if opts.Cache != nil {
			src = NewCachedSource(src, opts.Cache, opts.CacheTTL)
		}
		return src, nil

	case config.KindFile:
		location := paths.ExpandHome(def.Location)
		if !filepath.IsAbs(location) && opts.BaseDir != "" {
			location = filepath.Join(opts.BaseDir, location)
		}
		src := NewFileSource(def.Name, location)
		if opts.Watch {
			ctx := opts.WatchContext
			if ctx == nil {
				ctx = context.Background()
			}
			if err := src.Watch(ctx); err != nil {
				// An unwatched index still works; it just won't reload mid-process.
				log.ErrorErr(log.CatRegistry, "index watch failed", err, "registry", def.Name)
			}
		}
		return src, nil

	default:
		return nil, fmt.Errorf("registry %s: unknown kind %q", def.Name, def.Kind)
	}
}

// UserRegistryDir returns the directory of user registry indexes:
// $ACQUIRE_HOME/registries, or ~/.acquire/registries.
// Returns empty string if home directory cannot be determined.
func UserRegistryDir() string {
	home := config.HomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, "registries")
}

// LoadUserRegistries returns a file registry definition for every *.yaml file in dir,
// named after the file. A missing directory yields nil, nil.
func LoadUserRegistries(dir string) ([]config.RegistryConfig, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read user registries: %w", err)
	}

	var defs []config.RegistryConfig
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		defs = append(defs, config.RegistryConfig{
			Name:     strings.TrimSuffix(e.Name(), ext),
			Kind:     config.KindFile,
			Location: filepath.Join(dir, e.Name()),
		})
	}
	return defs, nil
}

// MergeDefinitions appends extra to base, dropping entries whose name is already taken.
func MergeDefinitions(base, extra []config.RegistryConfig) []config.RegistryConfig {
	seen := make(map[string]bool, len(base))
	out := make([]config.RegistryConfig, 0, len(base)+len(extra))
	for _, d := range base {
		seen[d.Name] = true
		out = append(out, d)
	}
	for _, d := range extra {
		if seen[d.Name] {
			log.Warn(log.CatRegistry, "skipping registry with duplicate name", "registry", d.Name, "location", d.Location)
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out
}
