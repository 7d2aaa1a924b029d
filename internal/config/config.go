// Package config provides configuration types and defaults for acquire.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/templates"
)

// Registry kinds.
const (
	KindFile = "file"
	KindHTTP = "http"
)

// RegistryConfig defines a single registry index.
type RegistryConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Kind     string `mapstructure:"kind" yaml:"kind,omitempty"` // "file" or "http"; inferred from location when empty
	Location string `mapstructure:"location" yaml:"location"`   // path to an index file/directory, or an http(s) URL
}

// ResolvedKind returns Kind, or the kind implied by Location when Kind is empty.
func (r RegistryConfig) ResolvedKind() string {
	if r.Kind != "" {
		return r.Kind
	}
	if strings.HasPrefix(r.Location, "http://") || strings.HasPrefix(r.Location, "https://") {
		return KindHTTP
	}
	return KindFile
}

// ResolverConfig controls how registries are queried.
type ResolverConfig struct {
	// Timeout bounds each individual registry query.
	Timeout time.Duration `mapstructure:"timeout"`

	// Concurrency bounds how many specifiers are matched at once.
	Concurrency int `mapstructure:"concurrency"`
}

// CacheConfig controls the in-memory registry index cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// SessionConfig controls persistence of the active artifact set.
type SessionConfig struct {
	// Persist keeps activations across invocations in a sqlite database.
	Persist bool `mapstructure:"persist"`

	// DBPath is the sqlite database location.
	// Default: ~/.acquire/session.db
	DBPath string `mapstructure:"db_path"`
}

// ActivationConfig controls activation side effects.
type ActivationConfig struct {
	// Shell selects the postscript dialect: "sh", "pwsh" or "cmd".
	// Empty means infer it from the postscript file extension.
	Shell string `mapstructure:"shell"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/acquire/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Config holds all configuration options for acquire.
type Config struct {
	Registries []RegistryConfig `mapstructure:"registries"`
	Resolver   ResolverConfig   `mapstructure:"resolver"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Session    SessionConfig    `mapstructure:"session"`
	Activation ActivationConfig `mapstructure:"activation"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Flags      map[string]bool  `mapstructure:"flags"`
}

// HomeDir returns $ACQUIRE_HOME when set, otherwise ~/.acquire.
// Returns empty string if home directory cannot be determined.
func HomeDir() string {
	if dir := os.Getenv("ACQUIRE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".acquire")
}

// DefaultTracesFilePath returns ~/.config/acquire/traces/traces.jsonl or empty string
// if home dir is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "acquire", "traces", "traces.jsonl")
}

// DefaultSessionDBPath returns the default sqlite location for session persistence.
func DefaultSessionDBPath() string {
	dir := HomeDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "session.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Resolver: ResolverConfig{
			Timeout:     10 * time.Second,
			Concurrency: 4,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Session: SessionConfig{
			Persist: false,
			DBPath:  DefaultSessionDBPath(),
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidateRegistries(c.Registries); err != nil {
		return err
	}
	if err := ValidateResolver(c.Resolver); err != nil {
		return err
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when the cache is enabled, got %s", c.Cache.TTL)
	}
	if c.Session.Persist && c.Session.DBPath == "" {
		return fmt.Errorf("session.db_path is required when session.persist is true")
	}
	switch c.Activation.Shell {
	case "", "sh", "pwsh", "cmd":
	default:
		return fmt.Errorf("activation.shell must be \"sh\", \"pwsh\" or \"cmd\", got %q", c.Activation.Shell)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateRegistries checks registry definitions for errors.
// Returns nil for an empty list; user registries may still be discovered.
func ValidateRegistries(regs []RegistryConfig) error {
	seen := make(map[string]bool, len(regs))
	for i, r := range regs {
		if r.Name == "" {
			return fmt.Errorf("registry %d: name is required", i)
		}
		if r.Location == "" {
			return fmt.Errorf("registry %d (%s): location is required", i, r.Name)
		}
		switch r.ResolvedKind() {
		case KindFile, KindHTTP:
		default:
			return fmt.Errorf("registry %d (%s): kind must be %q or %q, got %q", i, r.Name, KindFile, KindHTTP, r.Kind)
		}
		if seen[r.Name] {
			return fmt.Errorf("registry %d: duplicate name %q", i, r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// ValidateResolver checks resolver settings.
func ValidateResolver(r ResolverConfig) error {
	if r.Timeout <= 0 {
		return fmt.Errorf("resolver.timeout must be positive, got %s", r.Timeout)
	}
	if r.Concurrency < 1 {
		return fmt.Errorf("resolver.concurrency must be at least 1, got %d", r.Concurrency)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, templates.DefaultConfig(), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
