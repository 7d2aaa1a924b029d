// Package project reads the optional per-project metadata file. A project may name
// extra registries that are consulted after the global ones.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/acquire/internal/config"
	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/paths"
)

// FileNames are the metadata file names searched for, in order, in each directory.
var FileNames = []string{"acquire.yaml", ".acquire.yaml"}

// ErrNotFound means no metadata file exists at or above the start directory.
var ErrNotFound = errors.New("no project metadata found")

// Project is a parsed metadata file.
type Project struct {
	Path       string                  `yaml:"-"`
	Registries []config.RegistryConfig `yaml:"registries"`
}

// Dir returns the directory relative registry locations resolve against.
func (p *Project) Dir() string {
	return filepath.Dir(p.Path)
}

// Load parses the metadata file at path.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is discovered or user-supplied
	if err != nil {
		return nil, fmt.Errorf("read project metadata: %w", err)
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := config.ValidateRegistries(p.Registries); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	p.Path = abs
	return &p, nil
}

// Discover finds and loads the nearest metadata file at or above start. start may
// also be the metadata file itself.
func Discover(start string) (*Project, error) {
	if info, err := os.Stat(start); err == nil && info.Mode().IsRegular() {
		return Load(start)
	}
	path, ok := paths.FindUp(start, FileNames...)
	if !ok {
		return nil, ErrNotFound
	}
	log.Debug(log.CatConfig, "Found project metadata", "path", path)
	return Load(path)
}
