package activation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zjrosen/acquire/internal/domain/artifact"
)

// Activation failure causes.
var (
	ErrNotInstalled = errors.New("artifact is not installed")
	ErrConflict     = errors.New("already set by another artifact")
)

// Options are the user switches that affect activation.
type Options struct {
	// Force lets an artifact overwrite variables, properties and tools owned by
	// another active artifact.
	Force bool
	// Language and AllLanguages narrow which variants are considered during
	// selection.
	Language     string
	AllLanguages bool
}

// Activator performs the environment changes for one artifact inside stage.
type Activator interface {
	Activate(ctx context.Context, stage *Stage, c artifact.Candidate, opts Options) error
}

// ConflictError reports a key owned by another active artifact.
type ConflictError struct {
	Kind  artifact.ChangeKind
	Key   string
	Owner string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s is owned by %s (use --force to override)", e.Kind, e.Key, e.Owner)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ExportActivator applies an artifact's declared exports relative to its install
// location.
type ExportActivator struct {
	stat func(string) (os.FileInfo, error)
}

var _ Activator = (*ExportActivator)(nil)

// NewExportActivator returns the default activator.
func NewExportActivator() *ExportActivator {
	return &ExportActivator{stat: os.Stat}
}

// Activate checks the install location and applies the exports in a fixed order:
// paths, env, properties, tools. Keys are visited in sorted order.
func (a *ExportActivator) Activate(ctx context.Context, stage *Stage, c artifact.Candidate, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	art := c.Artifact
	exports := art.Exports()
	loc := art.Location()

	if loc == "" {
		if !exports.IsEmpty() {
			return fmt.Errorf("%w: no install location", ErrNotInstalled)
		}
		return nil
	}
	info, err := a.stat(loc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotInstalled, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrNotInstalled, loc)
	}

	if err := checkOwnership(stage, exports, opts.Force); err != nil {
		return err
	}

	for _, key := range sortedKeys(exports.Paths) {
		entries := make([]string, 0, len(exports.Paths[key]))
		for _, e := range exports.Paths[key] {
			entries = append(entries, resolve(loc, e))
		}
		stage.PrependPath(key, entries...)
	}
	for _, key := range sortedKeys(exports.Env) {
		stage.Set(key, envValue(loc, exports.Env[key]))
	}
	for _, key := range sortedKeys(exports.Properties) {
		stage.SetProperty(key, exports.Properties[key])
	}
	for _, alias := range sortedKeys(exports.Tools) {
		stage.SetTool(alias, resolve(loc, exports.Tools[alias]))
	}
	return nil
}

func checkOwnership(stage *Stage, exports artifact.Exports, force bool) error {
	if force {
		return nil
	}
	check := func(kind artifact.ChangeKind, keys []string) error {
		for _, k := range keys {
			if owner := stage.OwnerOf(kind, k); owner != "" && owner != stage.Owner() {
				return &ConflictError{Kind: kind, Key: k, Owner: owner}
			}
		}
		return nil
	}
	if err := check(artifact.ChangeEnv, sortedKeys(exports.Env)); err != nil {
		return err
	}
	if err := check(artifact.ChangeProperty, sortedKeys(exports.Properties)); err != nil {
		return err
	}
	return check(artifact.ChangeTool, sortedKeys(exports.Tools))
}

// resolve joins p to the install location unless it is already absolute.
func resolve(loc, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(loc, filepath.FromSlash(p))
}

// envValue treats "." and "./..." as paths under the install location; anything
// else is a literal.
func envValue(loc, v string) string {
	if v == "." || strings.HasPrefix(v, "./") {
		return resolve(loc, v)
	}
	return v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
