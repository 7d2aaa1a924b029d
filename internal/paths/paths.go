// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" with the user's home directory.
//   - "~"        -> "/home/me"
//   - "~/x/y"    -> "/home/me/x/y"
//   - "~other/x" -> unchanged
//
// The path is returned unchanged when the home directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Resolve expands "~" and makes a relative path absolute against base.
// An empty base leaves relative paths relative.
func Resolve(base, path string) string {
	path = ExpandHome(path)
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

// FindUp walks from start towards the filesystem root and returns the first
// existing regular file named one of names, checked in order within each
// directory.
func FindUp(start string, names ...string) (string, bool) {
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
