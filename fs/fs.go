// Package fs locates attachment descriptor files on disk.
package fs

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/chatmd"
)

// Glob returns the regular files under root matching any of patterns,
// sorted and without duplicates. Patterns support ** for recursive
// matching and are interpreted relative to root. Returned paths are joined
// with root.
func Glob(root string, patterns []string) ([]string, error) {
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("access root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory: %w", root, chatmd.ErrValidation)
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var matches []string
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, chatmd.ErrValidation)
		}
		err := doublestar.GlobWalk(fsys, pattern, func(path string, d iofs.DirEntry) error {
			if d.IsDir() || seen[path] {
				return nil
			}
			seen[path] = true
			matches = append(matches, filepath.Join(root, filepath.FromSlash(path)))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
	}
	slices.Sort(matches)
	return matches, nil
}
