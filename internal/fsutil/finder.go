// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches each root for files whose name
// ends with one of the given extensions (compared case-insensitively). Roots
// that do not exist are skipped. The result is sorted and free of duplicates.
func FindFilesByExtension(roots []string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("at least one extension is required")
	}
	lowered := make([]string, len(extensions))
	for i, ext := range extensions {
		if ext == "" {
			panic("extension must not be empty")
		}
		lowered[i] = strings.ToLower(ext)
	}

	seen := make(map[string]struct{})
	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subdirectories are not fatal for a discovery walk.
				if d != nil && d.IsDir() && path != root {
					return fs.SkipDir
				}
				return err
			}
			if d.IsDir() || !hasExtension(d.Name(), lowered) {
				return nil
			}
			if _, dup := seen[path]; !dup {
				seen[path] = struct{}{}
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
