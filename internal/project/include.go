// Package project compiles and runs the primary project against its
// installed dependencies.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FindIncludeDirs returns every directory below base named "include" or
// "Include", sorted. A missing base yields nothing.
func FindIncludeDirs(base string) ([]string, error) {
	if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var dirs []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() || path == base {
			return nil
		}
		switch d.Name() {
		case ".git":
			return filepath.SkipDir
		case "include", "Include":
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("searching include directories in %s: %w", base, err)
	}
	sort.Strings(dirs)
	return dirs, nil
}
