package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestNames lists the manifest file names searched for, in order.
var ManifestNames = []string{"zyn.toml", "zyn.yaml", "zyn.yml"}

// ErrNoManifest is returned by Find when no manifest exists in dir or any
// of its parents.
var ErrNoManifest = errors.New("no zyn manifest found")

// Find returns the path of the nearest manifest, searching dir and then its
// parents up to the filesystem root.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	for {
		for _, name := range ManifestNames {
			candidate := filepath.Join(abs, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrNoManifest, dir)
		}
		abs = parent
	}
}
