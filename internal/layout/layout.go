// Package layout describes zyn's on-disk state directory:
//
//	<root>/deps/<name>         dependency checkouts
//	<root>/build/<name>        per-dependency build output
//	<root>/lock/<name>.lock    per-dependency lock records
//	<root>/cache/              primary-project rebuild fingerprints
//
// Every dependency owns a disjoint set of these paths, keyed by its name.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultRoot is the state directory relative to the project root.
const DefaultRoot = ".zyn"

// Layout resolves paths below a state root.
type Layout struct {
	Root string
}

// New returns a Layout rooted at root, or at DefaultRoot when root is empty.
func New(root string) Layout {
	if root == "" {
		root = DefaultRoot
	}
	return Layout{Root: filepath.Clean(root)}
}

func (l Layout) DepsDir() string  { return filepath.Join(l.Root, "deps") }
func (l Layout) BuildDir() string { return filepath.Join(l.Root, "build") }
func (l Layout) LockDir() string  { return filepath.Join(l.Root, "lock") }
func (l Layout) CacheDir() string { return filepath.Join(l.Root, "cache") }

// DepDir returns the checkout directory for a dependency.
func (l Layout) DepDir(name string) string { return filepath.Join(l.DepsDir(), name) }

// DepBuildDir returns the build output directory for a dependency.
func (l Layout) DepBuildDir(name string) string { return filepath.Join(l.BuildDir(), name) }

// LockPath returns the lock record path for a dependency.
func (l Layout) LockPath(name string) string { return filepath.Join(l.LockDir(), name+".lock") }

// ValidateName rejects dependency names that would escape their directory.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("dependency name is empty")
	case name == "." || name == "..":
		return fmt.Errorf("dependency name %q is not allowed", name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("dependency name %q must not contain path separators", name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("dependency name %q must not start with '.'", name)
	}
	return nil
}

// Within checks that target resolves inside root, following symlinks for
// the portion of target that already exists. It returns the resolved path.
func Within(root, target string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	realRoot, err := resolveExisting(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving root symlinks: %w", err)
	}

	candidate := target
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(absRoot, candidate)
	}
	resolved, err := resolveExisting(filepath.Clean(candidate))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", target, err)
	}

	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside '%s'", target, resolved, realRoot)
	}
	return resolved, nil
}

// resolveExisting resolves symlinks for the longest existing prefix of path
// and appends the remainder unchanged.
func resolveExisting(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	dir, base := filepath.Split(path)
	dir = filepath.Clean(dir)
	if dir == path {
		return path, nil
	}
	parent, err := resolveExisting(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, base), nil
}
