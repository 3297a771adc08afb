package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// DependencySpec is the resolved, per-run view of one manifest dependency.
// Exactly one of RemoteURL or LocalPath is set.
type DependencySpec struct {
	Name      string
	RemoteURL string
	Ref       string // tag or branch; empty means the remote's HEAD
	LocalPath string // absolute
	BuildArgs []string
}

// IsLocal reports whether the dependency is a local path that never enters
// resolution, locking or building.
func (s DependencySpec) IsLocal() bool {
	return s.LocalPath != ""
}

// String renders the spec as url[@ref] or the local path.
func (s DependencySpec) String() string {
	if s.IsLocal() {
		return s.LocalPath
	}
	if s.Ref == "" {
		return s.RemoteURL
	}
	return s.RemoteURL + "@" + s.Ref
}

// Spec converts one named manifest entry into a DependencySpec.
func (m *Manifest) Spec(name string) (DependencySpec, error) {
	dep, ok := m.Dependencies[name]
	if !ok {
		return DependencySpec{}, fmt.Errorf("dependency '%s' not found in manifest", name)
	}
	spec := DependencySpec{Name: name}
	if dep.Path != "" {
		spec.LocalPath = m.Resolve(dep.Path)
		return spec, nil
	}

	spec.RemoteURL, spec.Ref = SplitRef(dep.Git)
	if dep.Tag != "" {
		spec.Ref = dep.Tag
	}
	if dep.CMakeArgs != "" {
		args, err := shell.Fields(dep.CMakeArgs, nil)
		if err != nil {
			return DependencySpec{}, fmt.Errorf("dependency '%s': parsing cmake_args: %w", name, err)
		}
		spec.BuildArgs = args
	}
	return spec, nil
}

// Specs returns every dependency as a DependencySpec, sorted by name.
func (m *Manifest) Specs() ([]DependencySpec, error) {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]DependencySpec, 0, len(names))
	for _, name := range names {
		spec, err := m.Spec(name)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// LocalPaths returns the absolute paths of all local dependencies.
func (m *Manifest) LocalPaths() []string {
	var paths []string
	for _, dep := range m.Dependencies {
		if dep.Path != "" {
			paths = append(paths, m.Resolve(dep.Path))
		}
	}
	sort.Strings(paths)
	return paths
}

// SplitRef splits "url@ref" into its parts. Only an '@' after the last '/'
// and the last ':' separates a ref, so the user part of SSH remotes such as
// git@github.com:o/r.git or git@host:r.git is kept intact.
func SplitRef(s string) (url, ref string) {
	at := strings.LastIndex(s, "@")
	if at < 0 || at < strings.LastIndexAny(s, "/:") {
		return s, ""
	}
	return s[:at], s[at+1:]
}

// ExtractName derives a dependency name from a repository URL: the last
// path segment without ".git", keeping only letters, digits, '_' and '-'.
func ExtractName(rawURL string) string {
	u, _ := SplitRef(rawURL)
	u = strings.TrimSuffix(strings.TrimRight(u, "/"), ".git")
	if i := strings.LastIndexAny(u, "/:"); i >= 0 {
		u = u[i+1:]
	}
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return -1
	}, u)
	if name == "" {
		return "library"
	}
	return name
}

// LocalName derives a dependency name from a local directory path.
func LocalName(path string) string {
	return filepath.Base(filepath.Clean(path))
}
