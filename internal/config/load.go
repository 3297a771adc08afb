package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/shell"

	"github.com/zynbuild/zyn/internal/layout"
)

type format int

const (
	formatTOML format = iota
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported manifest format %q, use .toml or .yaml", filepath.Ext(path))
	}
}

// Load reads, defaults and validates a manifest.
func Load(path string) (*Manifest, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	switch f {
	case formatTOML:
		err = toml.Unmarshal(data, &m)
	case formatYAML:
		err = yaml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest path: %w", err)
	}
	m.Root = filepath.Dir(abs)
	m.ApplyDefaults()

	if errs := Validate(&m); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return &m, nil
}

// Save writes a manifest atomically using a temp file and rename.
func Save(path string, m *Manifest) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err = enc.Encode(m); err == nil {
			data = buf.Bytes()
		}
	case formatYAML:
		data, err = yaml.Marshal(m)
	}
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp manifest %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp manifest to %s: %w", path, err)
	}
	return nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Manifest for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(m *Manifest) []string {
	var errs []string

	if m.Project.Name == "" {
		errs = append(errs, "project: 'name' is required")
	} else if strings.ContainsAny(m.Project.Name, `/\`) {
		errs = append(errs, fmt.Sprintf("project: name '%s' must not contain path separators", m.Project.Name))
	}

	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dep := m.Dependencies[name]
		prefix := fmt.Sprintf("dependency '%s'", name)

		if err := layout.ValidateName(name); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))
		}

		switch {
		case dep.Git != "" && dep.Path != "":
			errs = append(errs, fmt.Sprintf("%s: 'git' and 'path' are mutually exclusive, use one or the other", prefix))
		case dep.Git == "" && dep.Path == "":
			errs = append(errs, fmt.Sprintf("%s: one of 'git' or 'path' is required", prefix))
		}

		if dep.Tag != "" && dep.Git == "" {
			errs = append(errs, fmt.Sprintf("%s: 'tag' requires 'git'", prefix))
		}

		if dep.CMakeArgs != "" {
			if _, err := shell.Fields(dep.CMakeArgs, nil); err != nil {
				errs = append(errs, fmt.Sprintf("%s: invalid 'cmake_args': %v", prefix, err))
			}
		}
	}

	for profile, flags := range m.Profiles {
		for _, flag := range flags {
			if strings.TrimSpace(flag) == "" {
				errs = append(errs, fmt.Sprintf("profile '%s': empty flag", profile))
				break
			}
		}
	}

	return errs
}

// Resolve returns p relative to the manifest root unless it is absolute.
func (m *Manifest) Resolve(p string) string {
	if filepath.IsAbs(p) || m.Root == "" {
		return p
	}
	return filepath.Join(m.Root, p)
}
