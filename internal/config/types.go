package config

import (
	"path/filepath"
	"runtime"
)

// Manifest represents a zyn.toml (or zyn.yaml) project manifest.
type Manifest struct {
	Project      Project               `toml:"project" yaml:"project"`
	Directories  Directories           `toml:"directories" yaml:"directories"`
	Dependencies map[string]Dependency `toml:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Link         Link                  `toml:"link,omitempty" yaml:"link,omitempty"`
	Profiles     map[string][]string   `toml:"profiles,omitempty" yaml:"profiles,omitempty"`

	// Root is the directory containing the manifest. Relative directories
	// and local dependency paths are resolved against it.
	Root string `toml:"-" yaml:"-"`
}

// Project describes the primary project being built.
type Project struct {
	Name     string `toml:"name" yaml:"name"`
	Version  string `toml:"version,omitempty" yaml:"version,omitempty"`
	Language string `toml:"language,omitempty" yaml:"language,omitempty"` // source file extension
	Standard string `toml:"standard,omitempty" yaml:"standard,omitempty"`
	Compiler string `toml:"compiler,omitempty" yaml:"compiler,omitempty"`
}

// Directories locates the primary project's sources, headers and output.
type Directories struct {
	Sources string `toml:"sources,omitempty" yaml:"sources,omitempty"`
	Include string `toml:"include,omitempty" yaml:"include,omitempty"`
	Build   string `toml:"build,omitempty" yaml:"build,omitempty"`
}

// Dependency is one entry of the [dependencies] table. Exactly one of Git
// or Path is set.
type Dependency struct {
	Git       string `toml:"git,omitempty" yaml:"git,omitempty"` // url, optionally url@ref
	Tag       string `toml:"tag,omitempty" yaml:"tag,omitempty"`
	Path      string `toml:"path,omitempty" yaml:"path,omitempty"`
	CMakeArgs string `toml:"cmake_args,omitempty" yaml:"cmake_args,omitempty"` // shell words
}

// Link lists libraries for the final link step.
type Link struct {
	Libraries []string `toml:"libraries,omitempty" yaml:"libraries,omitempty"`
	LibDirs   []string `toml:"lib_dirs,omitempty" yaml:"lib_dirs,omitempty"`
}

const (
	DefaultLanguage = "cpp"
	DefaultStandard = "c++17"
	DefaultCompiler = "c++"
	DefaultSources  = "src"
	DefaultInclude  = "include"
	DefaultBuild    = "build"
)

// ApplyDefaults fills unset optional fields.
func (m *Manifest) ApplyDefaults() {
	if m.Project.Language == "" {
		m.Project.Language = DefaultLanguage
	}
	if m.Project.Standard == "" {
		m.Project.Standard = DefaultStandard
	}
	if m.Project.Compiler == "" {
		m.Project.Compiler = DefaultCompiler
	}
	if m.Directories.Sources == "" {
		m.Directories.Sources = DefaultSources
	}
	if m.Directories.Include == "" {
		m.Directories.Include = DefaultInclude
	}
	if m.Directories.Build == "" {
		m.Directories.Build = DefaultBuild
	}
	if m.Dependencies == nil {
		m.Dependencies = make(map[string]Dependency)
	}
}

// SourcesDir, IncludeDir and BuildDir return the configured directories
// resolved against the manifest root.
func (m *Manifest) SourcesDir() string { return m.Resolve(m.Directories.Sources) }
func (m *Manifest) IncludeDir() string { return m.Resolve(m.Directories.Include) }
func (m *Manifest) BuildDir() string   { return m.Resolve(m.Directories.Build) }

// ArtifactPath is the primary executable produced by a project build.
func (m *Manifest) ArtifactPath() string {
	name := m.Project.Name
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(m.BuildDir(), name)
}
