// Package zyn is the library API of the zyn C/C++ package manager.
//
// A Client loads a project manifest, installs and verifies its git
// dependencies against their lock records, and compiles the project.
//
// # Basic Usage
//
//	client, err := zyn.New(zyn.Options{ProjectRoot: "/path/to/project"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Install dependencies; a lock mismatch is returned as *zyn.MismatchError.
//	result, err := client.Install(ctx)
//
//	// Compile the project if its sources changed.
//	built, err := client.Build(ctx, zyn.BuildOptions{Profile: "debug"})
package zyn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zynbuild/zyn/internal/config"
	"github.com/zynbuild/zyn/internal/console"
	"github.com/zynbuild/zyn/internal/engine"
	"github.com/zynbuild/zyn/internal/layout"
	"github.com/zynbuild/zyn/internal/project"
	"github.com/zynbuild/zyn/internal/runner"
	"github.com/zynbuild/zyn/internal/source"
)

// Installer installs dependencies to their locked state.
type Installer interface {
	Install(ctx context.Context, names ...string) (*InstallResult, error)
}

// Updater moves dependencies to their latest matching revision.
type Updater interface {
	Update(ctx context.Context, names ...string) (*InstallResult, error)
}

// Verifier checks installed dependencies against their lock records offline.
type Verifier interface {
	Verify(ctx context.Context, names ...string) (*VerifyResult, error)
}

// Builder compiles the primary project.
type Builder interface {
	NeedsRebuild() (bool, error)
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
}

// Options configures a Client.
type Options struct {
	// ProjectRoot is the directory containing the manifest. If empty, the
	// directory of ManifestPath is used, or the current directory.
	ProjectRoot string

	// ManifestPath is the manifest file. If empty, zyn.toml, zyn.yaml or
	// zyn.yml is searched for from ProjectRoot upward.
	ManifestPath string

	// Root is the state directory. Relative paths are resolved against the
	// project root. Default: ".zyn".
	Root string

	// Jobs bounds concurrent dependency tasks. Default: number of CPUs.
	Jobs int

	// Log receives progress output. Nil discards it.
	Log      io.Writer
	LogLevel string
}

// Client is the main entry point of the library. It implements Installer,
// Updater, Verifier and Builder.
type Client struct {
	manifestPath string
	layout       layout.Layout
	console      *console.Console
	runner       runner.Runner
	jobs         int
}

// New creates a Client. The manifest is read on every call so that edits
// between calls are picked up.
func New(opts Options) (*Client, error) {
	manifestPath := opts.ManifestPath
	if manifestPath == "" {
		start := opts.ProjectRoot
		if start == "" {
			start = "."
		}
		found, err := config.Find(start)
		if err != nil {
			return nil, err
		}
		manifestPath = found
	}
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest path: %w", err)
	}

	projectRoot := filepath.Dir(abs)
	if opts.ProjectRoot != "" {
		if projectRoot, err = filepath.Abs(opts.ProjectRoot); err != nil {
			return nil, fmt.Errorf("resolving project root: %w", err)
		}
	}

	root := opts.Root
	if root == "" {
		root = layout.DefaultRoot
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(projectRoot, root)
	}

	w := opts.Log
	if w == nil {
		w = io.Discard
	}
	con, err := console.New(w, console.Options{Level: opts.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("configuring log: %w", err)
	}

	return &Client{
		manifestPath: abs,
		layout:       layout.New(root),
		console:      con,
		runner:       runner.NewExec(),
		jobs:         opts.Jobs,
	}, nil
}

// Close flushes pending log output.
func (c *Client) Close() error {
	c.console.Close()
	return nil
}

// Manifest loads the project manifest.
func (c *Client) Manifest() (*config.Manifest, error) {
	return config.Load(c.manifestPath)
}

func (c *Client) orchestrator() *engine.Orchestrator {
	return engine.New(c.layout, c.runner, c.console, c.jobs)
}

func (c *Client) specs(names ...string) ([]config.DependencySpec, error) {
	m, err := c.Manifest()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return m.Specs()
	}
	specs := make([]config.DependencySpec, 0, len(names))
	for _, name := range names {
		spec, err := m.Spec(name)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Install brings the named git dependencies, or all of them, to their
// locked state, installing and locking new ones. A lock mismatch stops the
// run and is returned as a *MismatchError; other per-dependency failures
// are reported in the result.
func (c *Client) Install(ctx context.Context, names ...string) (*InstallResult, error) {
	specs, err := c.specs(names...)
	if err != nil {
		return nil, err
	}
	return c.orchestrator().Install(ctx, specs)
}

// Update re-resolves the named dependencies, or all of them, rewriting the
// locks of those that moved.
func (c *Client) Update(ctx context.Context, names ...string) (*InstallResult, error) {
	specs, err := c.specs()
	if err != nil {
		return nil, err
	}
	return c.orchestrator().Update(ctx, specs, names)
}

// Verify re-hashes installed dependencies and compares them with their lock
// records without touching the network.
func (c *Client) Verify(ctx context.Context, names ...string) (*VerifyResult, error) {
	specs, err := c.specs()
	if err != nil {
		return nil, err
	}
	return c.orchestrator().Verify(ctx, specs, names)
}

// Status reports every dependency without touching the network.
func (c *Client) Status() ([]DependencyStatus, error) {
	specs, err := c.specs()
	if err != nil {
		return nil, err
	}
	return c.orchestrator().Status(specs)
}

// Orphans lists lock records and checkouts no dependency declares.
func (c *Client) Orphans() ([]string, error) {
	specs, err := c.specs()
	if err != nil {
		return nil, err
	}
	return c.orchestrator().Orphans(specs)
}

// Clean removes dependency build outputs, the rebuild cache and the
// project build directory. With all set the checkouts are removed too.
func (c *Client) Clean(ctx context.Context, all bool) ([]string, error) {
	m, err := c.Manifest()
	if err != nil {
		return nil, err
	}
	return c.orchestrator().Clean(ctx, all, m.BuildDir())
}

// AddGit declares the repository rawURL (optionally url@ref) as a
// dependency named after it, saves the manifest and installs it.
//
// The saved tag is pinned first: without a ref it is the repository's latest
// tag, and a bare version such as 1.2 becomes v1.2 when only that tag
// exists. A repository without tags is saved untagged.
func (c *Client) AddGit(ctx context.Context, rawURL string) (string, *InstallResult, error) {
	name := config.ExtractName(rawURL)
	m, err := c.Manifest()
	if err != nil {
		return "", nil, err
	}
	if _, exists := m.Dependencies[name]; exists {
		return "", nil, fmt.Errorf("dependency '%s' already exists in %s", name, c.manifestPath)
	}

	url, ref := config.SplitRef(rawURL)
	log := c.console.Logger("add").With("dep", name)
	tag, err := source.NewGitResolver(c.runner).PinTag(ctx, url, ref, filepath.Join(c.layout.Root, "tmp"))
	if err != nil {
		return "", nil, err
	}
	switch {
	case tag == "":
		log.Warn("repository has no tags, tracking the remote HEAD")
	case ref == "":
		log.Info("latest tag resolved", "tag", tag)
	case tag != ref:
		log.Info("using prefixed tag", "tag", tag)
	}

	if err := c.add(name, config.Dependency{Git: url, Tag: tag}); err != nil {
		return "", nil, err
	}
	res, err := c.Install(ctx, name)
	return name, res, err
}

// AddPath declares the local directory path as a dependency named after it.
// Local dependencies are never installed.
func (c *Client) AddPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	// Manifest paths are relative to the manifest's directory.
	if rel, err := filepath.Rel(filepath.Dir(c.manifestPath), abs); err == nil {
		path = filepath.ToSlash(rel)
	} else {
		path = abs
	}
	name := config.LocalName(abs)
	return name, c.add(name, config.Dependency{Path: path})
}

func (c *Client) add(name string, dep config.Dependency) error {
	m, err := c.Manifest()
	if err != nil {
		return err
	}
	if _, exists := m.Dependencies[name]; exists {
		return fmt.Errorf("dependency '%s' already exists in %s", name, c.manifestPath)
	}
	m.Dependencies[name] = dep
	if errs := config.Validate(m); len(errs) > 0 {
		return &config.ValidationError{Errors: errs}
	}
	return config.Save(c.manifestPath, m)
}

func (c *Client) builder(m *config.Manifest) (*project.Builder, error) {
	return project.New(m, c.layout, c.runner, c.console.Logger("project"))
}

// NeedsRebuild reports whether the project artifact is stale.
func (c *Client) NeedsRebuild() (bool, error) {
	m, err := c.Manifest()
	if err != nil {
		return false, err
	}
	b, err := c.builder(m)
	if err != nil {
		return false, err
	}
	return b.Cache.NeedsRebuild(m)
}

// Build installs dependencies and then compiles the project when it is
// stale. A lock mismatch aborts before compiling.
func (c *Client) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	m, err := c.Manifest()
	if err != nil {
		return nil, err
	}
	specs, err := m.Specs()
	if err != nil {
		return nil, err
	}
	if _, err := c.orchestrator().Install(ctx, specs); err != nil {
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			return nil, fmt.Errorf("refusing to build: %w", err)
		}
		return nil, err
	}

	b, err := c.builder(m)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, opts)
}

// Run builds the project if needed and executes it with args.
func (c *Client) Run(ctx context.Context, opts BuildOptions, args ...string) error {
	if _, err := c.Build(ctx, opts); err != nil {
		return err
	}
	m, err := c.Manifest()
	if err != nil {
		return err
	}
	b, err := c.builder(m)
	if err != nil {
		return err
	}
	return b.Run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}
