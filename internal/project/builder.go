package project

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/zynbuild/zyn/internal/cache"
	"github.com/zynbuild/zyn/internal/config"
	"github.com/zynbuild/zyn/internal/console"
	"github.com/zynbuild/zyn/internal/layout"
	"github.com/zynbuild/zyn/internal/runner"
)

// Builder compiles the primary project when its fingerprint says so.
type Builder struct {
	Manifest *config.Manifest
	Layout   layout.Layout
	Runner   runner.Runner
	Cache    *cache.Cache
	Log      *console.Logger
}

// New returns a Builder whose rebuild cache lives in the layout's cache
// directory.
func New(m *config.Manifest, l layout.Layout, r runner.Runner, log *console.Logger) (*Builder, error) {
	c, err := cache.New(l.CacheDir())
	if err != nil {
		return nil, err
	}
	return &Builder{Manifest: m, Layout: l, Runner: r, Cache: c, Log: log}, nil
}

// BuildOptions controls a primary build.
type BuildOptions struct {
	Profile string
	Force   bool // compile even when the cache says the artifact is current
}

// BuildResult describes what Build did.
type BuildResult struct {
	Artifact string
	Compiled bool
	Reason   cache.Reason
	Command  runner.Command
}

// IncludeDirs collects the include directories contributed by dependencies:
// those under local dependency paths, then the checkouts, then the
// dependency build outputs. Duplicates are dropped.
func (b *Builder) IncludeDirs() ([]string, error) {
	bases := append(b.Manifest.LocalPaths(), b.Layout.DepsDir(), b.Layout.BuildDir())

	seen := make(map[string]bool)
	var dirs []string
	for _, base := range bases {
		found, err := FindIncludeDirs(base)
		if err != nil {
			return nil, err
		}
		for _, d := range found {
			if !seen[d] {
				seen[d] = true
				dirs = append(dirs, d)
			}
		}
	}
	return dirs, nil
}

// ProfileFlags returns the compiler flags of profile. An empty profile has
// none; an unknown one logs a warning and has none.
func (b *Builder) ProfileFlags(profile string) []string {
	if profile == "" {
		return nil
	}
	flags, ok := b.Manifest.Profiles[profile]
	if !ok {
		b.Log.Warn("profile not found in manifest, no extra flags applied", "profile", profile)
		return nil
	}
	return flags
}

// Command returns the compile command for profile.
func (b *Builder) Command(profile string) (runner.Command, error) {
	includes, err := b.IncludeDirs()
	if err != nil {
		return runner.Command{}, err
	}
	return CompileCommand(b.Manifest, includes, b.ProfileFlags(profile))
}

// Build compiles the project if the rebuild cache reports it stale (or
// opts.Force is set) and records the new fingerprint on success.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	res := &BuildResult{Artifact: b.Manifest.ArtifactPath()}

	if opts.Force {
		res.Reason = cache.Forced
	} else {
		d, err := b.Cache.Check(b.Manifest)
		if err != nil {
			return nil, err
		}
		res.Reason = d.Reason
		if !d.Rebuild {
			b.Log.Info("up to date, skipping compile", "artifact", res.Artifact)
			return res, nil
		}
		if d.Detail != "" {
			b.Log.Debug("rebuild needed", "reason", d.Reason, "file", d.Detail)
		}
	}

	cmd, err := b.Command(opts.Profile)
	if err != nil {
		return nil, err
	}
	res.Command = cmd

	if err := os.MkdirAll(b.Manifest.BuildDir(), 0755); err != nil {
		return nil, fmt.Errorf("creating build directory: %w", err)
	}

	b.Log.Info("compiling", "reason", res.Reason, "cmd", cmd.String())
	if err := b.Runner.Run(ctx, cmd); err != nil {
		return nil, fmt.Errorf("compiling %s: %w", b.Manifest.Project.Name, err)
	}
	res.Compiled = true

	if err := b.Cache.Update(b.Manifest); err != nil {
		return nil, err
	}
	b.Log.Info("built", "artifact", res.Artifact)
	return res, nil
}

// Run executes the built artifact with args, attached to the given streams.
func (b *Builder) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	artifact := b.Manifest.ArtifactPath()
	if _, err := os.Stat(artifact); err != nil {
		return fmt.Errorf("no build artifact at %s: %w", artifact, err)
	}
	b.Log.Info("running", "artifact", artifact)
	return b.Runner.Run(ctx, runner.Command{
		Name:   artifact,
		Args:   args,
		Dir:    b.Manifest.Root,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	})
}
