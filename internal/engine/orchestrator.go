// Package engine runs the per-dependency install pipeline concurrently
// across every dependency of a project.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/zynbuild/zyn/internal/build"
	"github.com/zynbuild/zyn/internal/config"
	"github.com/zynbuild/zyn/internal/console"
	"github.com/zynbuild/zyn/internal/hashing"
	"github.com/zynbuild/zyn/internal/layout"
	"github.com/zynbuild/zyn/internal/lock"
	"github.com/zynbuild/zyn/internal/runner"
	"github.com/zynbuild/zyn/internal/source"
)

// Resolver is the git capability the orchestrator needs.
type Resolver interface {
	CloneIfMissing(ctx context.Context, url, dir string) error
	ResolveRevision(ctx context.Context, dir, ref string) (string, error)
	CheckoutCommit(ctx context.Context, dir, commit string) error
	Head(ctx context.Context, dir string) (string, error)
	TrackedFiles(ctx context.Context, dir string) ([]string, error)
}

// Builder builds a checked-out dependency tree.
type Builder interface {
	Build(ctx context.Context, src, buildDir string, args []string) (build.Kind, error)
}

// Orchestrator drives every dependency through resolve, verify-or-install
// and build. Each task owns the checkout, build directory and lock record
// named after its dependency, so tasks share no paths.
type Orchestrator struct {
	Layout  layout.Layout
	Git     Resolver
	Locks   *lock.Store
	Builder Builder
	Console *console.Console
	Jobs    int // concurrent dependency tasks; <= 0 means runtime.NumCPU
}

// New wires an Orchestrator over the real git resolver, lock store and
// build invoker, all sharing r.
func New(l layout.Layout, r runner.Runner, c *console.Console, jobs int) *Orchestrator {
	return &Orchestrator{
		Layout:  l,
		Git:     source.NewGitResolver(r),
		Locks:   lock.NewStore(l.LockDir()),
		Builder: build.NewInvoker(r, c.Logger("build")),
		Console: c,
		Jobs:    jobs,
	}
}

func (o *Orchestrator) logger(tag string) *console.Logger {
	return o.Console.Logger(tag)
}

func (o *Orchestrator) jobs() int {
	if o.Jobs > 0 {
		return o.Jobs
	}
	return runtime.NumCPU()
}

type task func(ctx context.Context, spec config.DependencySpec) DependencyResult

// fanOut runs fn once per spec with bounded concurrency and joins them all.
// When failFast is set, the first lock mismatch cancels the remaining tasks
// and is returned as the error.
func (o *Orchestrator) fanOut(ctx context.Context, specs []config.DependencySpec, failFast bool, fn task) (*Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.jobs())

	results := make(chan DependencyResult, len(specs))
	for _, spec := range specs {
		g.Go(func() error {
			res := fn(gctx, spec)
			results <- res
			if failFast {
				if m := res.Mismatch(); m != nil {
					return m
				}
			}
			return nil
		})
	}

	err := g.Wait()
	close(results)

	out := &Result{}
	for res := range results {
		out.Dependencies = append(out.Dependencies, res)
	}
	sort.Slice(out.Dependencies, func(i, j int) bool {
		return out.Dependencies[i].Name < out.Dependencies[j].Name
	})
	return out, err
}

// Install brings every dependency to its locked state, installing and
// locking the ones that have no record yet.
//
// Per-dependency failures are reported in the Result and do not stop
// siblings. A lock mismatch is different: it cancels the whole run and is
// returned as a *lock.MismatchError, after which the caller must not build
// the primary project.
func (o *Orchestrator) Install(ctx context.Context, specs []config.DependencySpec) (*Result, error) {
	return o.fanOut(ctx, specs, true, o.install)
}

func (o *Orchestrator) install(ctx context.Context, spec config.DependencySpec) DependencyResult {
	res := DependencyResult{Name: spec.Name, State: Unresolved}
	log := o.logger("install").With("dep", spec.Name)

	if spec.IsLocal() {
		log.Info("local dependency, nothing to install", "path", spec.LocalPath)
		res.State = UpToDate
		res.Local = true
		return res
	}
	if err := layout.ValidateName(spec.Name); err != nil {
		return o.abort(res, PhaseResolve, err)
	}
	if err := ctx.Err(); err != nil {
		return o.abort(res, PhaseResolve, err)
	}

	res.State = Resolving
	dir := o.Layout.DepDir(spec.Name)
	revision, err := o.target(ctx, spec, dir)
	if err != nil {
		return o.abort(res, PhaseResolve, err)
	}
	res.Revision = revision

	hasLock, err := o.Locks.Exists(spec.Name)
	if err != nil {
		return o.abort(res, PhaseLock, err)
	}

	if hasLock {
		res.State = Verifying
		hash, phase, err := o.checkoutAndHash(ctx, spec.Name, dir, revision)
		if err != nil {
			return o.abort(res, phase, err)
		}
		res.Hash = hash

		v := o.Locks.VerifyStrict(spec.Name, revision, hash)
		if !v.OK() {
			o.logger("lock").Error("lock mismatch",
				"dep", spec.Name, "reason", v.Outcome,
				"expected", v.ExpectedValue(), "found", v.FoundValue())
			res.State = Aborted
			res.Err = v.Err()
			return res
		}
		o.logger("lock").Info("verified", "dep", spec.Name, "rev", short(revision))
		res.State = UpToDate
		return res
	}

	res.State = Installing
	hash, phase, err := o.checkoutAndHash(ctx, spec.Name, dir, revision)
	if err != nil {
		return o.abort(res, phase, err)
	}
	res.Hash = hash

	if err := o.Locks.Write(spec.Name, revision, hash); err != nil {
		return o.abort(res, PhaseLock, err)
	}
	o.logger("lock").Info("locked", "dep", spec.Name, "rev", short(revision), "sha256", short(hash))

	return o.build(ctx, res, spec, dir)
}

// target clones the dependency if needed and returns the revision this run
// installs. An untagged dependency that is already locked stays at its
// locked revision; only Update moves it.
func (o *Orchestrator) target(ctx context.Context, spec config.DependencySpec, dir string) (string, error) {
	log := o.logger("git").With("dep", spec.Name)

	log.Info("fetching", "url", spec.RemoteURL)
	if err := o.Git.CloneIfMissing(ctx, spec.RemoteURL, dir); err != nil {
		return "", err
	}

	if spec.Ref == "" {
		if e, err := o.Locks.Read(spec.Name); err == nil {
			log.Debug("untagged, keeping locked revision", "rev", short(e.Revision))
			return e.Revision, nil
		}
	}

	revision, err := o.Git.ResolveRevision(ctx, dir, spec.Ref)
	if err != nil {
		return "", err
	}
	ref := spec.Ref
	if ref == "" {
		ref = "HEAD"
	}
	log.Info("resolved", "ref", ref, "rev", short(revision))
	return revision, nil
}

func (o *Orchestrator) checkoutAndHash(ctx context.Context, name, dir, revision string) (string, Phase, error) {
	o.logger("git").Info("checking out", "dep", name, "rev", short(revision))
	if err := o.Git.CheckoutCommit(ctx, dir, revision); err != nil {
		return "", PhaseCheckout, err
	}
	hash, err := o.hash(ctx, dir)
	if err != nil {
		return "", PhaseHash, err
	}
	return hash, "", nil
}

// hash digests the files git tracks in the checkout, so outputs an in-tree
// build leaves behind never reach the lock.
func (o *Orchestrator) hash(ctx context.Context, dir string) (string, error) {
	files, err := o.Git.TrackedFiles(ctx, dir)
	if err != nil {
		return "", err
	}
	return hashing.Sum(dir, files)
}

func (o *Orchestrator) build(ctx context.Context, res DependencyResult, spec config.DependencySpec, dir string) DependencyResult {
	log := o.logger("build").With("dep", spec.Name)

	kind, err := o.Builder.Build(ctx, dir, o.Layout.DepBuildDir(spec.Name), spec.BuildArgs)
	res.Backend = kind
	switch {
	case errors.Is(err, build.ErrNotBuildable):
		log.Info("no build system detected, skipping build")
	case err != nil:
		// A record for a tree that never built would read as up to date on
		// the next install, so the attempt starts over instead.
		if rerr := o.Locks.Remove(spec.Name); rerr != nil {
			log.Warn("could not remove lock after failed build", "err", rerr)
		} else {
			log.Warn("lock removed after failed build, the next install starts over")
		}
		return o.abort(res, PhaseBuild, err)
	default:
		log.Info("built", "backend", kind)
	}
	res.State = Built
	return res
}

func (o *Orchestrator) abort(res DependencyResult, phase Phase, err error) DependencyResult {
	o.logger(string(phase)).Error("failed", "dep", res.Name, "err", err)
	res.State = Aborted
	res.Err = &DependencyError{Name: res.Name, Phase: phase, Err: err}
	return res
}

// selectSpecs narrows specs to names, preserving order. Unknown names are
// an error.
func selectSpecs(specs []config.DependencySpec, names []string) ([]config.DependencySpec, error) {
	if len(names) == 0 {
		return specs, nil
	}
	byName := make(map[string]config.DependencySpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}
	out := make([]config.DependencySpec, 0, len(names))
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("dependency '%s' not found in manifest", n)
		}
		out = append(out, s)
	}
	return out, nil
}

func short(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
