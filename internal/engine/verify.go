package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/zynbuild/zyn/internal/config"
	"github.com/zynbuild/zyn/internal/lock"
)

// VerifyReport lists the strict verification of each git dependency,
// sorted by name.
type VerifyReport struct {
	Verifications []lock.Verification
}

// OK reports whether every verification matched.
func (r *VerifyReport) OK() bool {
	for _, v := range r.Verifications {
		if !v.OK() {
			return false
		}
	}
	return true
}

// Verify re-hashes the existing checkouts of the named git dependencies
// (all when names is empty) and compares them with their locks. It never
// fetches or checks out; a dependency without a checkout verifies as
// missing.
func (o *Orchestrator) Verify(ctx context.Context, specs []config.DependencySpec, names []string) (*VerifyReport, error) {
	selected, err := selectSpecs(specs, names)
	if err != nil {
		return nil, err
	}

	var git []config.DependencySpec
	for _, s := range selected {
		if !s.IsLocal() {
			git = append(git, s)
		}
	}

	out := make([]lock.Verification, len(git))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.jobs())
	for i, spec := range git {
		g.Go(func() error {
			out[i] = o.verifyOne(gctx, spec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return &VerifyReport{Verifications: out}, nil
}

func (o *Orchestrator) verifyOne(ctx context.Context, spec config.DependencySpec) lock.Verification {
	log := o.logger("verify").With("dep", spec.Name)
	dir := o.Layout.DepDir(spec.Name)

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		log.Warn("not installed")
		return lock.Verification{Name: spec.Name, Outcome: lock.Missing, Detail: "not installed"}
	}

	head, err := o.Git.Head(ctx, dir)
	if err != nil {
		log.Error("cannot read checkout", "err", err)
		return lock.Verification{Name: spec.Name, Outcome: lock.Malformed, Detail: err.Error()}
	}
	hash, err := o.hash(ctx, dir)
	if err != nil {
		log.Error("cannot hash checkout", "err", err)
		return lock.Verification{Name: spec.Name, Outcome: lock.Malformed, Detail: err.Error()}
	}

	v := o.Locks.VerifyStrict(spec.Name, head, hash)
	if v.OK() {
		log.Info("verified", "rev", short(head))
	} else {
		log.Error("lock mismatch", "reason", v.Outcome, "expected", v.ExpectedValue(), "found", v.FoundValue())
	}
	return v
}
