package engine

import (
	"context"

	"github.com/zynbuild/zyn/internal/config"
	"github.com/zynbuild/zyn/internal/layout"
	"github.com/zynbuild/zyn/internal/lock"
)

// Update re-resolves the named dependencies (all when names is empty)
// regardless of their locks. A dependency whose revision or content hash
// moved gets a new lock and is rebuilt; one that did not is left alone.
// Local dependencies are skipped.
func (o *Orchestrator) Update(ctx context.Context, specs []config.DependencySpec, names []string) (*Result, error) {
	selected, err := selectSpecs(specs, names)
	if err != nil {
		return nil, err
	}
	return o.fanOut(ctx, selected, false, o.update)
}

func (o *Orchestrator) update(ctx context.Context, spec config.DependencySpec) DependencyResult {
	res := DependencyResult{Name: spec.Name, State: Unresolved}
	log := o.logger("update").With("dep", spec.Name)

	if spec.IsLocal() {
		log.Info("local dependency, nothing to update")
		res.State = UpToDate
		res.Local = true
		return res
	}
	if err := layout.ValidateName(spec.Name); err != nil {
		return o.abort(res, PhaseResolve, err)
	}

	res.State = Resolving
	dir := o.Layout.DepDir(spec.Name)
	if err := o.Git.CloneIfMissing(ctx, spec.RemoteURL, dir); err != nil {
		return o.abort(res, PhaseResolve, err)
	}
	revision, err := o.Git.ResolveRevision(ctx, dir, spec.Ref)
	if err != nil {
		return o.abort(res, PhaseResolve, err)
	}
	res.Revision = revision

	res.State = Installing
	hash, phase, err := o.checkoutAndHash(ctx, spec.Name, dir, revision)
	if err != nil {
		return o.abort(res, phase, err)
	}
	res.Hash = hash

	current := lock.Entry{Revision: revision, Hash: hash}
	if prev, err := o.Locks.Read(spec.Name); err == nil {
		res.Previous = prev
		if prev == current {
			log.Info("already at latest", "rev", short(revision))
			res.State = UpToDate
			return res
		}
	}

	if err := o.Locks.Write(spec.Name, revision, hash); err != nil {
		return o.abort(res, PhaseLock, err)
	}
	res.Changed = true
	if res.Previous.Revision != "" {
		log.Info("lock updated", "from", short(res.Previous.Revision), "to", short(revision))
	} else {
		log.Info("locked", "rev", short(revision))
	}

	return o.build(ctx, res, spec, dir)
}
