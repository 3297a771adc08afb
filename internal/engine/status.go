package engine

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zynbuild/zyn/internal/build"
	"github.com/zynbuild/zyn/internal/config"
	"github.com/zynbuild/zyn/internal/lock"
)

// DependencyStatus is an offline snapshot of one dependency.
type DependencyStatus struct {
	Name      string
	Local     bool
	Source    string // url[@ref] or local path
	Installed bool   // a checkout (or the local directory) exists
	Locked    bool
	Lock      lock.Entry
	LockErr   error // set when a record exists but cannot be parsed
	Backend   build.Kind
}

// Status reports every dependency without touching the network.
func (o *Orchestrator) Status(specs []config.DependencySpec) ([]DependencyStatus, error) {
	out := make([]DependencyStatus, 0, len(specs))
	for _, spec := range specs {
		st := DependencyStatus{Name: spec.Name, Local: spec.IsLocal(), Source: spec.String()}

		dir := spec.LocalPath
		if !st.Local {
			dir = o.Layout.DepDir(spec.Name)
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			st.Installed = true
			if kind, err := build.Detect(dir); err == nil {
				st.Backend = kind
			}
		}

		if !st.Local {
			exists, err := o.Locks.Exists(spec.Name)
			if err != nil {
				return nil, err
			}
			if exists {
				st.Locked = true
				st.Lock, st.LockErr = o.Locks.Read(spec.Name)
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// Orphans returns lock records and checkouts that no dependency declares.
func (o *Orchestrator) Orphans(specs []config.DependencySpec) ([]string, error) {
	declared := make(map[string]bool, len(specs))
	for _, s := range specs {
		if !s.IsLocal() {
			declared[s.Name] = true
		}
	}

	var orphans []string
	names, err := o.Locks.Names()
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if !declared[n] {
			orphans = append(orphans, o.Locks.Path(n))
		}
	}

	entries, err := os.ReadDir(o.Layout.DepsDir())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() && !declared[e.Name()] {
			orphans = append(orphans, filepath.Join(o.Layout.DepsDir(), e.Name()))
		}
	}
	return orphans, nil
}
