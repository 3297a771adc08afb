package engine

import (
	"errors"
	"fmt"

	"github.com/zynbuild/zyn/internal/build"
	"github.com/zynbuild/zyn/internal/lock"
)

// State is a dependency's position in the install state machine.
type State int

const (
	Unresolved State = iota
	Resolving
	Verifying
	Installing
	UpToDate
	Built
	Aborted
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolving:
		return "resolving"
	case Verifying:
		return "verifying"
	case Installing:
		return "installing"
	case UpToDate:
		return "up to date"
	case Built:
		return "built"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Phase names the step a dependency task was in when it failed.
type Phase string

const (
	PhaseResolve  Phase = "resolve"
	PhaseCheckout Phase = "checkout"
	PhaseHash     Phase = "hash"
	PhaseVerify   Phase = "verify"
	PhaseLock     Phase = "lock"
	PhaseBuild    Phase = "build"
)

// DependencyError ties a failure to the dependency and phase it came from.
type DependencyError struct {
	Name  string
	Phase Phase
	Err   error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Name, e.Phase, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// DependencyResult is the terminal outcome of one dependency task.
type DependencyResult struct {
	Name     string
	State    State
	Local    bool // declared by path; never resolved, locked or built
	Revision string
	Hash     string
	Backend  build.Kind
	Changed  bool       // update rewrote the lock
	Previous lock.Entry // lock before an update, zero if there was none
	Err      error
}

// Mismatch returns the lock mismatch that aborted this dependency, if any.
func (r DependencyResult) Mismatch() *lock.MismatchError {
	var m *lock.MismatchError
	if errors.As(r.Err, &m) {
		return m
	}
	return nil
}

// Result aggregates every dependency of a bulk install or update, sorted by
// name.
type Result struct {
	Dependencies []DependencyResult
}

// Count returns how many dependencies ended in state.
func (r *Result) Count(state State) int {
	n := 0
	for _, d := range r.Dependencies {
		if d.State == state {
			n++
		}
	}
	return n
}

// Failed returns the aborted dependencies.
func (r *Result) Failed() []DependencyResult {
	var out []DependencyResult
	for _, d := range r.Dependencies {
		if d.State == Aborted {
			out = append(out, d)
		}
	}
	return out
}

// Get returns the result for name.
func (r *Result) Get(name string) (DependencyResult, bool) {
	for _, d := range r.Dependencies {
		if d.Name == name {
			return d, true
		}
	}
	return DependencyResult{}, false
}
