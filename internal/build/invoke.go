package build

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/zynbuild/zyn/internal/console"
	"github.com/zynbuild/zyn/internal/runner"
)

// ErrNotBuildable is returned for trees without a recognized build system.
// Callers treat it as a skip.
var ErrNotBuildable = errors.New("no build system detected")

// Error reports the backend step that failed.
type Error struct {
	Kind Kind
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s step failed: %v", e.Kind, e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Invoker runs build plans.
type Invoker struct {
	Runner runner.Runner
	Log    *console.Logger
}

// NewInvoker returns an Invoker that logs through log.
func NewInvoker(r runner.Runner, log *console.Logger) *Invoker {
	return &Invoker{Runner: r, Log: log}
}

// Build detects the backend of src and invokes it. It returns the detected
// kind; a tree without a backend returns None and ErrNotBuildable.
func (inv *Invoker) Build(ctx context.Context, src, buildDir string, args []string) (Kind, error) {
	kind, err := Detect(src)
	if err != nil {
		return None, err
	}
	return kind, inv.Invoke(ctx, kind, src, buildDir, args)
}

// Invoke runs every step of kind's plan in order, stopping at the first
// failure.
func (inv *Invoker) Invoke(ctx context.Context, kind Kind, src, buildDir string, args []string) error {
	steps, err := Plan(kind, src, buildDir, args)
	if err != nil {
		return err
	}

	if kind == Ninja || kind == CMake {
		if err := os.MkdirAll(buildDir, 0755); err != nil {
			return &Error{Kind: kind, Step: "prepare", Err: err}
		}
	}

	for _, step := range steps {
		if inv.Log != nil {
			inv.Log.Info("running "+step.Name, "backend", kind, "cmd", step.Command.String())
		}
		if err := inv.Runner.Run(ctx, step.Command); err != nil {
			return &Error{Kind: kind, Step: step.Name, Err: err}
		}
	}
	return nil
}
