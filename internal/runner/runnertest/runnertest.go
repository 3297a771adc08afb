// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/zynbuild/zyn/internal/runner"
)

// HandlerFunc produces the outcome of a matched command.
type HandlerFunc func(cmd runner.Command) (string, error)

type rule struct {
	match string
	fn    HandlerFunc
}

// Recorder records every command it is asked to run and answers from
// registered rules. Unmatched commands succeed with empty output.
// It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []runner.Command
	rules []rule
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

// On answers commands whose rendered form contains match with output.
// Later registrations take precedence.
func (r *Recorder) On(match, output string) *Recorder {
	return r.OnFunc(match, func(runner.Command) (string, error) { return output, nil })
}

// Fail makes commands containing match exit with code.
func (r *Recorder) Fail(match string, code int) *Recorder {
	return r.OnFunc(match, func(cmd runner.Command) (string, error) {
		return "", &runner.ExecError{
			Command:  cmd,
			ExitCode: code,
			Output:   "scripted failure",
			Err:      fmt.Errorf("exit status %d", code),
		}
	})
}

// OnFunc registers fn for commands containing match.
func (r *Recorder) OnFunc(match string, fn HandlerFunc) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{match: match, fn: fn})
	return r
}

func (r *Recorder) Output(ctx context.Context, cmd runner.Command) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &runner.ExecError{Command: cmd, ExitCode: -1, Err: err}
	}
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	fn := r.lookup(cmd.String())
	r.mu.Unlock()
	if fn == nil {
		return "", nil
	}
	return fn(cmd)
}

func (r *Recorder) Run(ctx context.Context, cmd runner.Command) error {
	_, err := r.Output(ctx, cmd)
	return err
}

func (r *Recorder) lookup(line string) HandlerFunc {
	for i := len(r.rules) - 1; i >= 0; i-- {
		if strings.Contains(line, r.rules[i].match) {
			return r.rules[i].fn
		}
	}
	return nil
}

// Calls returns a copy of every recorded command in invocation order.
func (r *Recorder) Calls() []runner.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]runner.Command, len(r.calls))
	copy(out, r.calls)
	return out
}

// Lines returns the rendered form of every recorded command.
func (r *Recorder) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Count returns how many recorded commands contain match.
func (r *Recorder) Count(match string) int {
	n := 0
	for _, line := range r.Lines() {
		if strings.Contains(line, match) {
			n++
		}
	}
	return n
}
