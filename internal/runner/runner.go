// Package runner executes external processes (git, cmake, make, ninja, the
// compiler) behind a small interface so callers can be tested without
// spawning anything.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command describes a single child process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string   // working directory, empty = current
	Env  []string // extra KEY=VALUE pairs appended to the parent environment

	// Stdin, Stdout and Stderr, when set, are attached to the process by Run
	// instead of capturing its output.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command the way a user would type it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Runner runs commands and returns their captured output.
type Runner interface {
	// Output runs cmd and returns its trimmed stdout. A non-zero exit is
	// reported as *ExecError.
	Output(ctx context.Context, cmd Command) (string, error)

	// Run runs cmd for its side effects. Output is captured for diagnostics
	// only. A non-zero exit is reported as *ExecError.
	Run(ctx context.Context, cmd Command) error
}

// ExecError is returned when a child process fails to start or exits non-zero.
type ExecError struct {
	Command  Command
	ExitCode int // -1 when the process never started
	Output   string
	Err      error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s: exit %d", e.Command, e.ExitCode)
	if e.ExitCode < 0 {
		msg = fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + lastLines(out, 5)
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Exec implements Runner with os/exec.
type Exec struct {
	// Env is appended to every command's environment, before Command.Env.
	Env []string
}

// NewExec returns an Exec runner that never prompts for git credentials.
func NewExec() *Exec {
	return &Exec{Env: []string{"GIT_TERMINAL_PROMPT=0"}}
}

func (r *Exec) Output(ctx context.Context, c Command) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := r.command(ctx, c)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", newExecError(c, err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (r *Exec) Run(ctx context.Context, c Command) error {
	cmd := r.command(ctx, c)
	if c.Stdout != nil || c.Stderr != nil {
		cmd.Stdin = c.Stdin
		cmd.Stdout = c.Stdout
		cmd.Stderr = c.Stderr
		if err := cmd.Run(); err != nil {
			return newExecError(c, err, "")
		}
		return nil
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return newExecError(c, err, string(output))
	}
	return nil
}

func (r *Exec) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(r.Env) > 0 || len(c.Env) > 0 {
		env := append(os.Environ(), r.Env...)
		cmd.Env = append(env, c.Env...)
	}
	return cmd
}

func newExecError(c Command, err error, output string) *ExecError {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &ExecError{Command: c, ExitCode: code, Output: output, Err: err}
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
