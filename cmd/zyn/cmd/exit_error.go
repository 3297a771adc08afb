package cmd

import (
	"errors"
	"fmt"

	"github.com/zynbuild/zyn/pkg/zyn"
)

// Exit codes.
const (
	ExitFailure  = 1
	ExitMismatch = 2
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// withExitCode maps a lock mismatch anywhere in err's chain to
// ExitMismatch. Other errors are returned unchanged and exit with
// ExitFailure.
func withExitCode(err error) error {
	if err == nil {
		return nil
	}
	var mismatch *zyn.MismatchError
	if errors.As(err, &mismatch) {
		return &ExitError{Code: ExitMismatch, Err: err}
	}
	return err
}
