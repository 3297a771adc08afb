package cmd

import (
	"fmt"
	"os"

	"github.com/zynbuild/zyn/internal/build"
	"github.com/zynbuild/zyn/pkg/zyn"
)

// newClient opens the project selected by the global flags. Progress
// records go to stderr; command summaries go to stdout.
func newClient() (*zyn.Client, error) {
	level := settings.LogLevel
	if quiet {
		level = "error"
	}
	return zyn.New(zyn.Options{
		ManifestPath: manifestPath,
		Root:         settings.Root,
		Jobs:         settings.Jobs,
		Log:          os.Stderr,
		LogLevel:     level,
	})
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, paint(errorStyle, "error: ")+format+"\n", args...)
}

func short(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// printResult prints one line per dependency and a totals line.
func printResult(res *zyn.InstallResult) {
	if res == nil {
		return
	}
	for _, d := range res.Dependencies {
		name := paint(nameStyle, d.Name)
		switch {
		case d.Local:
			info("  %s %s  %s", paint(mutedStyle, markSkip), name, paint(mutedStyle, "local"))
		case d.State == zyn.Aborted:
			info("  %s %s  %s", paint(errorStyle, markFail), name, paint(errorStyle, "aborted"))
		case d.Changed && d.Previous.Revision != "":
			info("  %s %s  %s → %s", paint(successStyle, markOK), name,
				short(d.Previous.Revision), paint(accentStyle, short(d.Revision)))
		default:
			line := fmt.Sprintf("%-10s %s", d.State, short(d.Revision))
			if d.Backend != build.None {
				line += paint(mutedStyle, "  ("+d.Backend.String()+")")
			}
			info("  %s %s  %s", paint(successStyle, markOK), name, line)
		}
	}
	for _, d := range res.Failed() {
		errorf("%v", d.Err)
	}

	info("")
	info("%s %d built, %d up to date, %d failed.",
		paint(titleStyle, "Done:"), res.Count(zyn.Built), res.Count(zyn.UpToDate), len(res.Failed()))
}

// checkFailures turns aborted dependencies into an error when
// --fail-on-error is set.
func checkFailures(res *zyn.InstallResult) error {
	if res == nil || !settings.FailOnError {
		return nil
	}
	if n := len(res.Failed()); n > 0 {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%d dependency(s) failed", n)}
	}
	return nil
}
