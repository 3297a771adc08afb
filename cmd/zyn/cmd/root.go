// Package cmd implements the zyn command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/zynbuild/zyn/internal/config"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	manifestPath string
	quiet        bool

	v        = config.NewViper()
	settings = config.DefaultSettings()
)

var rootCmd = &cobra.Command{
	Use:   "zyn",
	Short: "Package manager and build orchestrator for C and C++",
	Long: `zyn installs a project's git dependencies at pinned revisions, verifies
them against per-dependency lock records, builds them with the build system
they ship (Ninja, CMake, Autotools or Make) and compiles the project itself
when its sources change.

A lock mismatch stops everything: nothing is built and zyn exits with code 2.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSettings(v)
		if err != nil {
			return err
		}
		settings = s
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&manifestPath, "manifest", "m", "", "path to zyn.toml or zyn.yaml (default: search upward)")
	flags.String("root", settings.Root, "state directory for checkouts, locks and build outputs")
	flags.IntP("jobs", "j", settings.Jobs, "dependencies processed concurrently")
	flags.String("log-level", settings.LogLevel, "debug, info, warn or error")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("fail-on-error", false, "exit non-zero when any dependency fails")
	flags.BoolVarP(&quiet, "quiet", "q", false, "print errors only")

	for key, flag := range map[string]string{
		"root":          "root",
		"jobs":          "jobs",
		"log_level":     "log-level",
		"no_color":      "no-color",
		"fail_on_error": "fail-on-error",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
}

// Execute runs the root command and exits with the code carried by an
// *ExitError, or 1 for any other error.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func versionString() string {
	if version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}
