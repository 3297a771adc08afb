package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zynbuild/zyn/pkg/zyn"
)

var (
	buildProfile string
	buildForce   bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Install dependencies and compile the project if it changed",
	Long: `Runs 'zyn install', then compiles the project when the rebuild cache reports
the artifact stale: missing, never fingerprinted, sources or headers changed,
or a local dependency modified after the last build.

Nothing is compiled after a lock mismatch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		res, err := c.Build(cmd.Context(), zyn.BuildOptions{Profile: buildProfile, Force: buildForce})
		_ = c.Close()
		if err != nil {
			return withExitCode(err)
		}

		if res.Compiled {
			info("%s %s  %s", paint(successStyle, markOK), paint(titleStyle, res.Artifact), paint(mutedStyle, string(res.Reason)))
		} else {
			info("%s %s  %s", paint(mutedStyle, markSkip), res.Artifact, paint(mutedStyle, "up to date"))
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildProfile, "profile", "p", "", "compiler flag profile from [profiles]")
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "compile even when up to date")
	rootCmd.AddCommand(buildCmd)
}
