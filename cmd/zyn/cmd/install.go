package cmd

import (
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install [dependency...]",
	Short: "Install dependencies at their locked revisions",
	Long: `Clones every git dependency that is not checked out yet, checks out its
target revision and compares the tree with its lock record. Dependencies
without a record are built and locked. A dependency whose tree or revision
disagrees with its record aborts the whole run with exit code 2.

Untagged dependencies that already have a record stay on the locked revision;
use 'zyn update' to move them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		res, err := c.Install(cmd.Context(), args...)
		_ = c.Close()
		printResult(res)
		if err != nil {
			return withExitCode(err)
		}
		return checkFailures(res)
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
