package cmd

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [dependency...]",
	Short: "Move dependencies to their latest revision and rewrite their locks",
	Long: `Re-resolves the named git dependencies (all when none are given) against
their remotes: the tag or branch when one is set, the remote HEAD otherwise.
Dependencies whose revision or tree changed are rebuilt and their lock
records rewritten. A failure in one dependency does not stop the others.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		res, err := c.Update(cmd.Context(), args...)
		_ = c.Close()
		if err != nil {
			return withExitCode(err)
		}
		printResult(res)
		return checkFailures(res)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
