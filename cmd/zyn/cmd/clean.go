package cmd

import (
	"github.com/spf13/cobra"
)

var cleanAll bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build outputs",
	Long: `Removes the project build directory, every dependency build directory and
the rebuild cache. With --all the dependency checkouts are removed too.
Lock records are always kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		removed, err := c.Clean(cmd.Context(), cleanAll)
		_ = c.Close()
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			info("Nothing to clean.")
			return nil
		}
		for _, dir := range removed {
			info("  removed %s", dir)
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "also remove dependency checkouts")
	rootCmd.AddCommand(cleanCmd)
}
