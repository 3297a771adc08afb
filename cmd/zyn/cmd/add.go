package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var addPath string

var addCmd = &cobra.Command{
	Use:   "add [url[@ref]]",
	Short: "Declare a new dependency and install it",
	Long: `Adds a git dependency named after its repository and installs it, or with
--path adds a local directory that is used in place without locking.

Examples:
  zyn add https://github.com/fmtlib/fmt.git@10.2.1
  zyn add --path ../mylib`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (addPath == "") == (len(args) == 0) {
			return errors.New("give either a repository URL or --path")
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		if addPath != "" {
			name, err := c.AddPath(addPath)
			if err != nil {
				return err
			}
			info("Added local dependency %s (%s)", paint(accentStyle, name), addPath)
			return nil
		}

		name, res, err := c.AddGit(cmd.Context(), args[0])
		_ = c.Close()
		if name != "" {
			info("Added %s", paint(accentStyle, name))
		}
		printResult(res)
		if err != nil {
			return withExitCode(err)
		}
		return checkFailures(res)
	},
}

func init() {
	addCmd.Flags().StringVar(&addPath, "path", "", "local dependency directory")
	rootCmd.AddCommand(addCmd)
}
