package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zynbuild/zyn/pkg/zyn"
)

var runProfile string

var runCmd = &cobra.Command{
	Use:   "run [-- args...]",
	Short: "Build the project and run it",
	Long: `Builds like 'zyn build' and then executes the artifact from the project
root. Arguments after '--' are passed to the program.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		return withExitCode(c.Run(cmd.Context(), zyn.BuildOptions{Profile: runProfile}, args...))
	},
}

func init() {
	runCmd.Flags().StringVarP(&runProfile, "profile", "p", "", "compiler flag profile from [profiles]")
	rootCmd.AddCommand(runCmd)
}
