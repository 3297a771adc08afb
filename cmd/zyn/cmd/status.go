package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zynbuild/zyn/internal/build"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dependencies, their locks and detected build systems",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		statuses, err := c.Status()
		if err != nil {
			return err
		}
		if len(statuses) == 0 {
			info("No dependencies declared.")
			return nil
		}

		for _, st := range statuses {
			kind, rev := "git", paint(warningStyle, "unlocked")
			switch {
			case st.Local:
				kind, rev = "path", paint(mutedStyle, "-")
			case st.LockErr != nil:
				rev = paint(errorStyle, "malformed lock")
			case st.Locked:
				rev = short(st.Lock.Revision)
			}

			installed := paint(warningStyle, "not installed")
			if st.Installed {
				installed = paint(successStyle, "installed")
			}
			backend := ""
			if st.Backend != build.None {
				backend = paint(mutedStyle, "  "+st.Backend.String())
			}
			info("  %s %-4s  %-12s  %s%s", paint(nameStyle, st.Name), kind, rev, installed, backend)
			info("    %s", paint(mutedStyle, st.Source))
		}

		orphans, err := c.Orphans()
		if err != nil {
			return err
		}
		if len(orphans) > 0 {
			info("")
			info("%s", paint(warningStyle, "Not declared in the manifest:"))
			for _, p := range orphans {
				info("  %s", p)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
