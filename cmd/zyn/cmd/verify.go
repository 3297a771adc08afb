package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zynbuild/zyn/internal/lock"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [dependency...]",
	Short: "Check installed dependencies against their lock records",
	Long: `Re-hashes each checked-out git dependency and compares its revision and
content hash with its lock record. Nothing is fetched or checked out.

Exit 0 if everything matches, 2 if any record disagrees or is malformed,
1 if a dependency is not installed or has no record.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		report, err := c.Verify(cmd.Context(), args...)
		_ = c.Close()
		if err != nil {
			return err
		}

		mismatches, missing := 0, 0
		for _, v := range report.Verifications {
			name := paint(nameStyle, v.Name)
			switch v.Outcome {
			case lock.Match:
				info("  %s %s  %s", paint(successStyle, markOK), name, short(v.Expected.Revision))
			case lock.Missing:
				missing++
				info("  %s %s  %s", paint(warningStyle, markFail), name, paint(warningStyle, v.Detail))
			default:
				mismatches++
				info("  %s %s  %s: expected %s, found %s", paint(errorStyle, markFail), name,
					v.Outcome, v.ExpectedValue(), v.FoundValue())
			}
		}

		switch {
		case mismatches > 0:
			return &ExitError{Code: ExitMismatch, Err: fmt.Errorf("%d lock record(s) do not match", mismatches)}
		case missing > 0:
			return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%d dependency(s) not verifiable", missing)}
		}
		info("\nAll dependencies match their lock records.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
