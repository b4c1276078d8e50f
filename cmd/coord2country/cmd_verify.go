package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreiashu/coord2country"
	"github.com/andreiashu/coord2country/internal/fixture"
)

var verifyKnown bool

var verifyCmd = &cobra.Command{
	Use:   "verify [FIXTURE.csv]",
	Short: "Check the map against a fixture of known coordinates",
	Long: `Look up every row of a fixture (index,country_name,latitude,longitude) and
report the rows that resolve to another country. Rows with an empty index are
skipped. Without a fixture, --known checks the built-in reference points.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !verifyKnown {
			return fmt.Errorf("a fixture file or --known is required")
		}
		out := cmd.OutOrStdout()

		loc, err := loadLocator()
		if err != nil {
			return err
		}

		if verifyKnown {
			if err := loc.Validate(coord2country.KnownPoints); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d reference points OK\n", len(coord2country.KnownPoints))
		}
		if len(args) == 0 {
			return nil
		}

		rows, err := fixture.ReadFile(args[0])
		if err != nil {
			return err
		}
		rep := fixture.Verify(loc, loc.Table(), rows)
		for _, f := range rep.Failures {
			fmt.Fprintln(out, f)
		}
		fmt.Fprintf(out, "%d checked, %d skipped, %d failed\n", rep.Checked, rep.Skipped, len(rep.Failures))
		if !rep.OK() {
			return fmt.Errorf("%d fixture rows failed", len(rep.Failures))
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyKnown, "known", false, "also check the built-in reference points")
	rootCmd.AddCommand(verifyCmd)
}
