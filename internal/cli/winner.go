package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newWinnerCmd())
}

func newWinnerCmd() *cobra.Command {
	var testID string

	cmd := &cobra.Command{
		Use:   "winner",
		Short: "Show the current verdict of an experiment",
		Long: `Print live counters and the significance verdict of an experiment
without stopping it.

Example:
  bundlectl winner --test 3f0c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withEngine(ctx, true, func(eng *engine) error {
				res, err := eng.experiments.Results(ctx, testID)
				if err != nil {
					return fmt.Errorf("failed to load results: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "test %s (%s)\n", res.TestID, res.Status)
				fmt.Fprintf(out, "  control: %d/%d  rate %.4f  [%.4f, %.4f]\n",
					res.Control.Conversions, res.Control.Impressions, res.Control.ConversionRate,
					res.Control.Interval.Lower, res.Control.Interval.Upper)
				fmt.Fprintf(out, "  variant: %d/%d  rate %.4f  [%.4f, %.4f]\n",
					res.Variant.Conversions, res.Variant.Impressions, res.Variant.ConversionRate,
					res.Variant.Interval.Lower, res.Variant.Interval.Upper)

				if res.Verdict.Winner == nil {
					fmt.Fprintf(out, "no winner yet (confidence %.3f)\n", res.Verdict.Confidence)
					return nil
				}
				fmt.Fprintf(out, "winner: %s (confidence %.3f)\n", *res.Verdict.Winner, res.Verdict.Confidence)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&testID, "test", "", "experiment id (required)")
	_ = cmd.MarkFlagRequired("test")

	return cmd
}
