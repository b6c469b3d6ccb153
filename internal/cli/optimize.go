package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newOptimizeCmd())
}

func newOptimizeCmd() *cobra.Command {
	var (
		shopID uint64
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Move active bundle discounts to their revenue-maximizing level",
		Long: `Rebuild each active bundle's conversion history from storefront events
and apply the discount that maximizes expected revenue above the shop's
margin floor.

Example:
  bundlectl optimize --shop 42
  bundlectl optimize --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withEngine(ctx, false, func(eng *engine) error {
				shops, err := shopTargets(ctx, eng, shopID, all, "auto_optimize_discounts")
				if err != nil {
					return err
				}

				now := time.Now()
				return forEachShop(ctx, shops, concurrency, func(ctx context.Context, id uint64) error {
					outcomes, err := eng.optimization.OptimizeShop(ctx, id, now)
					if err != nil {
						return err
					}
					for _, o := range outcomes {
						fmt.Fprintf(cmd.OutOrStdout(), "shop %d bundle %s: %s (%.0f%% -> %.0f%%)\n",
							id, o.BundleID, o.Reason, o.PreviousDiscountPct, o.RecommendedDiscountPct)
					}
					return nil
				})
			})
		},
	}

	cmd.Flags().Uint64Var(&shopID, "shop", 0, "shop id")
	cmd.Flags().BoolVar(&all, "all", false, "every shop with auto optimization enabled")

	return cmd
}
