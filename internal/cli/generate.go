package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newGenerateCmd())
}

func newGenerateCmd() *cobra.Command {
	var (
		shopID uint64
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate clearance bundles for one or all shops",
		Long: `Pair each shop's bestsellers with its dead stock and store the best
candidates as DRAFT bundles, replacing the previous auto-generated set.

Example:
  bundlectl generate --shop 42
  bundlectl generate --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withEngine(ctx, false, func(eng *engine) error {
				shops, err := shopTargets(ctx, eng, shopID, all, "auto_generate_bundles")
				if err != nil {
					return err
				}

				return forEachShop(ctx, shops, concurrency, func(ctx context.Context, id uint64) error {
					bundles, err := eng.generation.GenerateForShop(ctx, id)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "shop %d: %d bundles generated\n", id, len(bundles))
					return nil
				})
			})
		},
	}

	cmd.Flags().Uint64Var(&shopID, "shop", 0, "shop id")
	cmd.Flags().BoolVar(&all, "all", false, "every shop with auto generation enabled")

	return cmd
}
