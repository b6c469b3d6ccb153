package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"bundleBoost/internal/middleware"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newTokenCmd())
}

func newTokenCmd() *cobra.Command {
	var (
		shopID uint64
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a shop",
		Long: `Sign a bearer token for the Bundle Boost API with JWT_SECRET.

Example:
  bundlectl token --shop 42
  bundlectl token --shop 1 --role admin --ttl 1h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			token, err := middleware.IssueToken([]byte(secret), shopID, role, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&shopID, "shop", 0, "shop id (required)")
	cmd.Flags().StringVar(&role, "role", "merchant", "merchant or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("shop")

	return cmd
}
