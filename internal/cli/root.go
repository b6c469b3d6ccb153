package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bundleBoost/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	concurrency int
)

var rootCmd = &cobra.Command{
	Use:   "bundlectl",
	Short: "Bundle Boost engine jobs",
	Long: `bundlectl runs the Bundle Boost engine jobs outside the API server.

It reads the same environment as the server (DB_*, REDIS_*, JWT_SECRET,
ENGINE_CONFIG_FILE), so it can be scheduled from cron next to it.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(getEnvOrDefault("APP_ENV", "development"))
	},
}

func Execute() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 4, "shops processed in parallel with --all")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
