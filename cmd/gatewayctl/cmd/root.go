package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gymcore/gym-gateway/internal/config"
	"github.com/gymcore/gym-gateway/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "gatewayctl",
	Short: "Operator tooling for the gym gateway",
	Long: `gatewayctl manages the gateway's database, administrators and route policy.
It reads the same environment (and .env file) as the API server.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(adminsCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(tokenCmd)
}

func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, logger, nil
}
