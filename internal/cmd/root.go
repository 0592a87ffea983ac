package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heshamdawsha976/sen2/internal/config"
	"github.com/heshamdawsha976/sen2/internal/logger"
)

const serviceName = "order-desk"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "sen2",
	Short: "Order desk for a single-product shop",
	Long: `sen2 captures cash-on-delivery orders over a JSON API, tracks their
status and reports order analytics.

Run "sen2 serve" to start the API, "sen2 migrate" to manage the schema
and "sen2 report" to print analytics from a running server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default .env)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := os.Setenv("ENV_FILE", envFile); err != nil {
			return nil, fmt.Errorf("failed to set ENV_FILE: %w", err)
		}
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Setup(cfg.Log.Level, cfg.Log.Pretty, serviceName)
	return cfg, nil
}
