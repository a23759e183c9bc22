package main

import (
	"fmt"
	"os"

	"github.com/aretw0/observed/pkg/config"
	"github.com/aretw0/observed/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "observed",
	Short: "observed runs and serves weak-reference observer graphs",
	Long: `observed demonstrates observable functions and methods: calling an observable
runs every registered observer in order, and collected observers drop out on their own.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "observed.yaml", "Path to the configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("strategy", "", "Override the persistence strategy (instance, side-table)")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if token, _ := cmd.Flags().GetString("strategy"); token != "" {
		strategy, err := domain.ParseStrategy(token)
		if err != nil {
			return cfg, err
		}
		cfg.Strategy = strategy
	}
	return cfg, nil
}
