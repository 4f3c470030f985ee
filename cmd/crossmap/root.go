package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/crossmap/pkg/config"
)

var (
	configPath string
	debug      bool

	globalConfig *config.Config
	logger       = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "crossmap",
	Short: "Cross-platform follower analysis",
	Long: `Crossmap compares follower and following lists gathered from several
platforms, clusters usernames that likely belong to one person, and
ranks accounts by how widely they are connected.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		cfg, err := config.LoadOrDefault(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		level := cfg.LogLevel
		if debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CROSSMAP_CONFIG"), "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "v", false, "enable debug logging")
}
