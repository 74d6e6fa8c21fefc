package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobfunnel-engine/internal/config"
	"jobfunnel-engine/internal/logger"
	"jobfunnel-engine/internal/store"
)

const app = "jobfunnel"

var (
	flagDataDir string
	flagDebug   bool
	flagJSON    bool

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "jobfunnel discovers job boards, scrapes postings and funnels them through staged classification",
		SilenceUsage: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default $JOBFUNNEL_DATA_DIR or .)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "json format for logging")
}

func dataDir() (string, error) {
	dir := flagDataDir
	if dir == "" {
		dir = os.Getenv("JOBFUNNEL_DATA_DIR")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

// setup loads config and opens the database; every subcommand starts here.
func setup() (config.Config, *store.DB, *zap.Logger, error) {
	log, err := logger.New(flagJSON, flagDebug)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("creating a logger: %w", err)
	}

	dir, err := dataDir()
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	cfgPath, err := config.EnsureUserConfig(dir)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("config bootstrap: %w", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("config load (%s): %w", cfgPath, err)
	}
	cfg.App.DataDir = dir

	db, err := store.Open(filepath.Join(dir, "jobfunnel.db"))
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("open database: %w", err)
	}

	return cfg, db, log, nil
}
