package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/watchloom/depgraph/core/config"
	"github.com/watchloom/depgraph/core/depgraph"
	"github.com/watchloom/depgraph/core/logger"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Destroy the persisted caches and rebuild from a cold start",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		dg, err := depgraph.New(depgraph.Options{
			CacheDir:               cfg.CacheDir,
			ModuleMapCacheFilename: cfg.ModuleMapCacheFilename,
			FileEntryCacheFilename: cfg.FileEntryCacheFilename,
			EntryFiles:             cfg.EntryFiles,
			Ignored:                cfg.Ignored,
			Reset:                  true,
		})
		if err != nil {
			return err
		}

		if err := dg.Initialize(); err != nil {
			return fmt.Errorf("reset: initialize: %w", err)
		}

		logger.Info("Cache reset; %d files known across %d entry files", len(dg.Graph().Files()), len(dg.Graph().EntryFiles()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
