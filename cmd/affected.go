package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/watchloom/depgraph/core/config"
	"github.com/watchloom/depgraph/core/depgraph"
	"github.com/watchloom/depgraph/core/logger"
)

var (
	affectedEntryFiles []string
	markChangedFiles   []string
	resetCache         bool
)

// affectedCmd represents the affected command
var affectedCmd = &cobra.Command{
	Use:   "affected [changed-file...]",
	Short: "Print the entry files affected by a set of changed source files",
	Long: `affected initializes the dependency graph (loading the persisted cache
when present) and prints the entry test files that transitively depend on
the given changed files. With no changed files, the underlying change
detector is consulted for anything that differs from its last snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		entries := affectedEntryFiles
		if len(entries) == 0 {
			entries = cfg.EntryFiles
		}

		dg, err := depgraph.New(depgraph.Options{
			CacheDir:               cfg.CacheDir,
			ModuleMapCacheFilename: cfg.ModuleMapCacheFilename,
			FileEntryCacheFilename: cfg.FileEntryCacheFilename,
			EntryFiles:             entries,
			Ignored:                cfg.Ignored,
			Reset:                  resetCache,
		})
		if err != nil {
			return err
		}

		if err := dg.Initialize(); err != nil {
			return fmt.Errorf("affected: initialize: %w", err)
		}

		_, affectedEntries, err := dg.AffectedEntryFiles(args, markChangedFiles)
		if err != nil {
			return fmt.Errorf("affected: query: %w", err)
		}

		if len(affectedEntries) == 0 {
			logger.Info("No entry files affected")
			return nil
		}
		for _, f := range affectedEntries {
			fmt.Println(f)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(affectedCmd)
	affectedCmd.Flags().StringSliceVar(&affectedEntryFiles, "entry", nil, "Entry file (repeatable); defaults to config entry_files")
	affectedCmd.Flags().StringSliceVar(&markChangedFiles, "mark-changed", nil, "Force-invalidate a path's change-cache snapshot (repeatable)")
	affectedCmd.Flags().BoolVar(&resetCache, "reset", false, "Destroy persisted caches before initializing")
}
