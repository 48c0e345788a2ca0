package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/watchloom/depgraph/core/config"
	"github.com/watchloom/depgraph/core/depgraph"
	"github.com/watchloom/depgraph/core/livewatch"
	"github.com/watchloom/depgraph/core/logger"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project tree and print affected entry files on change",
	Long: `watch is a thin driver over the depgraph library: it is not itself part
of the dependency graph's core (real-time watching is explicitly out of
scope there), it just feeds each debounced burst of changed files into
AffectedEntryFiles and prints the result.`,
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
		})
		if err != nil {
			return err
		}
		if err := dg.Initialize(); err != nil {
			return fmt.Errorf("watch: initialize: %w", err)
		}

		wd, err := os.Getwd()
		if err != nil {
			return err
		}

		w, err := livewatch.New(wd, cfg.Ignored, 0, func(changed []string) {
			_, affectedEntries, err := dg.AffectedEntryFiles(changed, nil)
			if err != nil {
				logger.Error("watch: query failed: %v", err)
				return
			}
			if len(affectedEntries) == 0 {
				logger.Info("watch: no entry files affected by %d changed files", len(changed))
				return
			}
			for _, f := range affectedEntries {
				fmt.Println(f)
			}
			if err := dg.Save(); err != nil {
				logger.Error("watch: save failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
		defer w.Close()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			w.Close()
		}()

		return w.Run()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
