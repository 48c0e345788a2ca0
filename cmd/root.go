/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/watchloom/depgraph/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "depgraph",
	Short: "Incremental module dependency graph for a test runner's watch mode.",
	Long: `depgraph tracks which source files a set of entry test files depend on,
persists that graph between runs, and answers "given these changed files,
which entry tests must re-run" without re-walking the whole tree.`,
}

var logfile string
var verbose bool

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")

	cobra.OnInitialize(func() {
		logger.SetVerbose(verbose)
		if logfile != "" {
			f, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				logger.Error("failed to open logfile %s: %v", logfile, err)
				return
			}
			logger.AddWriterForAll(f)
		}
	})
}
