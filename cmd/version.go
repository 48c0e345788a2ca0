/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/watchloom/depgraph/core/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of depgraph",
	Long:  `Displays the version of depgraph.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("depgraph %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
