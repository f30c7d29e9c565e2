package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ideaforge",
	Short: "Startup concept generation and scoring engine",
	Long: `IdeaForge cross-products strategy hypotheses against taxonomy
dimensions (occupations, industries, processes, tasks, services,
technologies), synthesizes a startup concept for each combination, and
scores the results for viability.

A run is a dependency-ordered pipeline: filter the taxonomy catalog,
enrich the market context, enumerate concept seeds, synthesize concepts,
score them across eight weighted dimensions, and rank the survivors into
tiers. Failed steps skip their dependents; unrelated branches keep
running.

Core commands:
  run      Execute a strategy and rank the generated concepts
  catalog  Inspect the taxonomy catalog
  status   Show recent runs and their concepts
  config   View or modify configuration`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
