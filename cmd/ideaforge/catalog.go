package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/venturelab/ideaforge/internal/catalog"
	"github.com/venturelab/ideaforge/internal/config"
	"github.com/venturelab/ideaforge/pkg/models"
)

var catalogTaxonomyDir string

var catalogCmd = &cobra.Command{
	Use:   "catalog [dimension]",
	Short: "Inspect the taxonomy catalog",
	Long: `Inspect the loaded taxonomy catalog.

Without arguments, lists each dimension and its entity count.
With a dimension name (occupation, industry, process, task, service,
technology), lists that dimension's entities.

Examples:
  ideaforge catalog
  ideaforge catalog industry
  ideaforge catalog occupation --taxonomies ./taxonomies`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogTaxonomyDir, "taxonomies", "", "Taxonomy directory (overrides config)")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dir := catalogTaxonomyDir
	if dir == "" {
		dir = cfg.Paths.TaxonomyDir
	}
	cat, err := catalog.LoadDir(dir)
	if err != nil {
		return fmt.Errorf("load taxonomies: %w", err)
	}

	if len(args) == 0 {
		fmt.Printf("%-12s %s\n", "DIMENSION", "ENTITIES")
		for _, dim := range models.DimensionOrder {
			fmt.Printf("%-12s %d\n", dim, cat.Size(dim))
		}
		return nil
	}

	dim := models.DimensionName(args[0])
	if !dim.Valid() {
		return fmt.Errorf("unknown dimension %q", args[0])
	}

	entities := cat.Entities(dim)
	if len(entities) == 0 {
		fmt.Printf("No entities loaded for %s.\n", dim)
		return nil
	}

	fmt.Printf("%-24s %-6s %s\n", "ID", "LEVEL", "NAME")
	for _, e := range entities {
		fmt.Printf("%-24s %-6d %s\n", e.ID, e.Level, e.Name)
	}
	return nil
}
