package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/venturelab/ideaforge/internal/api"
	"github.com/venturelab/ideaforge/internal/catalog"
	"github.com/venturelab/ideaforge/internal/config"
	"github.com/venturelab/ideaforge/internal/orchestrator"
	"github.com/venturelab/ideaforge/internal/state"
	"github.com/venturelab/ideaforge/pkg/models"
)

var (
	runTaxonomyDir string
	runTopN        int
	runConcurrency int
	runNoSave      bool
	runWatch       bool
)

var runCmd = &cobra.Command{
	Use:   "run <strategy-file>",
	Short: "Execute a strategy and rank the generated concepts",
	Long: `Execute a generation run for a strategy file.

The run filters the taxonomy catalog through the strategy's dimension
filters, enriches market context, enumerates the concept seed
cross-product, synthesizes a concept per seed, scores each concept, and
prints the ranked survivors. Concepts and the run record are saved to
the state database unless --no-save is given.

Interrupting the run (Ctrl-C) lets in-flight generation finish, skips
everything not yet started, and records the run as cancelled.

Examples:
  ideaforge run strategies/vertical-ai.yaml
  ideaforge run strategy.yaml --top-n 10
  ideaforge run strategy.yaml --taxonomies ./taxonomies --no-save`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runTaxonomyDir, "taxonomies", "", "Taxonomy directory (overrides config)")
	runCmd.Flags().IntVar(&runTopN, "top-n", 0, "Keep only the top N ranked concepts (overrides config)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "Generation calls in flight at once (overrides config)")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "Skip saving the run to the state database")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "Reload taxonomies when files change during the run")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	strategy, err := config.LoadStrategy(args[0])
	if err != nil {
		return err
	}

	taxonomyDir := runTaxonomyDir
	if taxonomyDir == "" {
		taxonomyDir = cfg.Paths.TaxonomyDir
	}
	cat, err := catalog.LoadDir(taxonomyDir)
	if err != nil {
		return fmt.Errorf("load taxonomies: %w", err)
	}

	apiKey, err := config.GetAPIKey(cfg)
	if err != nil && !cfg.Anthropic.UseBedrock {
		return err
	}
	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return err
	}

	logger, err := orchestrator.NewDebugLogger(cfg.Paths.DebugLog)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	defer logger.Close()

	concurrency := runConcurrency
	if concurrency == 0 {
		concurrency = cfg.Pipeline.Concurrency
	}
	topN := runTopN
	if topN == 0 {
		topN = cfg.Pipeline.TopN
	}

	pipeline := &orchestrator.Pipeline{
		Catalog:           cat,
		Generator:         api.NewGenerator(client),
		Concurrency:       concurrency,
		GenerationTimeout: cfg.Pipeline.GenerationTimeout,
		Weights:           cfg.ScoringWeights(),
		TopN:              topN,
		MaxParallelSteps:  cfg.Pipeline.MaxParallelSteps,
		Logger:            logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runWatch || cfg.Catalog.Watch {
		go cat.Watch(ctx, taxonomyDir)
	}

	o, run, err := pipeline.NewRun(strategy)
	if err != nil {
		return err
	}

	fmt.Printf("Running strategy %s (%s)\n\n", strategy.ID, strategy.Name)

	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		for e := range o.Events() {
			printEvent(e)
		}
	}()

	if err := o.Execute(ctx, run); err != nil {
		return err
	}
	<-eventsDone

	printSummary(run, client.Tracker())

	if !runNoSave {
		if err := saveRun(cfg, run); err != nil {
			return err
		}
		fmt.Printf("\nSaved run %s\n", run.ID)
	}

	if run.Status == models.RunStatusFailed {
		return fmt.Errorf("run %s failed", run.ID)
	}
	return nil
}

// printEvent renders one orchestrator event as a progress line.
func printEvent(e orchestrator.Event) {
	switch e.Type {
	case orchestrator.EventStepStarted:
		fmt.Printf("  %s %s\n", color.CyanString("→"), e.StepID)
	case orchestrator.EventStepCompleted:
		fmt.Printf("  %s %s (%.0f%%)\n", color.GreenString("✓"), e.StepID, e.Progress)
	case orchestrator.EventStepFailed:
		fmt.Printf("  %s %s: %v\n", color.RedString("✗"), e.StepID, e.Err)
	case orchestrator.EventStepSkipped:
		fmt.Printf("  %s %s (dependency failed)\n", color.YellowString("○"), e.StepID)
	}
}

// printSummary renders the terminal status, token usage, and the ranked
// concept table.
func printSummary(run *models.WorkflowExecution, tracker *api.TokenTracker) {
	fmt.Println()
	switch run.Status {
	case models.RunStatusCompleted:
		color.Green("Run %s completed", run.ID)
	case models.RunStatusCancelled:
		color.Yellow("Run %s cancelled", run.ID)
	default:
		color.Red("Run %s %s", run.ID, run.Status)
	}

	input, output := tracker.Total()
	fmt.Printf("Tokens: %d in / %d out across %d calls ($%.4f)\n",
		input, output, tracker.Calls(), tracker.Cost())

	seedsOut, ok := run.Results[orchestrator.StepGenerateSeeds].(orchestrator.SeedsOutput)
	if ok && len(seedsOut.MissingRequired) > 0 {
		color.Yellow("No concepts: required dimensions with no candidates: %v", seedsOut.MissingRequired)
		return
	}

	rankOut, ok := run.Results[orchestrator.StepRankConcepts].(orchestrator.RankingOutput)
	if !ok || len(rankOut.Ranked) == 0 {
		fmt.Println("No ranked concepts.")
		return
	}

	fmt.Printf("\n%-4s %-6s %-6s %-40s %s\n", "RANK", "SCORE", "TIER", "CONCEPT", "RECOMMENDATION")
	for _, rc := range rankOut.Ranked {
		tier := "-"
		rec := "-"
		if rc.Concept.Score != nil {
			tier = string(rc.Concept.Score.Tier)
			rec = rc.Concept.Score.Recommendation
		}
		fmt.Printf("%-4d %-6d %-6s %-40s %s\n",
			rc.Rank, rc.DisplayScore, tier, truncateName(rc.Concept.Name(), 40), rec)
	}
}

func truncateName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// saveRun persists the run record and its synthesized concepts.
func saveRun(cfg *config.Config, run *models.WorkflowExecution) error {
	dbPath := cfg.Paths.DBPath
	if dbPath == "" {
		dbPath = state.GlobalDBPath()
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err := db.SaveRun(run); err != nil {
		return err
	}

	if synthOut, ok := run.Results[orchestrator.StepSynthesizeConcepts].(orchestrator.SynthesisOutput); ok {
		if err := db.SaveConcepts(run.ID, synthOut.Concepts); err != nil {
			return err
		}
	}
	return nil
}
