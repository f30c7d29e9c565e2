package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/venturelab/ideaforge/internal/config"
	"github.com/venturelab/ideaforge/internal/state"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show recent runs and their concepts",
	Long: `Display recent generation runs from the state database.

Without arguments, lists the most recent runs. With a run ID, shows that
run's steps and its saved concepts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Number of runs to list")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.Paths.DBPath
	if dbPath == "" {
		dbPath = state.GlobalDBPath()
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No runs recorded. Run 'ideaforge run <strategy>' to start.")
		return nil
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if len(args) == 1 {
		return showRun(db, args[0])
	}
	return listRuns(db)
}

func listRuns(db *state.DB) error {
	runs, err := db.ListRuns(statusLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded. Run 'ideaforge run <strategy>' to start.")
		return nil
	}

	fmt.Printf("%-10s %-16s %-10s %-6s %-8s %s\n",
		"RUN", "STRATEGY", "STATUS", "PROG", "AGE", "DURATION")
	for _, r := range runs {
		duration := "-"
		if r.CompletedAt != nil {
			duration = r.CompletedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		fmt.Printf("%-10s %-16s %-10s %3.0f%%  %-8s %s\n",
			r.ID, r.StrategyID, r.Status, r.Progress,
			formatAge(r.StartedAt), duration)
	}
	return nil
}

func showRun(db *state.DB, id string) error {
	run, err := db.GetRun(id)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s  strategy=%s  status=%s  progress=%.0f%%\n\n",
		run.ID, run.StrategyID, run.Status, run.Progress)

	fmt.Printf("%-24s %-12s %-10s %s\n", "STEP", "PHASE", "STATUS", "ERROR")
	for _, step := range run.Steps {
		errMsg := ""
		if step.Error != "" {
			errMsg = truncateName(step.Error, 48)
		}
		fmt.Printf("%-24s %-12s %-10s %s\n", step.ID, step.Phase, step.Status, errMsg)
	}

	concepts, err := db.ListConceptsByRun(id)
	if err != nil {
		return err
	}
	if len(concepts) == 0 {
		fmt.Println("\nNo concepts saved for this run.")
		return nil
	}

	fmt.Printf("\n%-6s %-6s %-40s %s\n", "SCORE", "TIER", "CONCEPT", "STATUS")
	for _, c := range concepts {
		score, tier := "-", "-"
		if c.Score != nil {
			score = fmt.Sprintf("%d", c.Score.Overall)
			tier = string(c.Score.Tier)
		}
		fmt.Printf("%-6s %-6s %-40s %s\n", score, tier, truncateName(c.Name(), 40), c.Status)
	}
	return nil
}

// formatAge renders how long ago a time was, coarsely.
func formatAge(t time.Time) string {
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "now"
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	}
}
