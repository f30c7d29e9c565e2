package state

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/venturelab/ideaforge/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return db
}

func testRun(id, strategyID string, startedAt time.Time) *models.WorkflowExecution {
	return &models.WorkflowExecution{
		ID:         id,
		StrategyID: strategyID,
		Status:     models.RunStatusCompleted,
		Progress:   100,
		StartedAt:  startedAt,
		Steps: []*models.PipelineStep{
			{ID: "a", Phase: models.PhaseGeneration, Operation: "op", Status: models.StepStatusCompleted},
		},
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestSaveAndGetRun(t *testing.T) {
	db := openTestDB(t)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := testRun("run-1", "strat-1", started)
	completed := started.Add(time.Minute)
	run.CompletedAt = &completed

	if err := db.SaveRun(run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.StrategyID != "strat-1" {
		t.Errorf("StrategyID = %q, want strat-1", got.StrategyID)
	}
	if got.Status != models.RunStatusCompleted {
		t.Errorf("Status = %s, want completed", got.Status)
	}
	if len(got.Steps) != 1 || got.Steps[0].ID != "a" {
		t.Errorf("Steps = %+v, want the saved step", got.Steps)
	}
}

func TestSaveRunReplacesOnResave(t *testing.T) {
	db := openTestDB(t)

	run := testRun("run-1", "strat-1", time.Now().UTC())
	run.Status = models.RunStatusRunning
	run.Progress = 50
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	run.Status = models.RunStatusCompleted
	run.Progress = 100
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("re-SaveRun failed: %v", err)
	}

	summaries, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d runs after resave, want 1", len(summaries))
	}
	if summaries[0].Status != models.RunStatusCompleted || summaries[0].Progress != 100 {
		t.Errorf("summary = %+v, want completed at 100", summaries[0])
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetRun("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetRun(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-old", "run-mid", "run-new"} {
		if err := db.SaveRun(testRun(id, "strat-1", base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("SaveRun(%s) failed: %v", id, err)
		}
	}

	summaries, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("got %d runs, want 3", len(summaries))
	}
	if summaries[0].ID != "run-new" || summaries[2].ID != "run-old" {
		t.Errorf("order = [%s %s %s], want newest first", summaries[0].ID, summaries[1].ID, summaries[2].ID)
	}
}

func TestListRunsByStrategy(t *testing.T) {
	db := openTestDB(t)

	now := time.Now().UTC()
	db.SaveRun(testRun("run-1", "strat-a", now))
	db.SaveRun(testRun("run-2", "strat-b", now))

	summaries, err := db.ListRunsByStrategy("strat-a", 10)
	if err != nil {
		t.Fatalf("ListRunsByStrategy failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != "run-1" {
		t.Errorf("got %+v, want only run-1", summaries)
	}
}

func testConcept(id string, overall int) *models.Concept {
	c := &models.Concept{
		ID:         id,
		StrategyID: "strat-1",
		Seed: models.ConceptSeed{
			models.DimensionIndustry: {ID: "ind-health", Name: "Healthcare"},
		},
		Content:   map[string]string{"name": "Concept " + id},
		Status:    models.ConceptStatusScored,
		CreatedAt: time.Now().UTC(),
	}
	c.Score = &models.ViabilityScore{
		Overall: overall,
		Tier:    models.TierForScore(overall),
	}
	return c
}

func TestSaveAndListConcepts(t *testing.T) {
	db := openTestDB(t)

	concepts := []*models.Concept{
		testConcept("c-low", 45),
		testConcept("c-high", 85),
		testConcept("c-mid", 62),
	}
	if err := db.SaveConcepts("run-1", concepts); err != nil {
		t.Fatalf("SaveConcepts failed: %v", err)
	}

	got, err := db.ListConceptsByRun("run-1")
	if err != nil {
		t.Fatalf("ListConceptsByRun failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d concepts, want 3", len(got))
	}
	if got[0].ID != "c-high" || got[1].ID != "c-mid" || got[2].ID != "c-low" {
		t.Errorf("order = [%s %s %s], want best score first", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].Score == nil || got[0].Score.Overall != 85 {
		t.Errorf("score round-trip = %+v, want overall 85", got[0].Score)
	}
	if got[0].Seed[models.DimensionIndustry].ID != "ind-health" {
		t.Errorf("seed round-trip = %+v", got[0].Seed)
	}
}

func TestListConceptsUnscoredLast(t *testing.T) {
	db := openTestDB(t)

	unscored := testConcept("c-unscored", 0)
	unscored.Score = nil
	unscored.Status = models.ConceptStatusGenerated

	if err := db.SaveConcepts("run-1", []*models.Concept{unscored, testConcept("c-scored", 70)}); err != nil {
		t.Fatalf("SaveConcepts failed: %v", err)
	}

	got, err := db.ListConceptsByRun("run-1")
	if err != nil {
		t.Fatalf("ListConceptsByRun failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c-scored" || got[1].ID != "c-unscored" {
		t.Errorf("got %d concepts, unscored should sort last", len(got))
	}
}

func TestGetConceptNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetConcept("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetConcept(missing) error = %v, want ErrNotFound", err)
	}
}

func TestPurgeOldRuns(t *testing.T) {
	db := openTestDB(t)

	old := testRun("run-old", "strat-1", time.Now().UTC().Add(-48*time.Hour))
	recent := testRun("run-new", "strat-1", time.Now().UTC())
	db.SaveRun(old)
	db.SaveRun(recent)
	db.SaveConcepts("run-old", []*models.Concept{testConcept("c-old", 50)})
	db.SaveConcepts("run-new", []*models.Concept{testConcept("c-new", 50)})

	count, err := db.PurgeOldRuns(24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeOldRuns failed: %v", err)
	}
	if count != 1 {
		t.Errorf("purged %d runs, want 1", count)
	}

	if _, err := db.GetRun("run-old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old run should be gone, got %v", err)
	}
	if _, err := db.GetRun("run-new"); err != nil {
		t.Errorf("recent run should survive: %v", err)
	}

	oldConcepts, _ := db.ListConceptsByRun("run-old")
	if len(oldConcepts) != 0 {
		t.Errorf("old run's concepts should be purged, got %d", len(oldConcepts))
	}
	newConcepts, _ := db.ListConceptsByRun("run-new")
	if len(newConcepts) != 1 {
		t.Errorf("recent run's concepts should survive, got %d", len(newConcepts))
	}
}
