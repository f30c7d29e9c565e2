package orchestrator

import (
	"errors"
	"sort"
	"testing"

	"github.com/venturelab/ideaforge/pkg/models"
)

func step(id string, deps ...string) *models.PipelineStep {
	return &models.PipelineStep{
		ID:        id,
		Phase:     models.PhaseGeneration,
		Operation: "noop",
		DependsOn: deps,
		Status:    models.StepStatusPending,
	}
}

func TestGraphBuild(t *testing.T) {
	g := NewDependencyGraph()
	err := g.Build([]*models.PipelineStep{
		step("a"),
		step("b", "a"),
		step("c", "a"),
		step("d", "b", "c"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if g.Size() != 4 {
		t.Errorf("Size() = %d, want 4", g.Size())
	}
	if deps := g.Dependencies("d"); len(deps) != 2 {
		t.Errorf("Dependencies(d) = %v, want 2 entries", deps)
	}
}

func TestGraphBuildDuplicateID(t *testing.T) {
	g := NewDependencyGraph()
	err := g.Build([]*models.PipelineStep{step("a"), step("a")})
	if err == nil {
		t.Fatal("Build() with duplicate IDs should fail")
	}
}

func TestGraphBuildUnknownDependency(t *testing.T) {
	g := NewDependencyGraph()
	err := g.Build([]*models.PipelineStep{step("a", "ghost")})
	if err == nil {
		t.Fatal("Build() with unknown dependency should fail")
	}
}

func TestGraphBuildCycle(t *testing.T) {
	g := NewDependencyGraph()
	err := g.Build([]*models.PipelineStep{
		step("a", "c"),
		step("b", "a"),
		step("c", "b"),
	})
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("Build() error = %v, want ErrCycleDetected", err)
	}
}

func TestGraphBuildSelfCycle(t *testing.T) {
	g := NewDependencyGraph()
	err := g.Build([]*models.PipelineStep{step("a", "a")})
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("Build() error = %v, want ErrCycleDetected", err)
	}
}

func TestGraphReady(t *testing.T) {
	g := NewDependencyGraph()
	steps := []*models.PipelineStep{
		step("a"),
		step("b", "a"),
		step("c", "a"),
		step("d", "b", "c"),
	}
	if err := g.Build(steps); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ready := g.Ready()
	if len(ready) != 1 || ready[0] != "a" {
		t.Fatalf("Ready() = %v, want [a]", ready)
	}

	steps[0].Status = models.StepStatusCompleted
	ready = g.Ready()
	sort.Strings(ready)
	if len(ready) != 2 || ready[0] != "b" || ready[1] != "c" {
		t.Fatalf("Ready() after a completes = %v, want [b c]", ready)
	}

	// d stays ineligible until both b and c complete.
	steps[1].Status = models.StepStatusCompleted
	for _, id := range g.Ready() {
		if id == "d" {
			t.Fatal("d became ready with c still pending")
		}
	}

	steps[2].Status = models.StepStatusCompleted
	ready = g.Ready()
	if len(ready) != 1 || ready[0] != "d" {
		t.Fatalf("Ready() after b and c complete = %v, want [d]", ready)
	}
}

func TestGraphDoomed(t *testing.T) {
	g := NewDependencyGraph()
	steps := []*models.PipelineStep{
		step("a"),
		step("b", "a"),
		step("c"),
		step("d", "b", "c"),
	}
	if err := g.Build(steps); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	steps[0].Status = models.StepStatusFailed
	doomed := g.Doomed()
	if len(doomed) != 1 || doomed[0] != "b" {
		t.Fatalf("Doomed() = %v, want [b]", doomed)
	}

	// Once b is marked skipped, d becomes doomed in turn; the unrelated
	// branch c never does.
	steps[1].Status = models.StepStatusSkipped
	doomed = g.Doomed()
	if len(doomed) != 1 || doomed[0] != "d" {
		t.Fatalf("Doomed() after b skipped = %v, want [d]", doomed)
	}
	for _, id := range doomed {
		if id == "c" {
			t.Fatal("independent step c marked doomed")
		}
	}
}

func TestGraphDependents(t *testing.T) {
	g := NewDependencyGraph()
	if err := g.Build([]*models.PipelineStep{
		step("a"),
		step("b", "a"),
		step("c", "a"),
	}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	deps := g.Dependents("a")
	sort.Strings(deps)
	if len(deps) != 2 || deps[0] != "b" || deps[1] != "c" {
		t.Fatalf("Dependents(a) = %v, want [b c]", deps)
	}
}
