// Package orchestrator executes dependency-ordered pipelines of generation,
// scoring, and enrichment steps with bounded concurrency and per-step
// failure isolation.
package orchestrator

import (
	"errors"
	"fmt"

	"github.com/venturelab/ideaforge/pkg/models"
)

// ErrCycleDetected indicates a circular dependency in the step graph.
var ErrCycleDetected = errors.New("circular dependency detected")

// DependencyGraph is a directed acyclic graph of pipeline steps. Steps are
// nodes; edges point at the steps a node depends on.
type DependencyGraph struct {
	// nodes maps step ID to the step itself.
	nodes map[string]*models.PipelineStep
	// edges maps step ID to the IDs of steps it depends on.
	edges map[string][]string
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*models.PipelineStep),
		edges: make(map[string][]string),
	}
}

// Build constructs the graph from a slice of steps. It fails if a
// dependency references an unknown step or the graph contains a cycle.
func (g *DependencyGraph) Build(steps []*models.PipelineStep) error {
	for _, step := range steps {
		if _, exists := g.nodes[step.ID]; exists {
			return fmt.Errorf("duplicate step id %s", step.ID)
		}
		g.nodes[step.ID] = step
		g.edges[step.ID] = nil
	}

	for _, step := range steps {
		for _, depID := range step.DependsOn {
			if _, exists := g.nodes[depID]; !exists {
				return fmt.Errorf("step %s depends on unknown step %s", step.ID, depID)
			}
			g.edges[step.ID] = append(g.edges[step.ID], depID)
		}
	}

	if g.hasCycle() {
		return ErrCycleDetected
	}

	return nil
}

// hasCycle reports whether the graph contains a circular dependency, using
// DFS with coloring to detect back edges.
func (g *DependencyGraph) hasCycle() bool {
	// 0 = unvisited, 1 = in progress, 2 = done.
	colors := make(map[string]int, len(g.nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1
		for _, depID := range g.edges[id] {
			switch colors[depID] {
			case 1:
				return true
			case 0:
				if visit(depID) {
					return true
				}
			}
		}
		colors[id] = 2
		return false
	}

	for id := range g.nodes {
		if colors[id] == 0 && visit(id) {
			return true
		}
	}
	return false
}

// Ready returns the IDs of pending steps whose dependencies have all
// completed. These steps can run in parallel.
func (g *DependencyGraph) Ready() []string {
	var ready []string
	for id, step := range g.nodes {
		if step.Status != models.StepStatusPending {
			continue
		}
		eligible := true
		for _, depID := range g.edges[id] {
			if g.nodes[depID].Status != models.StepStatusCompleted {
				eligible = false
				break
			}
		}
		if eligible {
			ready = append(ready, id)
		}
	}
	return ready
}

// Doomed returns the IDs of pending steps that can never run because some
// dependency failed or was skipped. Failure propagates forward through the
// DAG without touching unrelated branches.
func (g *DependencyGraph) Doomed() []string {
	var doomed []string
	for id, step := range g.nodes {
		if step.Status != models.StepStatusPending {
			continue
		}
		for _, depID := range g.edges[id] {
			s := g.nodes[depID].Status
			if s == models.StepStatusFailed || s == models.StepStatusSkipped {
				doomed = append(doomed, id)
				break
			}
		}
	}
	return doomed
}

// Step returns the step for an ID, or nil if not found.
func (g *DependencyGraph) Step(id string) *models.PipelineStep {
	return g.nodes[id]
}

// Dependencies returns the IDs the given step depends on.
func (g *DependencyGraph) Dependencies(id string) []string {
	return g.edges[id]
}

// Dependents returns the IDs of steps that depend on the given step.
func (g *DependencyGraph) Dependents(id string) []string {
	var dependents []string
	for other, deps := range g.edges {
		for _, depID := range deps {
			if depID == id {
				dependents = append(dependents, other)
				break
			}
		}
	}
	return dependents
}

// Size returns the number of steps in the graph.
func (g *DependencyGraph) Size() int {
	return len(g.nodes)
}
