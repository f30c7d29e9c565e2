// Package state provides SQLite-based persistence for workflow runs and
// generated concepts.
package state

import (
	"io"

	"github.com/venturelab/ideaforge/pkg/models"
)

// RunStore handles workflow run persistence.
type RunStore interface {
	SaveRun(r *models.WorkflowExecution) error
	GetRun(id string) (*models.WorkflowExecution, error)
	ListRuns(limit int) ([]RunSummary, error)
	ListRunsByStrategy(strategyID string, limit int) ([]RunSummary, error)
}

// ConceptStore handles concept persistence.
type ConceptStore interface {
	SaveConcepts(runID string, concepts []*models.Concept) error
	GetConcept(id string) (*models.Concept, error)
	ListConceptsByRun(runID string) ([]*models.Concept, error)
	ListConceptsByStrategy(strategyID string, limit int) ([]*models.Concept, error)
}

// Migrator handles database schema migrations.
// Separating this allows clients to depend only on migration functionality.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store defines the interface for state persistence. The CLI works
// against this rather than the concrete SQLite implementation.
// It composes focused sub-interfaces for better modularity.
type Store interface {
	io.Closer
	Migrator
	RunStore
	ConceptStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store        = (*DB)(nil)
	_ Migrator     = (*DB)(nil)
	_ RunStore     = (*DB)(nil)
	_ ConceptStore = (*DB)(nil)
)
