package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/venturelab/ideaforge/pkg/models"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// RunSummary is the listing view of a stored run, read from the indexed
// columns without unmarshalling the payload.
type RunSummary struct {
	ID          string           `json:"id"`
	StrategyID  string           `json:"strategy_id"`
	Status      models.RunStatus `json:"status"`
	Progress    float64          `json:"progress"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// SaveRun inserts or replaces a workflow run. Safe to call repeatedly as
// the run progresses; the last save wins.
func (db *DB) SaveRun(r *models.WorkflowExecution) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", r.ID, err)
	}

	var completedAt any
	if r.CompletedAt != nil {
		completedAt = formatTime(*r.CompletedAt)
	}

	_, err = db.Exec(`
		INSERT OR REPLACE INTO runs (id, strategy_id, status, progress, started_at, completed_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.StrategyID, string(r.Status), r.Progress, formatTime(r.StartedAt), completedAt, string(payload))
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

// GetRun loads a stored run by ID. Step outputs round-trip through JSON,
// so typed outputs come back as generic maps; the stored record is for
// inspection, not for resuming execution.
func (db *DB) GetRun(id string) (*models.WorkflowExecution, error) {
	var payload string
	row := db.QueryRow(`SELECT payload FROM runs WHERE id = ?`, id)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	var run models.WorkflowExecution
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return nil, fmt.Errorf("unmarshal run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	return db.listRuns(`
		SELECT id, strategy_id, status, progress, started_at, completed_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, normalizeLimit(limit))
}

// ListRunsByStrategy returns the most recent runs for a strategy, newest
// first.
func (db *DB) ListRunsByStrategy(strategyID string, limit int) ([]RunSummary, error) {
	return db.listRuns(`
		SELECT id, strategy_id, status, progress, started_at, completed_at
		FROM runs WHERE strategy_id = ? ORDER BY started_at DESC LIMIT ?
	`, strategyID, normalizeLimit(limit))
}

func (db *DB) listRuns(query string, args ...any) ([]RunSummary, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		var status, startedAt string
		var completedAt sql.NullString
		if err := rows.Scan(&s.ID, &s.StrategyID, &status, &s.Progress, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		s.Status = models.RunStatus(status)
		if s.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parse run started_at: %w", err)
		}
		s.CompletedAt = parseNullableTime(completedAt)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}
