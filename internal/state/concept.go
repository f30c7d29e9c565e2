package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/venturelab/ideaforge/pkg/models"
)

// SaveConcepts stores a run's concepts in one transaction. Score columns
// are denormalized from the attached viability score for listing and
// filtering; unscored concepts store NULL there.
func (db *DB) SaveConcepts(runID string, concepts []*models.Concept) error {
	return db.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO concepts (id, run_id, strategy_id, status, overall_score, tier, created_at, payload)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare concept insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range concepts {
			payload, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("marshal concept %s: %w", c.ID, err)
			}

			var overall, tier any
			if c.Score != nil {
				overall = c.Score.Overall
				tier = string(c.Score.Tier)
			}

			if _, err := stmt.Exec(c.ID, runID, c.StrategyID, string(c.Status),
				overall, tier, formatTime(c.CreatedAt), string(payload)); err != nil {
				return fmt.Errorf("save concept %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// GetConcept loads one concept by ID.
func (db *DB) GetConcept(id string) (*models.Concept, error) {
	var payload string
	row := db.QueryRow(`SELECT payload FROM concepts WHERE id = ?`, id)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("concept %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get concept %s: %w", id, err)
	}

	var c models.Concept
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, fmt.Errorf("unmarshal concept %s: %w", id, err)
	}
	return &c, nil
}

// ListConceptsByRun returns a run's concepts, best score first, unscored
// last, ties broken by concept ID.
func (db *DB) ListConceptsByRun(runID string) ([]*models.Concept, error) {
	return db.listConcepts(`
		SELECT payload FROM concepts WHERE run_id = ?
		ORDER BY overall_score IS NULL, overall_score DESC, id ASC
	`, runID)
}

// ListConceptsByStrategy returns a strategy's concepts across runs, best
// score first.
func (db *DB) ListConceptsByStrategy(strategyID string, limit int) ([]*models.Concept, error) {
	return db.listConcepts(`
		SELECT payload FROM concepts WHERE strategy_id = ?
		ORDER BY overall_score IS NULL, overall_score DESC, id ASC
		LIMIT ?
	`, strategyID, normalizeLimit(limit))
}

func (db *DB) listConcepts(query string, args ...any) ([]*models.Concept, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	defer rows.Close()

	var concepts []*models.Concept
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan concept row: %w", err)
		}
		var c models.Concept
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			return nil, fmt.Errorf("unmarshal concept: %w", err)
		}
		concepts = append(concepts, &c)
	}
	return concepts, rows.Err()
}
