package models

import (
	"strings"
	"time"
)

// ConceptSeed is one combination of at most one entity per enabled dimension.
// Seeds are ephemeral: produced and consumed within a single generation run,
// never persisted independently of the concept they produce.
type ConceptSeed map[DimensionName]DimensionEntity

// EntityIDs returns the seed's entity IDs in canonical dimension order.
// Concept IDs are derived from this, so the order must be stable.
func (s ConceptSeed) EntityIDs() []string {
	var ids []string
	for _, d := range DimensionOrder {
		if e, ok := s[d]; ok {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Key returns a deterministic identifier for the seed combination. Pairs
// are written as dimension=id and joined with an ASCII unit separator so
// that hyphenated entity IDs cannot make two distinct seeds share a key.
func (s ConceptSeed) Key() string {
	var pairs []string
	for _, d := range DimensionOrder {
		if e, ok := s[d]; ok {
			pairs = append(pairs, string(d)+"="+e.ID)
		}
	}
	return strings.Join(pairs, "\x1f")
}

// ConceptStatus represents the lifecycle state of a concept.
type ConceptStatus string

const (
	// ConceptStatusGenerated indicates content has been synthesized.
	ConceptStatusGenerated ConceptStatus = "generated"
	// ConceptStatusScored indicates a viability score has been attached.
	ConceptStatusScored ConceptStatus = "scored"
	// ConceptStatusSelected indicates the concept was chosen for follow-up.
	ConceptStatusSelected ConceptStatus = "selected"
)

// Valid returns true if the status is a known value.
func (s ConceptStatus) Valid() bool {
	switch s {
	case ConceptStatusGenerated, ConceptStatusScored, ConceptStatusSelected:
		return true
	default:
		return false
	}
}

// Concept is a generated business concept. Concepts are owned by the run
// that created them and are superseded rather than mutated: rescoring
// attaches a new score and pushes the old one into ScoreHistory.
type Concept struct {
	// ID is derived from the strategy ID, the seed's entity IDs, and a
	// short disambiguating suffix, so repeated runs over the same seed are
	// traceable without being forced to collide.
	ID string `json:"id"`
	// StrategyID links the concept back to the hypothesis that produced it.
	StrategyID string `json:"strategy_id"`
	// Seed is the dimension combination the concept was synthesized from.
	Seed ConceptSeed `json:"seed"`
	// Content holds the synthesized fields (name, pitch, business model,
	// and so on). The fields are opaque to this system.
	Content map[string]string `json:"content"`
	// Score is the current viability score, if the concept has been scored.
	Score *ViabilityScore `json:"score,omitempty"`
	// ScoreHistory retains superseded scores for audit.
	ScoreHistory []ViabilityScore `json:"score_history,omitempty"`
	// Status is the lifecycle state.
	Status ConceptStatus `json:"status"`
	// CreatedAt is when the concept was synthesized.
	CreatedAt time.Time `json:"created_at"`
}

// Name returns the synthesized concept name, or the ID when no name field
// was generated.
func (c *Concept) Name() string {
	if n := c.Content["name"]; n != "" {
		return n
	}
	return c.ID
}

// AttachScore sets a new viability score, retaining any previous score in
// ScoreHistory, and advances the lifecycle to scored.
func (c *Concept) AttachScore(score ViabilityScore) {
	if c.Score != nil {
		c.ScoreHistory = append(c.ScoreHistory, *c.Score)
	}
	c.Score = &score
	c.Status = ConceptStatusScored
}
