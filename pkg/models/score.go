package models

import "time"

// ScoreDimension names one axis of a viability score.
type ScoreDimension string

const (
	// ScoreMarketSize measures the size of the addressable market.
	ScoreMarketSize ScoreDimension = "market_size"
	// ScoreProblemSeverity measures how painful the target problem is.
	ScoreProblemSeverity ScoreDimension = "problem_severity"
	// ScoreSolutionFit measures how well the concept solves the problem.
	ScoreSolutionFit ScoreDimension = "solution_fit"
	// ScoreCompetition measures competitive pressure (higher = more open).
	ScoreCompetition ScoreDimension = "competition"
	// ScoreGoToMarket measures ease of reaching the target customer.
	ScoreGoToMarket ScoreDimension = "go_to_market"
	// ScoreMonetization measures revenue potential.
	ScoreMonetization ScoreDimension = "monetization"
	// ScoreDefensibility measures how defensible the position is.
	ScoreDefensibility ScoreDimension = "defensibility"
	// ScoreTiming measures how favorable the current timing is.
	ScoreTiming ScoreDimension = "timing"
)

// ScoreDimensionOrder is the canonical order of scoring dimensions.
var ScoreDimensionOrder = []ScoreDimension{
	ScoreMarketSize,
	ScoreProblemSeverity,
	ScoreSolutionFit,
	ScoreCompetition,
	ScoreGoToMarket,
	ScoreMonetization,
	ScoreDefensibility,
	ScoreTiming,
}

// Valid returns true if the score dimension is a known value.
func (d ScoreDimension) Valid() bool {
	for _, known := range ScoreDimensionOrder {
		if d == known {
			return true
		}
	}
	return false
}

// DimensionScore is one weighted sub-score of a viability assessment.
type DimensionScore struct {
	// Score is the sub-score in the range 0-100.
	Score int `json:"score"`
	// Weight is the relative weight in the range 0-1. Weights need not sum
	// to 1; the aggregate renormalizes by the sum actually supplied.
	Weight float64 `json:"weight"`
	// Rationale is free-text justification for the sub-score.
	Rationale string `json:"rationale,omitempty"`
}

// Tier is the coarse quality bucket derived from an overall score.
type Tier string

const (
	// TierS marks concepts worth pursuing aggressively (overall >= 90).
	TierS Tier = "S"
	// TierA marks concepts worth testing as a hypothesis (overall >= 75).
	TierA Tier = "A"
	// TierB marks concepts worth exploring further (overall >= 60).
	TierB Tier = "B"
	// TierC marks concepts to deprioritize (overall >= 40).
	TierC Tier = "C"
	// TierD marks concepts to skip (overall < 40).
	TierD Tier = "D"
)

// TierOrder lists tiers from best to worst.
var TierOrder = []Tier{TierS, TierA, TierB, TierC, TierD}

// TierForScore maps an overall score to its tier. The thresholds are fixed
// and boundary-inclusive: 90 is S, 75 is A, 60 is B, 40 is C.
func TierForScore(overall int) Tier {
	switch {
	case overall >= 90:
		return TierS
	case overall >= 75:
		return TierA
	case overall >= 60:
		return TierB
	case overall >= 40:
		return TierC
	default:
		return TierD
	}
}

// Recommendation returns the fixed recommendation label for a tier.
func (t Tier) Recommendation() string {
	switch t {
	case TierS:
		return "pursue-aggressively"
	case TierA:
		return "test-hypothesis"
	case TierB:
		return "explore-further"
	case TierC:
		return "deprioritize"
	default:
		return "skip"
	}
}

// ViabilityScore is a multi-dimension weighted assessment of a concept.
type ViabilityScore struct {
	// Dimensions holds the supplied sub-scores. Missing dimensions degrade
	// the aggregate gracefully via renormalization rather than dragging it
	// toward zero.
	Dimensions map[ScoreDimension]DimensionScore `json:"dimensions"`
	// Overall is the weight-normalized aggregate in the range 0-100.
	Overall int `json:"overall"`
	// Tier is derived from Overall by fixed thresholds.
	Tier Tier `json:"tier"`
	// Recommendation is the label derived from the tier.
	Recommendation string `json:"recommendation"`
	// ScoredAt is when the score was computed.
	ScoredAt time.Time `json:"scored_at"`
}
