// Package scoring computes viability scores for concepts and ranks scored
// concepts into tiers.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/venturelab/ideaforge/pkg/models"
)

// ErrInsufficientScoringData indicates no scoring dimensions were supplied,
// so the aggregate is undefined. The failure is isolated to the concept it
// occurred on.
var ErrInsufficientScoringData = errors.New("insufficient scoring data")

// DefaultWeights are the baseline dimension weights. They are configuration,
// not logic: strategies and callers may override any subset.
var DefaultWeights = map[models.ScoreDimension]float64{
	models.ScoreMarketSize:      0.2,
	models.ScoreProblemSeverity: 0.2,
	models.ScoreSolutionFit:     0.15,
	models.ScoreCompetition:     0.1,
	models.ScoreGoToMarket:      0.1,
	models.ScoreMonetization:    0.1,
	models.ScoreDefensibility:   0.1,
	models.ScoreTiming:          0.05,
}

// DimensionInput is one supplied sub-score for a scoring dimension.
type DimensionInput struct {
	// Score is the sub-score in the range 0-100.
	Score int
	// Weight is the relative weight in the range 0-1.
	Weight float64
	// Rationale is the free-text justification.
	Rationale string
}

// Score computes a viability score from the supplied dimension inputs. The
// aggregate is the weight-normalized sum over the dimensions actually
// supplied: missing dimensions degrade gracefully instead of dragging the
// aggregate down. Supplying no dimensions fails with
// ErrInsufficientScoringData.
func Score(inputs map[models.ScoreDimension]DimensionInput) (models.ViabilityScore, error) {
	if len(inputs) == 0 {
		return models.ViabilityScore{}, ErrInsufficientScoringData
	}

	dims := make(map[models.ScoreDimension]models.DimensionScore, len(inputs))
	var weightedSum, weightTotal float64
	for dim, in := range inputs {
		if !dim.Valid() {
			return models.ViabilityScore{}, fmt.Errorf("unknown scoring dimension %q", dim)
		}
		if in.Score < 0 || in.Score > 100 {
			return models.ViabilityScore{}, fmt.Errorf("dimension %s: score %d out of range 0-100", dim, in.Score)
		}
		if in.Weight < 0 || in.Weight > 1 {
			return models.ViabilityScore{}, fmt.Errorf("dimension %s: weight %g out of range 0-1", dim, in.Weight)
		}

		dims[dim] = models.DimensionScore{Score: in.Score, Weight: in.Weight, Rationale: in.Rationale}
		weightedSum += float64(in.Score) * in.Weight
		weightTotal += in.Weight
	}

	if weightTotal == 0 {
		return models.ViabilityScore{}, fmt.Errorf("%w: all supplied weights are zero", ErrInsufficientScoringData)
	}

	overall := int(math.Round(weightedSum / weightTotal))
	tier := models.TierForScore(overall)

	return models.ViabilityScore{
		Dimensions:     dims,
		Overall:        overall,
		Tier:           tier,
		Recommendation: tier.Recommendation(),
		ScoredAt:       time.Now().UTC(),
	}, nil
}
