package scoring

import (
	"math"
	"sort"

	"github.com/venturelab/ideaforge/pkg/models"
)

// RankOptions adjust how a ranking is computed.
type RankOptions struct {
	// WeightOverrides replaces stored weights for the listed dimensions
	// when recomputing aggregates. Sub-scores are never re-derived; only
	// the weighting changes.
	WeightOverrides map[models.ScoreDimension]float64
	// TopN truncates the ordered result. Zero means no truncation.
	TopN int
}

// RankedConcept is a concept with its position in a ranking.
type RankedConcept struct {
	// Concept is the ranked concept.
	Concept *models.Concept
	// Rank is the 1-based position.
	Rank int
	// DisplayScore is the aggregate used for this ranking; it differs from
	// the stored overall when weight overrides are in effect.
	DisplayScore int
}

// Rank orders scored concepts by descending aggregate, ties broken by
// concept ID ascending, and partitions the result into tiers. Concepts
// without a score are excluded. When TopN truncates the ordering, tiers are
// computed over the returned slice only, so the tier map always describes
// exactly the concepts the caller received.
func Rank(concepts []*models.Concept, opts RankOptions) ([]RankedConcept, map[models.Tier][]string) {
	var ranked []RankedConcept
	for _, c := range concepts {
		if c.Score == nil {
			continue
		}
		ranked = append(ranked, RankedConcept{
			Concept:      c,
			DisplayScore: effectiveScore(c.Score, opts.WeightOverrides),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].DisplayScore != ranked[j].DisplayScore {
			return ranked[i].DisplayScore > ranked[j].DisplayScore
		}
		return ranked[i].Concept.ID < ranked[j].Concept.ID
	})

	if opts.TopN > 0 && len(ranked) > opts.TopN {
		ranked = ranked[:opts.TopN]
	}

	tiers := make(map[models.Tier][]string)
	for i := range ranked {
		ranked[i].Rank = i + 1
		tier := models.TierForScore(ranked[i].DisplayScore)
		tiers[tier] = append(tiers[tier], ranked[i].Concept.ID)
	}

	return ranked, tiers
}

// effectiveScore recomputes the aggregate from stored sub-scores, applying
// any weight overrides. With no overrides it still recomputes, which by the
// renormalization property matches the stored overall.
func effectiveScore(score *models.ViabilityScore, overrides map[models.ScoreDimension]float64) int {
	var weightedSum, weightTotal float64
	for dim, ds := range score.Dimensions {
		w := ds.Weight
		if ov, ok := overrides[dim]; ok {
			w = ov
		}
		weightedSum += float64(ds.Score) * w
		weightTotal += w
	}
	if weightTotal == 0 {
		return 0
	}
	return int(math.Round(weightedSum / weightTotal))
}
