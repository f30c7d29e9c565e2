// Package crossproduct enumerates concept seeds from filtered taxonomy
// dimensions according to a strategy's dimension configuration.
package crossproduct

import (
	"github.com/venturelab/ideaforge/pkg/models"
)

// Generate computes the Cartesian product over the strategy's enabled
// dimensions and returns the resulting seeds, bounded by the strategy's
// MaxConcepts cap.
//
// The enumeration is the natural nested-loop order over dimensions sorted by
// descending priority weight (ties broken by canonical dimension order), so
// the seeds retained under a cap favor combinations from higher-priority
// dimensions. That ordering is part of the contract: it decides which
// concepts win when the cap truncates the product.
//
// A disabled dimension contributes no axis; its absence from a seed is
// valid, not an empty value. If a required dimension's filtered candidate
// list is empty the product is empty by construction, and Generate returns
// an empty seed list without error; callers report that outcome rather
// than failing.
func Generate(dims map[models.DimensionName][]models.DimensionEntity, cfg *models.StrategyConfig) []models.ConceptSeed {
	axes := cfg.EnabledDimensions()

	if len(MissingRequired(dims, cfg)) > 0 {
		return nil
	}

	// Drop enabled axes with no candidates. An optional dimension with
	// nothing to contribute simply doesn't appear in the seeds.
	var active []models.DimensionName
	for _, d := range axes {
		if len(dims[d]) > 0 {
			active = append(active, d)
		}
	}
	if len(active) == 0 {
		return nil
	}

	limit := cfg.Constraints.MaxConcepts

	var seeds []models.ConceptSeed
	// Odometer over the active axes: the first (highest-priority) axis
	// varies slowest, matching nested-loop order.
	idx := make([]int, len(active))
	for {
		seed := make(models.ConceptSeed, len(active))
		for i, d := range active {
			seed[d] = dims[d][idx[i]]
		}
		seeds = append(seeds, seed)

		if limit > 0 && len(seeds) >= limit {
			return seeds
		}

		// Advance the innermost axis, carrying left.
		pos := len(active) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(dims[active[pos]]) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return seeds
		}
	}
}

// MissingRequired returns the required dimensions whose filtered candidate
// lists are empty. A non-empty result means generation yields zero seeds
// for this strategy; that is a reportable outcome, not an error.
func MissingRequired(dims map[models.DimensionName][]models.DimensionEntity, cfg *models.StrategyConfig) []models.DimensionName {
	var missing []models.DimensionName
	for _, req := range cfg.Constraints.RequiredDimensions {
		if len(dims[req]) == 0 {
			missing = append(missing, req)
		}
	}
	return missing
}
