package models

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance for strategy configs.
var validate = validator.New()

// DimensionConfig controls how one taxonomy axis participates in generation.
type DimensionConfig struct {
	// Enabled marks the dimension as an axis of the cross-product.
	// A disabled dimension contributes no axis at all.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Filter narrows the dimension's candidate list before enumeration.
	Filter *DimensionFilter `json:"filter,omitempty" yaml:"filter,omitempty"`
	// Weight is the priority weight (1-10). Higher-weight dimensions are
	// enumerated first, so their combinations survive a result cap.
	Weight int `json:"weight" yaml:"weight" validate:"omitempty,min=1,max=10"`
}

// StrategyConstraints bound what a generation run may produce.
type StrategyConstraints struct {
	// MinViabilityScore is the minimum overall score to retain a concept.
	MinViabilityScore int `json:"min_viability_score" yaml:"min_viability_score" validate:"min=0,max=100"`
	// MaxConcepts caps the number of seeds generated (0 = unlimited).
	MaxConcepts int `json:"max_concepts,omitempty" yaml:"max_concepts,omitempty" validate:"min=0"`
	// RequiredDimensions lists axes that must be present in every seed.
	// If a required dimension's filtered candidates are empty, the run
	// yields zero concepts; that outcome is reported, not an error.
	RequiredDimensions []DimensionName `json:"required_dimensions,omitempty" yaml:"required_dimensions,omitempty"`
}

// StrategyConfig is a hypothesis: a named configuration that cross-products
// taxonomy dimensions into candidate concepts.
type StrategyConfig struct {
	// ID is the unique identifier for this strategy.
	ID string `json:"id" yaml:"id" validate:"required"`
	// Name is the human-readable strategy name.
	Name string `json:"name" yaml:"name" validate:"required,min=3"`
	// Thesis is the free-text hypothesis behind the strategy. It is passed
	// verbatim to the content generator and never interpreted here.
	Thesis string `json:"thesis,omitempty" yaml:"thesis,omitempty"`
	// Dimensions holds the per-axis configuration.
	Dimensions map[DimensionName]DimensionConfig `json:"dimensions" yaml:"dimensions"`
	// Constraints bound the generation run.
	Constraints StrategyConstraints `json:"constraints" yaml:"constraints"`
}

// Validate checks the strategy for structural problems. Errors here are
// configuration errors and abort a run before any generation starts.
func (s *StrategyConfig) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid strategy %q: %w", s.ID, err)
	}

	for name, dc := range s.Dimensions {
		if !name.Valid() {
			return fmt.Errorf("invalid strategy %q: unknown dimension %q", s.ID, name)
		}
		if err := validate.Struct(dc); err != nil {
			return fmt.Errorf("invalid strategy %q: dimension %q: %w", s.ID, name, err)
		}
	}

	for _, req := range s.Constraints.RequiredDimensions {
		if !req.Valid() {
			return fmt.Errorf("invalid strategy %q: unknown required dimension %q", s.ID, req)
		}
		if !s.Dimensions[req].Enabled {
			return fmt.Errorf("invalid strategy %q: required dimension %q is not enabled", s.ID, req)
		}
	}

	if len(s.EnabledDimensions()) == 0 {
		return fmt.Errorf("invalid strategy %q: no dimensions enabled", s.ID)
	}

	return nil
}

// EnabledDimensions returns the enabled axes sorted by descending priority
// weight, ties broken by canonical dimension order. This is the enumeration
// order of the cross-product and must stay deterministic.
func (s *StrategyConfig) EnabledDimensions() []DimensionName {
	ord := make(map[DimensionName]int, len(DimensionOrder))
	for i, d := range DimensionOrder {
		ord[d] = i
	}

	var enabled []DimensionName
	for _, d := range DimensionOrder {
		if s.Dimensions[d].Enabled {
			enabled = append(enabled, d)
		}
	}

	sort.SliceStable(enabled, func(i, j int) bool {
		wi := s.Dimensions[enabled[i]].Weight
		wj := s.Dimensions[enabled[j]].Weight
		if wi != wj {
			return wi > wj
		}
		return ord[enabled[i]] < ord[enabled[j]]
	})

	return enabled
}

// IsRequired returns true if the dimension must be present in every seed.
func (s *StrategyConfig) IsRequired(d DimensionName) bool {
	for _, req := range s.Constraints.RequiredDimensions {
		if req == d {
			return true
		}
	}
	return false
}
