// Package models defines the core domain models for ideaforge.
package models

// DimensionName identifies one taxonomy axis used in cross-product generation.
type DimensionName string

const (
	// DimensionOccupation is the occupation taxonomy axis.
	DimensionOccupation DimensionName = "occupation"
	// DimensionIndustry is the industry taxonomy axis.
	DimensionIndustry DimensionName = "industry"
	// DimensionProcess is the business-process taxonomy axis.
	DimensionProcess DimensionName = "process"
	// DimensionTask is the task taxonomy axis.
	DimensionTask DimensionName = "task"
	// DimensionService is the service taxonomy axis.
	DimensionService DimensionName = "service"
	// DimensionTechnology is the technology taxonomy axis.
	DimensionTechnology DimensionName = "technology"
)

// DimensionOrder is the canonical declaration order of the taxonomy axes.
// It breaks priority-weight ties during cross-product enumeration, so the
// order here is part of the generation contract, not cosmetic.
var DimensionOrder = []DimensionName{
	DimensionOccupation,
	DimensionIndustry,
	DimensionProcess,
	DimensionTask,
	DimensionService,
	DimensionTechnology,
}

// Valid returns true if the dimension name is a known axis.
func (d DimensionName) Valid() bool {
	switch d {
	case DimensionOccupation, DimensionIndustry, DimensionProcess,
		DimensionTask, DimensionService, DimensionTechnology:
		return true
	default:
		return false
	}
}

// DimensionEntity is a single entry in a taxonomy dimension.
// Entities are sourced from an external taxonomy load and are never
// mutated by this system.
type DimensionEntity struct {
	// ID is the stable identifier, unique within its dimension.
	ID string `json:"id" yaml:"id"`
	// Name is the display name.
	Name string `json:"name" yaml:"name"`
	// Level is the hierarchy level; its meaning is dimension-dependent.
	Level int `json:"level" yaml:"level"`
	// Description is free-text context for the entity.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DimensionFilter narrows a dimension's candidate list before generation.
// All fields are optional; a zero filter passes everything through.
type DimensionFilter struct {
	// IncludeIDs, if non-empty, keeps only entities with these IDs.
	IncludeIDs []string `json:"include_ids,omitempty" yaml:"include_ids,omitempty"`
	// ExcludeIDs removes entities with these IDs. Applied after IncludeIDs,
	// so an ID present in both lists is excluded.
	ExcludeIDs []string `json:"exclude_ids,omitempty" yaml:"exclude_ids,omitempty"`
	// Levels, if non-empty, keeps only entities at these hierarchy levels.
	Levels []int `json:"levels,omitempty" yaml:"levels,omitempty"`
	// NamePattern is a case-insensitive regular expression matched against
	// the entity name.
	NamePattern string `json:"name_pattern,omitempty" yaml:"name_pattern,omitempty"`
	// Limit caps the result to the first N entities in original order.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// IsZero returns true if the filter has no constraints set.
func (f *DimensionFilter) IsZero() bool {
	if f == nil {
		return true
	}
	return len(f.IncludeIDs) == 0 && len(f.ExcludeIDs) == 0 &&
		len(f.Levels) == 0 && f.NamePattern == "" && f.Limit == 0
}
