// Package filter applies per-dimension filters to taxonomy candidate lists.
package filter

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/venturelab/ideaforge/pkg/models"
)

// ErrInvalidPattern indicates a filter's name pattern is not a valid
// regular expression. This is a configuration error and aborts a run
// before any generation starts.
var ErrInvalidPattern = errors.New("invalid name pattern")

// Apply reduces a dimension's entity list according to the filter.
// Stages run in a fixed order: include IDs, exclude IDs, hierarchy levels,
// name pattern, result cap. The name pattern is a case-insensitive regular
// expression. Input order is preserved and entities are never mutated.
// A nil or zero filter returns a copy of the input.
func Apply(entities []models.DimensionEntity, f *models.DimensionFilter) ([]models.DimensionEntity, error) {
	result := make([]models.DimensionEntity, len(entities))
	copy(result, entities)

	if f.IsZero() {
		return result, nil
	}

	if len(f.IncludeIDs) > 0 {
		include := idSet(f.IncludeIDs)
		result = keep(result, func(e models.DimensionEntity) bool {
			return include[e.ID]
		})
	}

	if len(f.ExcludeIDs) > 0 {
		exclude := idSet(f.ExcludeIDs)
		result = keep(result, func(e models.DimensionEntity) bool {
			return !exclude[e.ID]
		})
	}

	if len(f.Levels) > 0 {
		levels := make(map[int]bool, len(f.Levels))
		for _, l := range f.Levels {
			levels[l] = true
		}
		result = keep(result, func(e models.DimensionEntity) bool {
			return levels[e.Level]
		})
	}

	if f.NamePattern != "" {
		re, err := regexp.Compile("(?i)" + f.NamePattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, f.NamePattern, err)
		}
		result = keep(result, func(e models.DimensionEntity) bool {
			return re.MatchString(e.Name)
		})
	}

	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}

	return result, nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func keep(entities []models.DimensionEntity, pred func(models.DimensionEntity) bool) []models.DimensionEntity {
	filtered := entities[:0]
	for _, e := range entities {
		if pred(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
