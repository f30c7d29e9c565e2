// Package catalog provides read-only access to the taxonomy dimension
// collections (occupations, industries, processes, tasks, services,
// technologies). The catalog is loaded from external taxonomy data and is
// never written to by the rest of the system, so it may be shared freely
// across concurrent work.
package catalog

import (
	"fmt"
	"sync"

	"github.com/venturelab/ideaforge/internal/filter"
	"github.com/venturelab/ideaforge/pkg/models"
)

// Catalog holds the taxonomy collections, one entity list per dimension.
// Lists keep their load order; lookups return copies.
type Catalog struct {
	mu   sync.RWMutex
	dims map[models.DimensionName][]models.DimensionEntity
}

// New creates a catalog from pre-loaded dimension collections.
func New(dims map[models.DimensionName][]models.DimensionEntity) *Catalog {
	c := &Catalog{dims: make(map[models.DimensionName][]models.DimensionEntity)}
	for name, entities := range dims {
		c.dims[name] = append([]models.DimensionEntity(nil), entities...)
	}
	return c
}

// Lookup returns the dimension's entities after applying the filter.
// A nil filter returns every entity in load order.
func (c *Catalog) Lookup(dim models.DimensionName, f *models.DimensionFilter) ([]models.DimensionEntity, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}

	c.mu.RLock()
	entities := c.dims[dim]
	c.mu.RUnlock()

	return filter.Apply(entities, f)
}

// Entities returns a copy of the dimension's full entity list in load order.
func (c *Catalog) Entities(dim models.DimensionName) []models.DimensionEntity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.DimensionEntity(nil), c.dims[dim]...)
}

// Get returns a single entity by ID, or false if not present.
func (c *Catalog) Get(dim models.DimensionName, id string) (models.DimensionEntity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.dims[dim] {
		if e.ID == id {
			return e, true
		}
	}
	return models.DimensionEntity{}, false
}

// Size returns the number of entities loaded for a dimension.
func (c *Catalog) Size(dim models.DimensionName) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.dims[dim])
}

// replace swaps one dimension's entity list. Used by the watcher for hot
// reloads; readers always see either the old or the new list, never a mix.
func (c *Catalog) replace(dim models.DimensionName, entities []models.DimensionEntity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dims[dim] = entities
}
