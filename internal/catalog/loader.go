package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/venturelab/ideaforge/pkg/models"
)

// taxonomyFile is the on-disk shape of one dimension's taxonomy.
type taxonomyFile struct {
	Dimension string                   `yaml:"dimension"`
	Entities  []models.DimensionEntity `yaml:"entities"`
}

// LoadDir loads a catalog from a directory of taxonomy YAML files, one file
// per dimension (occupation.yaml, industry.yaml, ...). Files that don't
// correspond to a known dimension are ignored. Entity order within a file
// is preserved.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy dir: %w", err)
	}

	dims := make(map[models.DimensionName][]models.DimensionEntity)
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		dim := dimensionForFile(entry.Name())
		if !dim.Valid() {
			continue
		}

		entities, err := loadFile(filepath.Join(dir, entry.Name()), dim)
		if err != nil {
			return nil, err
		}
		dims[dim] = entities
	}

	if len(dims) == 0 {
		return nil, fmt.Errorf("no taxonomy files found in %s", dir)
	}

	return New(dims), nil
}

// loadFile parses one taxonomy file and checks it against the expected
// dimension.
func loadFile(path string, dim models.DimensionName) ([]models.DimensionEntity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}

	var tf taxonomyFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	if tf.Dimension != "" && models.DimensionName(tf.Dimension) != dim {
		return nil, fmt.Errorf("%s declares dimension %q, expected %q",
			filepath.Base(path), tf.Dimension, dim)
	}

	seen := make(map[string]bool, len(tf.Entities))
	for _, e := range tf.Entities {
		if e.ID == "" {
			return nil, fmt.Errorf("%s: entity with empty id", filepath.Base(path))
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("%s: duplicate entity id %q", filepath.Base(path), e.ID)
		}
		seen[e.ID] = true
	}

	return tf.Entities, nil
}

// dimensionForFile maps a taxonomy file name to its dimension.
func dimensionForFile(name string) models.DimensionName {
	base := strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml")
	return models.DimensionName(base)
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
