package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/venturelab/ideaforge/pkg/models"
)

// LoadStrategy reads and validates a strategy file. A missing ID defaults
// to the file name without extension.
func LoadStrategy(path string) (*models.StrategyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategy %s: %w", path, err)
	}

	var strategy models.StrategyConfig
	if err := yaml.Unmarshal(data, &strategy); err != nil {
		return nil, fmt.Errorf("parse strategy %s: %w", path, err)
	}

	if strategy.ID == "" {
		base := filepath.Base(path)
		strategy.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := strategy.Validate(); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", path, err)
	}

	return &strategy, nil
}

// LoadStrategies reads every strategy file in a directory, sorted by ID.
// Non-YAML files are ignored.
func LoadStrategies(dir string) ([]*models.StrategyConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read strategy dir %s: %w", dir, err)
	}

	var strategies []*models.StrategyConfig
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		strategy, err := LoadStrategy(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, strategy)
	}

	sort.Slice(strategies, func(i, j int) bool {
		return strategies[i].ID < strategies[j].ID
	})
	return strategies, nil
}
