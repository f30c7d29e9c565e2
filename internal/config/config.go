// Package config handles configuration loading and management.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/venturelab/ideaforge/internal/scoring"
	"github.com/venturelab/ideaforge/pkg/models"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Paths     PathsConfig     `mapstructure:"paths"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// PipelineConfig holds execution settings for generation runs.
type PipelineConfig struct {
	// Concurrency bounds fan-out within a step (enrichment, synthesis,
	// scoring calls in flight at once).
	Concurrency int `mapstructure:"concurrency"`
	// MaxParallelSteps bounds how many pipeline steps run concurrently.
	MaxParallelSteps int `mapstructure:"max_parallel_steps"`
	// GenerationTimeout caps each generation call.
	GenerationTimeout time.Duration `mapstructure:"generation_timeout"`
	// TopN truncates the final ranking (0 = keep everything).
	TopN int `mapstructure:"top_n"`
}

// ScoringConfig holds viability scoring settings.
type ScoringConfig struct {
	// Weights overrides the default per-dimension weights, keyed by
	// dimension name. Missing dimensions keep their defaults.
	Weights map[string]float64 `mapstructure:"weights"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	// TaxonomyDir is the directory of per-dimension taxonomy YAML files.
	TaxonomyDir string `mapstructure:"taxonomy_dir"`
	// DBPath is the SQLite database location ("" = global default).
	DBPath string `mapstructure:"db_path"`
	// DebugLog is the debug log file ("" = disabled).
	DebugLog string `mapstructure:"debug_log"`
}

// CatalogConfig holds taxonomy catalog settings.
type CatalogConfig struct {
	// Watch reloads the catalog when taxonomy files change on disk.
	Watch bool `mapstructure:"watch"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.ideaforge.yaml in current directory or parent)
// 3. User config (~/.config/ideaforge/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Project config takes precedence over user config.
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("")
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("pipeline.concurrency", cfg.Pipeline.Concurrency)
	v.Set("pipeline.max_parallel_steps", cfg.Pipeline.MaxParallelSteps)
	v.Set("pipeline.generation_timeout", cfg.Pipeline.GenerationTimeout.String())
	v.Set("pipeline.top_n", cfg.Pipeline.TopN)
	v.Set("scoring.weights", cfg.Scoring.Weights)
	v.Set("paths.taxonomy_dir", cfg.Paths.TaxonomyDir)
	v.Set("paths.db_path", cfg.Paths.DBPath)
	v.Set("paths.debug_log", cfg.Paths.DebugLog)
	v.Set("catalog.watch", cfg.Catalog.Watch)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// ScoringWeights merges the configured weight overrides over the default
// per-dimension weights, dropping unknown dimension names. Dimensions the
// config does not mention keep their defaults. Returns nil when nothing is
// configured so callers fall back to the defaults wholesale.
func (c *Config) ScoringWeights() map[models.ScoreDimension]float64 {
	if len(c.Scoring.Weights) == 0 {
		return nil
	}
	overridden := false
	weights := make(map[models.ScoreDimension]float64, len(scoring.DefaultWeights))
	for dim, w := range scoring.DefaultWeights {
		weights[dim] = w
	}
	for name, w := range c.Scoring.Weights {
		dim := models.ScoreDimension(name)
		if dim.Valid() {
			weights[dim] = w
			overridden = true
		}
	}
	if !overridden {
		return nil
	}
	return weights
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_bedrock", false)

	v.SetDefault("pipeline.concurrency", 4)
	v.SetDefault("pipeline.max_parallel_steps", 4)
	v.SetDefault("pipeline.generation_timeout", "90s")
	v.SetDefault("pipeline.top_n", 0)

	v.SetDefault("paths.taxonomy_dir", "taxonomies")
	v.SetDefault("paths.db_path", "")
	v.SetDefault("paths.debug_log", "")

	v.SetDefault("catalog.watch", false)
}

// getUserConfigDir returns the XDG config directory.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ideaforge")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "ideaforge")
	}
	return filepath.Join(home, ".config", "ideaforge")
}

// findProjectConfig searches for .ideaforge.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".ideaforge.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Concurrency:       4,
			MaxParallelSteps:  4,
			GenerationTimeout: 90 * time.Second,
		},
		Paths: PathsConfig{
			TaxonomyDir: "taxonomies",
		},
	}
}
