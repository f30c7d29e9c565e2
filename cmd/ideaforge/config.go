package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/venturelab/ideaforge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/ideaforge/config.yaml
Project-specific overrides can be placed in .ideaforge.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	if key, source, err := config.ResolveAPIKey(cfg); err != nil {
		fmt.Println("anthropic.api_key: (not set)")
	} else {
		fmt.Printf("anthropic.api_key: %s (from %s)\n", config.MaskAPIKey(key), source)
	}
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("anthropic.aws_region: %s\n", cfg.Anthropic.AWSRegion)
	fmt.Printf("anthropic.aws_profile: %s\n", cfg.Anthropic.AWSProfile)
	fmt.Printf("pipeline.concurrency: %d\n", cfg.Pipeline.Concurrency)
	fmt.Printf("pipeline.max_parallel_steps: %d\n", cfg.Pipeline.MaxParallelSteps)
	fmt.Printf("pipeline.generation_timeout: %s\n", cfg.Pipeline.GenerationTimeout)
	fmt.Printf("pipeline.top_n: %d\n", cfg.Pipeline.TopN)
	fmt.Printf("paths.taxonomy_dir: %s\n", cfg.Paths.TaxonomyDir)
	fmt.Printf("paths.db_path: %s\n", cfg.Paths.DBPath)
	fmt.Printf("paths.debug_log: %s\n", cfg.Paths.DebugLog)
	fmt.Printf("catalog.watch: %t\n", cfg.Catalog.Watch)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseBedrock), nil
	case "anthropic.aws_region":
		return cfg.Anthropic.AWSRegion, nil
	case "anthropic.aws_profile":
		return cfg.Anthropic.AWSProfile, nil
	case "pipeline.concurrency":
		return strconv.Itoa(cfg.Pipeline.Concurrency), nil
	case "pipeline.max_parallel_steps":
		return strconv.Itoa(cfg.Pipeline.MaxParallelSteps), nil
	case "pipeline.generation_timeout":
		return cfg.Pipeline.GenerationTimeout.String(), nil
	case "pipeline.top_n":
		return strconv.Itoa(cfg.Pipeline.TopN), nil
	case "paths.taxonomy_dir":
		return cfg.Paths.TaxonomyDir, nil
	case "paths.db_path":
		return cfg.Paths.DBPath, nil
	case "paths.debug_log":
		return cfg.Paths.DebugLog, nil
	case "catalog.watch":
		return strconv.FormatBool(cfg.Catalog.Watch), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "anthropic.api_key":
		if err := config.ValidateAPIKey(value); err != nil {
			return err
		}
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %s", key, value)
		}
		cfg.Anthropic.UseBedrock = b
	case "anthropic.aws_region":
		cfg.Anthropic.AWSRegion = value
	case "anthropic.aws_profile":
		cfg.Anthropic.AWSProfile = value
	case "pipeline.concurrency":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid value for %s: %s", key, value)
		}
		cfg.Pipeline.Concurrency = n
	case "pipeline.max_parallel_steps":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid value for %s: %s", key, value)
		}
		cfg.Pipeline.MaxParallelSteps = n
	case "pipeline.generation_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		cfg.Pipeline.GenerationTimeout = d
	case "pipeline.top_n":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid value for %s: %s", key, value)
		}
		cfg.Pipeline.TopN = n
	case "paths.taxonomy_dir":
		cfg.Paths.TaxonomyDir = value
	case "paths.db_path":
		cfg.Paths.DBPath = value
	case "paths.debug_log":
		cfg.Paths.DebugLog = value
	case "catalog.watch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %s", key, value)
		}
		cfg.Catalog.Watch = b
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
