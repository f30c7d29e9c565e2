package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey indicates that neither the environment nor the config file
// carries an Anthropic API key.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// KeySource says where an API key was resolved from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config file"
	KeySourceNone   KeySource = "none"
)

// ResolveAPIKey returns the Anthropic API key and where it came from.
// The ANTHROPIC_API_KEY environment variable wins over the config file;
// config values may reference env vars, which are expanded here. An
// unexpanded reference counts as unset.
func ResolveAPIKey(cfg *Config) (string, KeySource, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, KeySourceEnv, nil
	}
	if cfg != nil && cfg.Anthropic.APIKey != "" {
		key := os.ExpandEnv(cfg.Anthropic.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, KeySourceConfig, nil
		}
	}
	return "", KeySourceNone, ErrNoAPIKey
}

// GetAPIKey returns the Anthropic API key, env var first, then config.
func GetAPIKey(cfg *Config) (string, error) {
	key, _, err := ResolveAPIKey(cfg)
	return key, err
}

// ValidateAPIKey checks the key's shape without calling Anthropic.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}
	return nil
}

// MaskAPIKey renders a key for display, keeping the prefix and the last
// four characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}
