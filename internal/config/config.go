// Package config provides centralized configuration management for the
// reconciliation engine.
//
// Settings can be loaded from:
//  1. YAML file (settings.yaml), with ${VAR} environment expansion
//  2. Environment variables (fallback)
//
// Raw user input from the settings surface is converted into a
// validated matcher.Preferences value before any matching runs, so a
// broken weight vector fails at save/load time rather than per match.
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	prefs, err := cfg.Matching.Preferences()
//	logger := observability.NewLogger(cfg.Observability.Logging)
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/briankaplan/fresh-expense-2-sub006/internal/domain/matcher"
	"github.com/briankaplan/fresh-expense-2-sub006/internal/domain/scorer"
)

// Config represents the engine-facing application configuration.
type Config struct {
	Matching      MatchingConfig      `yaml:"matching"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// MatchingConfig holds the raw, unvalidated matching preferences as the
// settings surface supplies them.
type MatchingConfig struct {
	Weights                map[string]float64 `yaml:"weights"`
	AmountToleranceRatio   float64            `yaml:"amount_tolerance_ratio"`
	DateWindowDays         int                `yaml:"date_window_days"`
	MerchantMatchThreshold float64            `yaml:"merchant_match_threshold"`
	MinimumConfidence      float64            `yaml:"minimum_confidence"`
	MerchantSimilarity     string             `yaml:"merchant_similarity"`
	ClusterStrategy        string             `yaml:"cluster_strategy"`
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the settings file. Environment references like
// ${RECON_MIN_CONFIDENCE} inside the file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv builds configuration from environment variables only,
// falling back to the stock matching preferences.
func LoadFromEnv() *Config {
	return &Config{
		Matching: MatchingConfig{
			AmountToleranceRatio:   getEnvFloat("RECON_AMOUNT_TOLERANCE", 0),
			DateWindowDays:         getEnvInt("RECON_DATE_WINDOW_DAYS", 0),
			MerchantMatchThreshold: getEnvFloat("RECON_MERCHANT_THRESHOLD", 0),
			MinimumConfidence:      getEnvFloat("RECON_MIN_CONFIDENCE", 0),
			MerchantSimilarity:     os.Getenv("RECON_MERCHANT_SIMILARITY"),
			ClusterStrategy:        os.Getenv("RECON_CLUSTER_STRATEGY"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
}

// LoadOrEnv tries settings.yaml first, then environment variables.
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("settings.yaml")
}

// LoadOrEnvWithPath tries the given path first, then environment
// variables.
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// Preferences converts the raw settings into a validated, immutable
// matcher.Preferences. Absent values fall back to the engine defaults;
// present-but-invalid values return a *matcher.PreferencesError.
func (m MatchingConfig) Preferences() (matcher.Preferences, error) {
	p := matcher.DefaultPreferences()

	if len(m.Weights) > 0 {
		weights := make(map[matcher.Field]float64, len(m.Weights))
		for name, w := range m.Weights {
			weights[matcher.Field(name)] = w
		}
		p.Weights = weights
	}
	if m.AmountToleranceRatio != 0 {
		p.AmountToleranceRatio = m.AmountToleranceRatio
	}
	if m.DateWindowDays != 0 {
		p.DateWindowDays = m.DateWindowDays
	}
	if m.MerchantMatchThreshold != 0 {
		p.MerchantMatchThreshold = m.MerchantMatchThreshold
	}
	if m.MinimumConfidence != 0 {
		p.MinimumConfidence = m.MinimumConfidence
	}
	if m.MerchantSimilarity != "" {
		p.MerchantSimilarity = scorer.SimilarityMode(m.MerchantSimilarity)
	}
	if m.ClusterStrategy != "" {
		p.ClusterStrategy = matcher.ClusterStrategy(m.ClusterStrategy)
	}

	return matcher.NewPreferences(p)
}

// getEnv retrieves an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback
// default.
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback
// default.
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
