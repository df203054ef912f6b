package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briankaplan/fresh-expense-2-sub006/internal/domain/matcher"
	"github.com/briankaplan/fresh-expense-2-sub006/internal/domain/scorer"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullSettings(t *testing.T) {
	path := writeSettings(t, `
matching:
  weights:
    merchant: 0.5
    amount: 0.3
    date: 0.2
  amount_tolerance_ratio: 0.05
  date_window_days: 3
  merchant_match_threshold: 0.75
  minimum_confidence: 0.65
  merchant_similarity: hybrid
  cluster_strategy: clique
observability:
  logging:
    level: debug
    format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	prefs, err := cfg.Matching.Preferences()
	require.NoError(t, err)
	assert.Equal(t, 0.5, prefs.Weights[matcher.FieldMerchant])
	assert.Equal(t, 3, prefs.DateWindowDays)
	assert.Equal(t, 0.05, prefs.AmountToleranceRatio)
	assert.Equal(t, scorer.SimilarityHybrid, prefs.MerchantSimilarity)
	assert.Equal(t, matcher.ClusterClique, prefs.ClusterStrategy)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("RECON_MIN_CONFIDENCE", "0.9")
	path := writeSettings(t, `
matching:
  minimum_confidence: ${RECON_MIN_CONFIDENCE}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	prefs, err := cfg.Matching.Preferences()
	require.NoError(t, err)
	assert.Equal(t, 0.9, prefs.MinimumConfidence)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPreferences_DefaultsWhenUnset(t *testing.T) {
	prefs, err := MatchingConfig{}.Preferences()

	require.NoError(t, err)
	assert.Equal(t, matcher.DefaultPreferences().Weights, prefs.Weights)
	assert.Equal(t, 0.7, prefs.MinimumConfidence)
}

func TestPreferences_BadWeightsBlockSave(t *testing.T) {
	cfg := MatchingConfig{
		Weights: map[string]float64{"merchant": 0.5, "amount": 0.5, "date": 0.5},
	}

	_, err := cfg.Preferences()

	var prefErr *matcher.PreferencesError
	assert.ErrorAs(t, err, &prefErr)
}

func TestPreferences_UnknownFieldRejected(t *testing.T) {
	cfg := MatchingConfig{
		Weights: map[string]float64{"merchant": 0.5, "vendor": 0.5},
	}

	_, err := cfg.Preferences()

	var prefErr *matcher.PreferencesError
	require.ErrorAs(t, err, &prefErr)
	assert.Contains(t, prefErr.Error(), "vendor")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RECON_AMOUNT_TOLERANCE", "0.2")
	t.Setenv("RECON_DATE_WINDOW_DAYS", "10")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := LoadFromEnv()

	prefs, err := cfg.Matching.Preferences()
	require.NoError(t, err)
	assert.Equal(t, 0.2, prefs.AmountToleranceRatio)
	assert.Equal(t, 10, prefs.DateWindowDays)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
}

func TestLoadOrEnvWithPath_FallsBack(t *testing.T) {
	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NotNil(t, cfg)
	_, err := cfg.Matching.Preferences()
	assert.NoError(t, err)
}
