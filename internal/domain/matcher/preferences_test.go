package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPreferences_Defaults(t *testing.T) {
	prefs, err := NewPreferences(DefaultPreferences())

	require.NoError(t, err)
	assert.Equal(t, 0.4, prefs.Weights[FieldMerchant])
	assert.Equal(t, 0.4, prefs.Weights[FieldAmount])
	assert.Equal(t, 0.2, prefs.Weights[FieldDate])
	assert.Equal(t, 5, prefs.DateWindowDays)
}

func TestNewPreferences_WeightsMustSumToOne(t *testing.T) {
	p := DefaultPreferences()
	p.Weights = map[Field]float64{
		FieldMerchant: 0.5,
		FieldAmount:   0.5,
		FieldDate:     0.5, // sum 1.5
	}

	_, err := NewPreferences(p)

	var prefErr *PreferencesError
	require.ErrorAs(t, err, &prefErr)
	assert.Equal(t, "weights", prefErr.Setting)
}

func TestNewPreferences_WeightSumEpsilonTolerated(t *testing.T) {
	p := DefaultPreferences()
	p.Weights = map[Field]float64{
		FieldMerchant: 0.4,
		FieldAmount:   0.4,
		FieldDate:     0.2 + 1e-7, // within the 1e-6 epsilon
	}

	_, err := NewPreferences(p)

	assert.NoError(t, err)
}

func TestNewPreferences_NegativeWeightRejected(t *testing.T) {
	p := DefaultPreferences()
	p.Weights = map[Field]float64{
		FieldMerchant: 1.2,
		FieldAmount:   -0.2,
	}

	_, err := NewPreferences(p)

	var prefErr *PreferencesError
	assert.ErrorAs(t, err, &prefErr)
}

func TestNewPreferences_UnknownFieldRejected(t *testing.T) {
	p := DefaultPreferences()
	p.Weights = map[Field]float64{Field("merchnat"): 1.0}

	_, err := NewPreferences(p)

	var prefErr *PreferencesError
	require.ErrorAs(t, err, &prefErr)
	assert.Contains(t, prefErr.Error(), "merchnat")
}

func TestNewPreferences_EmptyWeightsRejected(t *testing.T) {
	p := DefaultPreferences()
	p.Weights = nil

	_, err := NewPreferences(p)

	var prefErr *PreferencesError
	assert.ErrorAs(t, err, &prefErr)
}

func TestNewPreferences_InvalidTolerances(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Preferences)
	}{
		{"zero amount tolerance", func(p *Preferences) { p.AmountToleranceRatio = 0 }},
		{"negative amount tolerance", func(p *Preferences) { p.AmountToleranceRatio = -0.1 }},
		{"zero date window", func(p *Preferences) { p.DateWindowDays = 0 }},
		{"negative date window", func(p *Preferences) { p.DateWindowDays = -3 }},
		{"merchant threshold above one", func(p *Preferences) { p.MerchantMatchThreshold = 1.5 }},
		{"negative minimum confidence", func(p *Preferences) { p.MinimumConfidence = -0.2 }},
		{"unknown similarity mode", func(p *Preferences) { p.MerchantSimilarity = "soundex" }},
		{"unknown cluster strategy", func(p *Preferences) { p.ClusterStrategy = "agglomerative" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPreferences()
			tt.mutate(&p)

			_, err := NewPreferences(p)

			var prefErr *PreferencesError
			assert.ErrorAs(t, err, &prefErr)
		})
	}
}

func TestNewPreferences_CopiesWeights(t *testing.T) {
	raw := map[Field]float64{FieldMerchant: 0.5, FieldAmount: 0.5}
	p := DefaultPreferences()
	p.Weights = raw

	prefs, err := NewPreferences(p)
	require.NoError(t, err)

	// Mutating the caller's map must not leak into the validated value
	raw[FieldMerchant] = 99
	assert.Equal(t, 0.5, prefs.Weights[FieldMerchant])
}

func TestNewPreferences_FillsModeDefaults(t *testing.T) {
	p := DefaultPreferences()
	p.MerchantSimilarity = ""
	p.ClusterStrategy = ""

	prefs, err := NewPreferences(p)

	require.NoError(t, err)
	assert.True(t, prefs.MerchantSimilarity.Valid())
	assert.Equal(t, ClusterConnected, prefs.ClusterStrategy)
}
