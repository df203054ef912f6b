package matcher

import (
	"math"

	"github.com/briankaplan/fresh-expense-2-sub006/internal/domain/scorer"
)

// weightSumEpsilon tolerates floating-point drift when checking that
// weights sum to 1.0 (0.4 + 0.4 + 0.2 is not exactly 1 in binary).
const weightSumEpsilon = 1e-6

// ClusterStrategy selects how the dedupe grouper turns the similarity
// graph into duplicate clusters.
type ClusterStrategy string

const (
	// ClusterConnected merges connected components of the similarity
	// graph. Transitive: A~B and B~C puts all three in one cluster even
	// when A and C are not directly similar.
	ClusterConnected ClusterStrategy = "connected"

	// ClusterClique only merges sets whose members are all mutually
	// similar. More conservative; avoids chaining unrelated records
	// through a bridge record.
	ClusterClique ClusterStrategy = "clique"
)

// Valid reports whether s is a known cluster strategy.
func (s ClusterStrategy) Valid() bool {
	return s == ClusterConnected || s == ClusterClique
}

// Preferences is the immutable configuration governing all scoring in a
// ranking or grouping call. Two preference values with equal fields are
// interchangeable; there is no identity beyond the values.
//
// Construct through NewPreferences, which validates and defensively
// copies the weight map. Callers must not mutate Weights afterwards.
type Preferences struct {
	// Weights maps field to weight. All weights must be >= 0 and the
	// sum must be 1.0 within a small epsilon. A field with weight 0 is
	// never evaluated.
	Weights map[Field]float64

	// AmountToleranceRatio is the relative amount tolerance, applied
	// symmetrically (0.10 = 10%). Must be > 0.
	AmountToleranceRatio float64

	// DateWindowDays is the largest whole-day difference that still
	// scores above zero. Must be > 0.
	DateWindowDays int

	// MerchantMatchThreshold is the minimum merchant score for the
	// merchant dimension to count as matched. In [0,1].
	MerchantMatchThreshold float64

	// MinimumConfidence is the overall total-score floor for a
	// candidate to pass thresholds. In [0,1].
	MinimumConfidence float64

	// MerchantSimilarity selects the text-similarity policy. Empty
	// defaults to scorer.SimilarityRatio.
	MerchantSimilarity scorer.SimilarityMode

	// ClusterStrategy selects the dedupe clustering policy. Empty
	// defaults to ClusterConnected.
	ClusterStrategy ClusterStrategy
}

// DefaultPreferences returns the stock configuration: merchant 40%,
// amount 40%, date 20%, 10% amount tolerance, a five-day date window,
// a 0.8 merchant bar, and a 0.7 confidence floor.
func DefaultPreferences() Preferences {
	return Preferences{
		Weights: map[Field]float64{
			FieldMerchant: 0.4,
			FieldAmount:   0.4,
			FieldDate:     0.2,
		},
		AmountToleranceRatio:   0.10,
		DateWindowDays:         5,
		MerchantMatchThreshold: 0.8,
		MinimumConfidence:      0.7,
		MerchantSimilarity:     scorer.SimilarityRatio,
		ClusterStrategy:        ClusterConnected,
	}
}

// NewPreferences validates p and returns a canonical copy with defaults
// filled for the similarity mode and cluster strategy. The weight map is
// copied so later mutation of the input cannot leak into the engine.
// Returns a *PreferencesError when any value is out of range.
func NewPreferences(p Preferences) (Preferences, error) {
	if len(p.Weights) == 0 {
		return Preferences{}, &PreferencesError{Setting: "weights", Reason: "at least one field must be weighted"}
	}

	known := make(map[Field]bool, len(fieldOrder))
	for _, f := range fieldOrder {
		known[f] = true
	}

	sum := 0.0
	weights := make(map[Field]float64, len(p.Weights))
	for f, w := range p.Weights {
		if !known[f] {
			return Preferences{}, &PreferencesError{Setting: "weights", Reason: "unknown field " + string(f)}
		}
		if math.IsNaN(w) || w < 0 {
			return Preferences{}, &PreferencesError{Setting: "weights", Reason: "weight for " + string(f) + " must be >= 0"}
		}
		weights[f] = w
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumEpsilon {
		return Preferences{}, &PreferencesError{Setting: "weights", Reason: "weights must sum to 1.0"}
	}

	if !(p.AmountToleranceRatio > 0) {
		return Preferences{}, &PreferencesError{Setting: "amount_tolerance_ratio", Reason: "must be > 0"}
	}
	if p.DateWindowDays <= 0 {
		return Preferences{}, &PreferencesError{Setting: "date_window_days", Reason: "must be > 0"}
	}
	if math.IsNaN(p.MerchantMatchThreshold) || p.MerchantMatchThreshold < 0 || p.MerchantMatchThreshold > 1 {
		return Preferences{}, &PreferencesError{Setting: "merchant_match_threshold", Reason: "must be in [0,1]"}
	}
	if math.IsNaN(p.MinimumConfidence) || p.MinimumConfidence < 0 || p.MinimumConfidence > 1 {
		return Preferences{}, &PreferencesError{Setting: "minimum_confidence", Reason: "must be in [0,1]"}
	}

	if p.MerchantSimilarity == "" {
		p.MerchantSimilarity = scorer.SimilarityRatio
	}
	if !p.MerchantSimilarity.Valid() {
		return Preferences{}, &PreferencesError{Setting: "merchant_similarity", Reason: "unknown mode " + string(p.MerchantSimilarity)}
	}

	if p.ClusterStrategy == "" {
		p.ClusterStrategy = ClusterConnected
	}
	if !p.ClusterStrategy.Valid() {
		return Preferences{}, &PreferencesError{Setting: "cluster_strategy", Reason: "unknown strategy " + string(p.ClusterStrategy)}
	}

	p.Weights = weights
	return p, nil
}

// weight returns the configured weight for f, zero when unweighted.
func (p Preferences) weight(f Field) float64 {
	return p.Weights[f]
}

// dateWeighted reports whether temporal proximity participates in
// scoring at all.
func (p Preferences) dateWeighted() bool {
	return p.weight(FieldDate) > 0
}
