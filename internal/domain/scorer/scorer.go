// Package scorer provides the field-level similarity functions used by
// the reconciliation engine.
//
// Every scorer is a pure function returning a similarity in [0,1]:
//   - 1.0 means the two values are identical
//   - 0.0 means no measurable similarity
//
// All scorers are symmetric in their two arguments, so scoring a receipt
// against a transaction gives the same value as the reverse. The matcher
// and dedupe packages rely on that symmetry.
//
// Example usage:
//
//	s := scorer.TextScore("STARBUCKS #4521", "Starbucks", scorer.SimilarityRatio)
//	a := scorer.AmountScore(4.50, 4.50, 0.10)
//	d := scorer.DateScore(receiptDate, txDate, 5)
package scorer

import (
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// SimilarityMode selects how text similarity is computed.
type SimilarityMode string

const (
	// SimilarityRatio scores with the Levenshtein edit-distance ratio
	// over normalized strings. Bounded and symmetric.
	SimilarityRatio SimilarityMode = "ratio"

	// SimilarityHybrid is SimilarityRatio, lifted to 1.0 when one
	// normalized string contains the other. More permissive for
	// abbreviated merchant names ("SBUX Starbucks Coffee").
	SimilarityHybrid SimilarityMode = "hybrid"
)

// Valid reports whether m is a known similarity mode.
func (m SimilarityMode) Valid() bool {
	return m == SimilarityRatio || m == SimilarityHybrid
}

const (
	// zeroAmountEpsilon is the cutoff below which an amount is treated
	// as zero when computing relative error.
	zeroAmountEpsilon = 1e-9

	// zeroAmountTolerance is the absolute fallback tolerance (one cent)
	// used when one of the compared amounts is zero and relative error
	// is undefined.
	zeroAmountTolerance = 0.01
)

// NormalizeText lowercases s and strips every rune that is not a letter
// or digit. "STARBUCKS #4521" normalizes to "starbucks4521".
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TextScore scores two free-text values such as merchant names,
// categories, or locations. Both inputs are normalized first. An empty
// normalized form on either side scores 0; equal normalized forms score
// 1; otherwise the score is max(0, 1 - editDistance/maxLen), with the
// hybrid mode lifting containment either direction to 1.0.
func TextScore(a, b string, mode SimilarityMode) float64 {
	na, nb := NormalizeText(a), NormalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	if mode == SimilarityHybrid && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return 1
	}
	dist := levenshtein.ComputeDistance(na, nb)
	maxLen := utf8.RuneCountInString(na)
	if l := utf8.RuneCountInString(nb); l > maxLen {
		maxLen = l
	}
	return clamp01(1 - float64(dist)/float64(maxLen))
}

// AmountScore scores two monetary amounts under a relative tolerance
// (0.10 means a 10% difference scores exactly 0). The relative error is
// taken against the larger magnitude so the score is symmetric. When one
// amount is zero the relative error is meaningless and the difference is
// compared absolutely against a one-cent floor.
func AmountScore(a, b, toleranceRatio float64) float64 {
	diff := math.Abs(a - b)
	if diff == 0 {
		return 1
	}
	if math.Min(math.Abs(a), math.Abs(b)) < zeroAmountEpsilon {
		return clamp01(1 - diff/zeroAmountTolerance)
	}
	// A non-positive ratio means exact match only; guards the 0/0 that
	// would otherwise produce NaN.
	if toleranceRatio <= 0 {
		return 0
	}
	base := math.Max(math.Abs(a), math.Abs(b))
	return clamp01(1 - (diff/base)/toleranceRatio)
}

// DaysApart returns the whole-day difference between two instants after
// truncating both to their UTC calendar date. Time-of-day never affects
// the result.
func DaysApart(a, b time.Time) int {
	d := toUTCDate(a).Sub(toUTCDate(b)) / (24 * time.Hour)
	if d < 0 {
		d = -d
	}
	return int(d)
}

// DateScore scores temporal proximity: same calendar day scores 1.0 and
// the score decays linearly to 0 at windowDays whole days apart.
func DateScore(a, b time.Time, windowDays int) float64 {
	d := DaysApart(a, b)
	return clamp01(1 - float64(d)/float64(windowDays))
}

func toUTCDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
