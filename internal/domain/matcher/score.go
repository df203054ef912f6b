package matcher

import (
	"github.com/briankaplan/fresh-expense-2-sub006/internal/domain/scorer"
)

// Breakdown holds the per-field and aggregate similarity for one
// (target, candidate) pair.
type Breakdown struct {
	// FieldScores maps each weighted field to its similarity in [0,1].
	// Unweighted fields are never evaluated and never appear here.
	FieldScores map[Field]float64

	// TotalScore is the weighted aggregate. Weights sum to 1, so it
	// stays in [0,1] by construction.
	TotalScore float64

	// MatchedFields lists the fields whose score met their "counts as
	// matched" bar, in a fixed field order. Diagnostic only: it tells
	// the caller why a match was suggested, independent of TotalScore.
	MatchedFields []Field

	// PassedThresholds is true only when every weighted per-field bar
	// and the overall minimum confidence are satisfied.
	PassedThresholds bool
}

// Score computes the weighted similarity between two records under p.
// Only fields with a positive weight are evaluated; with a zero weight
// the underlying data may be absent without affecting the result.
//
// Score is symmetric: Score(a, b, p) == Score(b, a, p). The dedupe
// grouper depends on this when it treats scoring as an undirected
// similarity relation.
//
// A missing date on either side scores the date dimension 0; excluding
// such records from ranking altogether is the Ranker's job.
func Score(a, b Record, p Preferences) Breakdown {
	bd := Breakdown{
		FieldScores:      make(map[Field]float64),
		PassedThresholds: true,
	}

	for _, f := range fieldOrder {
		w := p.weight(f)
		if w <= 0 {
			continue
		}

		var s float64
		switch f {
		case FieldAmount:
			s = scorer.AmountScore(a.Amount, b.Amount, p.AmountToleranceRatio)
		case FieldDate:
			if a.HasDate() && b.HasDate() {
				s = scorer.DateScore(a.OccurredOn, b.OccurredOn, p.DateWindowDays)
			}
		default:
			s = scorer.TextScore(a.textValue(f), b.textValue(f), p.MerchantSimilarity)
		}

		bd.FieldScores[f] = s
		bd.TotalScore += w * s

		if fieldMatched(f, s, p) {
			bd.MatchedFields = append(bd.MatchedFields, f)
		} else if hasPerFieldBar(f) {
			bd.PassedThresholds = false
		}
	}

	// Weights may legally sum to 1 plus the validation epsilon, which
	// with perfect field scores nudges the sum past 1.
	bd.TotalScore = clamp01(bd.TotalScore)

	if bd.TotalScore < p.MinimumConfidence {
		bd.PassedThresholds = false
	}
	return bd
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

// fieldMatched applies the per-field "counts as matched" bar: merchant
// must clear the configured threshold, everything else just has to
// score above zero.
func fieldMatched(f Field, score float64, p Preferences) bool {
	if f == FieldMerchant {
		return score >= p.MerchantMatchThreshold
	}
	return score > 0
}

// hasPerFieldBar reports whether failing the matched bar for f also
// fails the overall threshold gate. Only the core dimensions gate;
// optional attributes merely inform MatchedFields.
func hasPerFieldBar(f Field) bool {
	return f == FieldMerchant || f == FieldAmount || f == FieldDate
}
