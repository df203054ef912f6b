package matcher

import (
	"log/slog"
	"math"
	"sort"

	"github.com/briankaplan/fresh-expense-2-sub006/internal/domain/scorer"
)

// unknownDays marks a pair whose whole-day distance cannot be computed.
// Maximal so an unknown date never wins a "closer date" tie-break over a
// known one.
const unknownDays = math.MaxInt

// RankedCandidate pairs one candidate with its score breakdown and the
// raw distances used for deterministic tie-breaking.
type RankedCandidate struct {
	CandidateID string
	Breakdown   Breakdown

	// DaysApart is the whole-day distance between target and candidate
	// dates; math.MaxInt when either date is unknown.
	DaysApart int

	// AmountDiff is the absolute amount difference.
	AmountDiff float64
}

// ExcludedRecord names a record left out of a ranking or grouping call
// and why. Callers surface these for manual attention.
type ExcludedRecord struct {
	RecordID string
	Reason   string
}

// MatchResult is the outcome of ranking a candidate pool against one
// target record.
type MatchResult struct {
	// TargetID is the input record's id.
	TargetID string

	// Ranked is ordered by TotalScore descending. Ties break by closer
	// date, then smaller amount difference, then id ascending, so the
	// ordering is reproducible given identical inputs.
	Ranked []RankedCandidate

	// Best is the head of Ranked when it passed thresholds, else nil.
	// A nil Best with a non-empty Ranked means "possible, needs review".
	Best *RankedCandidate

	// Excluded lists candidates that could not be scored (missing
	// occurred-on date while the date dimension is weighted).
	Excluded []ExcludedRecord
}

// Ranker scores a candidate pool against one target record. It holds
// only immutable preferences and a logger, so a single Ranker is safe
// for concurrent use.
type Ranker struct {
	prefs  Preferences
	logger *slog.Logger
}

// NewRanker validates p and returns a ranker. A nil logger discards
// diagnostics.
func NewRanker(p Preferences, logger *slog.Logger) (*Ranker, error) {
	prefs, err := NewPreferences(p)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ranker{prefs: prefs, logger: logger}, nil
}

// Preferences returns the validated preferences the ranker was built
// with.
func (r *Ranker) Preferences() Preferences {
	return r.prefs
}

// Rank scores every candidate against target, sorts descending by total
// score, and gates the best match on the configured thresholds.
//
// An empty candidate pool is not an error: Ranked comes back empty and
// Best nil. A non-finite amount on the target or any candidate fails
// the whole call with a *MalformedRecordError; no partial ranking is
// returned. Candidates without a usable date are excluded from Ranked
// and reported in Excluded when the date dimension is weighted.
func (r *Ranker) Rank(target Record, candidates []Record) (*MatchResult, error) {
	if err := checkFinite(target); err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if err := checkFinite(c); err != nil {
			return nil, err
		}
	}

	result := &MatchResult{TargetID: target.ID}

	if r.prefs.dateWeighted() && !target.HasDate() {
		r.logger.Warn("target has no occurred-on date, date dimension scores zero",
			"record_id", target.ID)
	}

	for _, c := range candidates {
		if r.prefs.dateWeighted() && !c.HasDate() {
			result.Excluded = append(result.Excluded, ExcludedRecord{
				RecordID: c.ID,
				Reason:   "missing occurred-on date",
			})
			r.logger.Debug("candidate excluded from ranking",
				"target_id", target.ID, "record_id", c.ID, "reason", "missing occurred-on date")
			continue
		}

		rc := RankedCandidate{
			CandidateID: c.ID,
			Breakdown:   Score(target, c, r.prefs),
			DaysApart:   unknownDays,
			AmountDiff:  math.Abs(target.Amount - c.Amount),
		}
		if target.HasDate() && c.HasDate() {
			rc.DaysApart = scorer.DaysApart(target.OccurredOn, c.OccurredOn)
		}
		result.Ranked = append(result.Ranked, rc)
	}

	sort.Slice(result.Ranked, func(i, j int) bool {
		a, b := result.Ranked[i], result.Ranked[j]
		if a.Breakdown.TotalScore != b.Breakdown.TotalScore {
			return a.Breakdown.TotalScore > b.Breakdown.TotalScore
		}
		if a.DaysApart != b.DaysApart {
			return a.DaysApart < b.DaysApart
		}
		if a.AmountDiff != b.AmountDiff {
			return a.AmountDiff < b.AmountDiff
		}
		return a.CandidateID < b.CandidateID
	})

	if len(result.Ranked) > 0 && result.Ranked[0].Breakdown.PassedThresholds {
		best := result.Ranked[0]
		result.Best = &best
	}
	return result, nil
}

// checkFinite rejects NaN and infinite amounts before any scoring runs.
func checkFinite(rec Record) error {
	if math.IsNaN(rec.Amount) || math.IsInf(rec.Amount, 0) {
		return &MalformedRecordError{RecordID: rec.ID, Amount: rec.Amount}
	}
	return nil
}
