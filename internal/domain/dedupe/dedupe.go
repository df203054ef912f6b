// Package dedupe collapses near-duplicate records (double-imported bank
// transactions, re-scanned receipts) into clusters.
//
// Two records are linked when their mutual similarity, computed with the
// same scoring rules the matcher uses for reconciliation, reaches the
// configured minimum confidence. Clusters are either connected
// components of that similarity graph (the default, transitive) or
// mutually-similar sets (the conservative "clique" strategy).
//
// Each cluster designates a primary record (earliest occurred-on date,
// ties broken by id) and a merge preview that flags every field where
// members disagree. The engine never auto-resolves a disagreement; the
// caller drives the actual merge.
package dedupe

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/briankaplan/fresh-expense-2-sub006/internal/domain/matcher"
	"github.com/briankaplan/fresh-expense-2-sub006/internal/domain/scorer"
)

// Preview carries the primary's field values plus the fields on which
// at least one other cluster member disagrees. Text fields compare by
// normalized form, amount and date compare exactly.
type Preview struct {
	MerchantName  string
	Amount        float64
	OccurredOn    time.Time
	Category      string
	PaymentMethod string
	LocationText  string

	// Disagreements lists the fields needing manual resolution, in a
	// fixed field order.
	Disagreements []matcher.Field
}

// Cluster is one group of mutually near-matching records.
type Cluster struct {
	// Members holds the record ids, sorted ascending, always size >= 2.
	Members []string

	// Primary is the member that survives a merge: earliest occurred-on
	// date, ties broken by lexical id.
	Primary string

	// MergedPreview is the primary's values annotated with
	// disagreements across the cluster.
	MergedPreview Preview
}

// Result is the outcome of one grouping call.
type Result struct {
	// Clusters is sorted by primary id for reproducible output.
	Clusters []Cluster

	// Excluded lists records that could not be scored (missing
	// occurred-on date while the date dimension is weighted).
	Excluded []matcher.ExcludedRecord
}

// Grouper finds duplicate clusters in a flat record pool. Like the
// Ranker it holds only immutable state and is safe for concurrent use.
type Grouper struct {
	prefs  matcher.Preferences
	logger *slog.Logger
}

// NewGrouper validates p and returns a grouper. A nil logger discards
// diagnostics.
func NewGrouper(p matcher.Preferences, logger *slog.Logger) (*Grouper, error) {
	prefs, err := matcher.NewPreferences(p)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Grouper{prefs: prefs, logger: logger}, nil
}

// Group clusters records whose pairwise total score reaches the
// configured minimum confidence. Singleton components are dropped: a
// record similar to nothing is not a duplicate.
//
// A non-finite amount on any record fails the whole call with a
// *MalformedRecordError. Results do not depend on input order: members,
// primaries, and cluster order are all derived deterministically.
func (g *Grouper) Group(records []matcher.Record) (*Result, error) {
	result := &Result{}

	pool := make([]matcher.Record, 0, len(records))
	for _, rec := range records {
		if err := checkFinite(rec); err != nil {
			return nil, err
		}
		if g.dateWeighted() && !rec.HasDate() {
			result.Excluded = append(result.Excluded, matcher.ExcludedRecord{
				RecordID: rec.ID,
				Reason:   "missing occurred-on date",
			})
			g.logger.Debug("record excluded from duplicate grouping",
				"record_id", rec.ID, "reason", "missing occurred-on date")
			continue
		}
		pool = append(pool, rec)
	}

	// Canonical order makes every downstream step independent of the
	// caller's input ordering.
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	similar := g.similarityEdges(pool)

	var components [][]int
	if g.prefs.ClusterStrategy == matcher.ClusterClique {
		components = cliqueClusters(pool, similar)
	} else {
		components = connectedComponents(pool, similar)
	}

	for _, comp := range components {
		if len(comp) < 2 {
			continue
		}
		result.Clusters = append(result.Clusters, g.buildCluster(pool, comp))
	}

	sort.Slice(result.Clusters, func(i, j int) bool {
		return result.Clusters[i].Primary < result.Clusters[j].Primary
	})
	return result, nil
}

// similarityEdges computes the undirected similarity relation over the
// pool. Scoring is symmetric, so each pair is evaluated once.
func (g *Grouper) similarityEdges(pool []matcher.Record) map[[2]int]bool {
	edges := make(map[[2]int]bool)
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			bd := matcher.Score(pool[i], pool[j], g.prefs)
			if bd.TotalScore >= g.prefs.MinimumConfidence {
				edges[[2]int{i, j}] = true
			}
		}
	}
	return edges
}

func (g *Grouper) dateWeighted() bool {
	return g.prefs.Weights[matcher.FieldDate] > 0
}

// buildCluster elects the primary and assembles the merge preview for
// one component (indices into pool).
func (g *Grouper) buildCluster(pool []matcher.Record, comp []int) Cluster {
	members := make([]matcher.Record, len(comp))
	for i, idx := range comp {
		members[i] = pool[idx]
	}

	primary := electPrimary(members)

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	sort.Strings(ids)

	return Cluster{
		Members:       ids,
		Primary:       primary.ID,
		MergedPreview: buildPreview(primary, members),
	}
}

// electPrimary picks the record that survives a merge: earliest
// occurred-on date, tie-broken by lexical id. Records without a date
// sort after dated ones so an unknown date never wins the election.
func electPrimary(members []matcher.Record) matcher.Record {
	best := members[0]
	for _, m := range members[1:] {
		if primaryBefore(m, best) {
			best = m
		}
	}
	return best
}

func primaryBefore(a, b matcher.Record) bool {
	switch {
	case a.HasDate() && !b.HasDate():
		return true
	case !a.HasDate() && b.HasDate():
		return false
	case a.HasDate() && !a.OccurredOn.Equal(b.OccurredOn):
		return a.OccurredOn.Before(b.OccurredOn)
	default:
		return a.ID < b.ID
	}
}

// buildPreview takes the primary's values and flags every field where
// at least one member disagrees.
func buildPreview(primary matcher.Record, members []matcher.Record) Preview {
	p := Preview{
		MerchantName:  primary.MerchantName,
		Amount:        primary.Amount,
		OccurredOn:    primary.OccurredOn,
		Category:      primary.Category,
		PaymentMethod: primary.PaymentMethod,
		LocationText:  primary.LocationText,
	}

	for _, f := range previewFields {
		for _, m := range members {
			if m.ID == primary.ID {
				continue
			}
			if fieldsDisagree(f, primary, m) {
				p.Disagreements = append(p.Disagreements, f)
				break
			}
		}
	}
	return p
}

var previewFields = []matcher.Field{
	matcher.FieldMerchant,
	matcher.FieldAmount,
	matcher.FieldDate,
	matcher.FieldCategory,
	matcher.FieldPaymentMethod,
	matcher.FieldLocation,
}

func fieldsDisagree(f matcher.Field, a, b matcher.Record) bool {
	switch f {
	case matcher.FieldAmount:
		return a.Amount != b.Amount
	case matcher.FieldDate:
		return !sameCalendarDay(a.OccurredOn, b.OccurredOn)
	case matcher.FieldMerchant:
		return scorer.NormalizeText(a.MerchantName) != scorer.NormalizeText(b.MerchantName)
	case matcher.FieldCategory:
		return scorer.NormalizeText(a.Category) != scorer.NormalizeText(b.Category)
	case matcher.FieldPaymentMethod:
		return scorer.NormalizeText(a.PaymentMethod) != scorer.NormalizeText(b.PaymentMethod)
	case matcher.FieldLocation:
		return scorer.NormalizeText(a.LocationText) != scorer.NormalizeText(b.LocationText)
	default:
		return false
	}
}

func sameCalendarDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return a.IsZero() == b.IsZero()
	}
	return scorer.DaysApart(a, b) == 0
}

// checkFinite mirrors the ranker's contract: malformed amounts fail the
// whole call loudly.
func checkFinite(rec matcher.Record) error {
	if math.IsNaN(rec.Amount) || math.IsInf(rec.Amount, 0) {
		return &matcher.MalformedRecordError{RecordID: rec.ID, Amount: rec.Amount}
	}
	return nil
}
