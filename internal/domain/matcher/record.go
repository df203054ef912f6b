// Package matcher implements the receipt-to-transaction reconciliation
// engine: multi-field fuzzy scoring, weighted aggregation, threshold
// gating, and deterministic candidate ranking.
//
// The engine is a pure computation library. It performs no I/O, holds no
// shared mutable state, and every entry point is safe to call from any
// number of goroutines on independent inputs.
//
// Example usage:
//
//	prefs, err := matcher.NewPreferences(matcher.DefaultPreferences())
//	ranker, err := matcher.NewRanker(prefs, logger)
//	result, err := ranker.Rank(receipt, bankTransactions)
//	if result.Best != nil {
//		// High-confidence match; surface as "suggested".
//	}
package matcher

import "time"

// Field names one scored attribute of a record.
type Field string

// Scored fields. Merchant, amount, and date are the core dimensions;
// the rest are optional attributes that only participate when weighted.
const (
	FieldMerchant      Field = "merchant"
	FieldAmount        Field = "amount"
	FieldDate          Field = "date"
	FieldCategory      Field = "category"
	FieldPaymentMethod Field = "payment_method"
	FieldLocation      Field = "location"
)

// fieldOrder fixes the evaluation and reporting order of fields so that
// aggregation and diagnostics are reproducible run to run.
var fieldOrder = []Field{
	FieldMerchant,
	FieldAmount,
	FieldDate,
	FieldCategory,
	FieldPaymentMethod,
	FieldLocation,
}

// Record is the common shape the engine compares. Callers map receipts
// and bank transactions into this shape before invoking the engine;
// field renaming, currency normalization, and timezone-to-calendar-date
// conversion are the caller's responsibility.
//
// Amount must be a finite number in a single currency unit. OccurredOn
// is a UTC-normalized calendar date; the zero value means the date is
// unknown or could not be parsed upstream.
type Record struct {
	ID           string
	MerchantName string
	Amount       float64
	OccurredOn   time.Time

	// Optional attributes, scored only when their field is weighted.
	Category      string
	PaymentMethod string
	LocationText  string
}

// HasDate reports whether the record carries a usable calendar date.
func (r Record) HasDate() bool {
	return !r.OccurredOn.IsZero()
}

// textValue returns the raw text behind a text-valued field.
func (r Record) textValue(f Field) string {
	switch f {
	case FieldMerchant:
		return r.MerchantName
	case FieldCategory:
		return r.Category
	case FieldPaymentMethod:
		return r.PaymentMethod
	case FieldLocation:
		return r.LocationText
	default:
		return ""
	}
}
