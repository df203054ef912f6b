package matcher

import "fmt"

// PreferencesError reports an invalid matching-preferences value. It is
// returned from preference construction and from settings conversion,
// never from a per-match call: broken configuration should be caught
// when preferences are saved, not when a receipt arrives.
type PreferencesError struct {
	Setting string
	Reason  string
}

func (e *PreferencesError) Error() string {
	return fmt.Sprintf("invalid matching preferences: %s: %s", e.Setting, e.Reason)
}

// MalformedRecordError reports a record whose amount is NaN or infinite.
// A non-finite amount usually points at an upstream parsing bug, so the
// whole ranking or grouping call fails loudly instead of silently
// dropping the record.
type MalformedRecordError struct {
	RecordID string
	Amount   float64
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %q has non-finite amount %v", e.RecordID, e.Amount)
}
