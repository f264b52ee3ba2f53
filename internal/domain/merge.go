package domain

import "time"

// Merge helpers for the two update policies used throughout the store:
// "coalesce" (a supplied value overwrites, an absent one is kept) and
// "first write wins" (a populated value is never overwritten). Keeping
// these as explicit functions keeps the semantics testable independent of
// the storage engine.

// CoalesceString returns next if it is non-empty, else prev.
func CoalesceString(prev, next string) string {
	if next != "" {
		return next
	}
	return prev
}

// CoalesceInt returns next if supplied, else prev.
func CoalesceInt(prev, next *int) *int {
	if next != nil {
		return next
	}
	return prev
}

// FirstWriteTime returns prev if it was already set, else next.
// Used for started_at / finished_at: once populated, never overwritten.
func FirstWriteTime(prev, next *time.Time) *time.Time {
	if prev != nil {
		return prev
	}
	return next
}
