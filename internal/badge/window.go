package badge

import "time"

// InWindow reports whether a date satisfies a badge's [start, end] window.
// Both bounds are inclusive and a nil bound is always satisfied. Every place
// that asks "does this visit count for this badge" goes through this one
// predicate so that status, scoring and progress agree on boundary dates.
func InWindow(date time.Time, start, end *time.Time) bool {
	if start != nil && date.Before(*start) {
		return false
	}
	if end != nil && date.After(*end) {
		return false
	}
	return true
}
