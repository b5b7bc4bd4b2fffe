package library

import (
	"fmt"
	"time"
)

const dayLayout = "20060102"

// openLowerBound stands in for an unbounded start of range; the catalog
// rejects requests with only one side of the date filter set.
const openLowerBound = "19000101"

// ResolveRange converts optional publication-year bounds into an inclusive
// YYYYMMDD range. The lower bound resolves to January 1 of its year, the
// upper to December 31. Inverted bounds are swapped, an upper bound in the
// future is clamped to today, and a single-sided input is open-ended on the
// missing side. ok is false when both bounds are absent.
func ResolveRange(from, to *int, now time.Time) (lower, upper string, ok bool) {
	if from == nil && to == nil {
		return "", "", false
	}

	if from != nil && to != nil && *from > *to {
		from, to = to, from
	}

	today := now.Format(dayLayout)

	lower = openLowerBound
	if from != nil {
		lower = fmt.Sprintf("%04d0101", *from)
	}

	upper = today
	if to != nil {
		upper = fmt.Sprintf("%04d1231", *to)
		if upper > today {
			upper = today
		}
	}

	if lower > upper {
		lower = upper
	}

	return lower, upper, true
}
