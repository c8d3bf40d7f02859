package daterange

import (
	"fmt"
	"time"
)

// DateRange is a pair of calendar dates. Values are UTC midnights; the
// package never depends on time-of-day precision. Whether the range is read
// as half-open or inclusive is chosen by the caller through the method used:
// stays are [Start, End) with End the checkout date, availability periods are
// [Start, End] inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD) into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

// Parse builds a DateRange from two ISO calendar dates.
func Parse(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: s, End: e}, nil
}

// Truncate flattens an arbitrary timestamp to its UTC calendar date.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of nights in the range read as [Start, End).
func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Overlaps reports whether two half-open ranges share at least one night.
// Back-to-back stays (one checkout equal to the next check-in) do not overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && r.End.After(o.Start)
}

// OverlapsInclusive reports whether two inclusive ranges share at least one
// calendar date.
func (r DateRange) OverlapsInclusive(o DateRange) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

// Covers reports whether o sits entirely inside r, both bounds inclusive.
func (r DateRange) Covers(o DateRange) bool {
	return !r.Start.After(o.Start) && !r.End.Before(o.End)
}

// IsZero reports whether both bounds are unset.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// StartDate returns the ISO form of the start date.
func (r DateRange) StartDate() string {
	return r.Start.Format(time.DateOnly)
}

// EndDate returns the ISO form of the end date.
func (r DateRange) EndDate() string {
	return r.End.Format(time.DateOnly)
}

func (r DateRange) String() string {
	return r.StartDate() + " to " + r.EndDate()
}
