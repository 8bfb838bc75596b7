package model

import "time"

// Day is a half-open civil-day interval [Start, End) in a fixed location.
// One Day value drives the ledger filter, the statistics date label and
// the time parser's date completion, so all three agree on boundaries.
type Day struct {
	Start time.Time
	End   time.Time
}

// DayOf returns the civil day containing t, computed in t's location.
func DayOf(t time.Time) Day {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Day{Start: start, End: start.AddDate(0, 0, 1)}
}

// Contains reports whether t falls inside the interval.
func (d Day) Contains(t time.Time) bool {
	return !t.Before(d.Start) && t.Before(d.End)
}

// Date returns the ISO date (YYYY-MM-DD) label of the day.
func (d Day) Date() string {
	return d.Start.Format("2006-01-02")
}
