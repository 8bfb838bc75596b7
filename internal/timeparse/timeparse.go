// Package timeparse turns user-entered clock times into absolute
// timestamps on a reference civil day.
package timeparse

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnrecognized means the text matched none of the accepted layouts.
	ErrUnrecognized = errors.New("unrecognized time")
	// ErrFuture means the text parsed to an instant after the reference time.
	ErrFuture = errors.New("time is in the future")
)

// layouts accepted for user input. Colon and dot separators, with and
// without seconds; hours may omit the leading zero.
var layouts = []string{
	"15:04:05",
	"15:04",
	"15.04.05",
	"15.04",
}

// ParseAt interprets text as a clock time on ref's civil day, in ref's
// location. It returns ErrUnrecognized for text that is not a clock time
// and ErrFuture when the resulting instant lies after ref. Backdating to
// earlier the same day is the intended use; the caller decides what a
// resulting negative interval means.
func ParseAt(text string, ref time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		at := time.Date(ref.Year(), ref.Month(), ref.Day(),
			parsed.Hour(), parsed.Minute(), parsed.Second(), 0, ref.Location())
		if at.After(ref) {
			return time.Time{}, fmt.Errorf("%q: %w", trimmed, ErrFuture)
		}
		return at, nil
	}
	return time.Time{}, fmt.Errorf("%q: %w", trimmed, ErrUnrecognized)
}
