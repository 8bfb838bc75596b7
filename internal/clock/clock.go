// Package clock abstracts wall-clock access so the engine, parser and
// aggregator can be tested against a fixed instant.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time in the service's configured location.
// Every timestamp that enters the system goes through a Clock, which keeps
// day boundaries consistent across components.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type wallClock struct {
	loc *time.Location
}

// NewWall returns a Clock reading the system clock in loc. A nil loc
// defaults to UTC.
func NewWall(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &wallClock{loc: loc}
}

func (c *wallClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c *wallClock) Location() *time.Location { return c.loc }

// Fixed is a Clock pinned to a settable instant.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed returns a Fixed clock starting at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Location() *time.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now.Location()
}

// Set pins the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d and returns the new instant.
func (f *Fixed) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}
