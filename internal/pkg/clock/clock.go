// Package clock provides time utilities so sessions and history can be tested at fixed instants
package clock

import "time"

// Clock provides time functionality
type Clock interface {
	Now() time.Time
}

// Real implements Clock using actual system time
type Real struct{}

// Now returns the current time
func (c *Real) Now() time.Time {
	return time.Now()
}

// New returns a new real clock
func New() Clock {
	return &Real{}
}

// Fixed is a Clock that always reports the same instant until advanced
type Fixed struct {
	At time.Time
}

// Now returns the fixed instant
func (c *Fixed) Now() time.Time {
	return c.At
}

// Advance moves the fixed instant forward
func (c *Fixed) Advance(d time.Duration) {
	c.At = c.At.Add(d)
}
