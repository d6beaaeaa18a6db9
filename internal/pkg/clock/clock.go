// Package clock provides the time source injected into handlers and background jobs.
package clock

import "time"

// Clock returns the current instant.
type Clock func() time.Time

// System is the wall clock in UTC.
func System() time.Time {
	return time.Now().UTC()
}

// Fixed always returns t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// Now calls the clock, falling back to System for a nil Clock.
func (c Clock) Now() time.Time {
	if c == nil {
		return System()
	}
	return c()
}
