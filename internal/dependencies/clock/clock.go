package clock

import "time"

// Clock provides the current time so that expiry can be tested deterministically
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC, the zone every stored timestamp uses
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
