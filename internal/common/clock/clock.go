package clock

import "time"

// Clock provides the current time so services and tests share a time source
type Clock interface {
	Now() time.Time
}

// New returns a Clock backed by the system clock
func New() Clock {
	return &DefaultClock{}
}

// DefaultClock implements the Clock interface using the Go standard library
type DefaultClock struct{}

// Now returns the current time
func (c *DefaultClock) Now() time.Time {
	return time.Now()
}
