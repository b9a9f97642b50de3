// Package params provides the time source abstraction for staleness checks.
package params

import "time"

// Clock provides the time source for staleness checks.
// The default implementation uses time.Now().
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
