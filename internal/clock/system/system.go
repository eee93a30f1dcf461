// Package system provides the wall clock used for run timestamps.
package system

import "time"

// Clock implements ingest.Clock. Times are UTC and truncated to whole seconds, the
// precision of object names and stored execution times.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time.
func (Clock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
