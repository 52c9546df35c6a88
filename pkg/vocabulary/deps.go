package vocabulary

import "github.com/agentstation/utc"

// IDGenerator produces identifiers for records and collections. Stages
// receive one explicitly so runs can be made deterministic.
type IDGenerator interface {
	// NewID returns a fresh identifier starting with prefix.
	NewID(prefix string) string
}

// Clock returns the current time.
type Clock func() utc.Time

// SystemClock reads the wall clock.
func SystemClock() utc.Time {
	return utc.Now()
}
