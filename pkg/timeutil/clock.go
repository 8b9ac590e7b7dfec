package timeutil

import "time"

// Clock abstracts the current time so timestamped output (e.g. signed
// payment payloads) can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the real UTC time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T.UTC()
}
