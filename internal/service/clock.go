package service

import "time"

// Clock supplies the current time. Injected into services so every
// now()/today() comparison is deterministic under test.
type Clock func() time.Time

// SystemClock is the production clock.
func SystemClock() time.Time { return time.Now() }

// dateOnly truncates a timestamp to its calendar date (facility-local; the
// portal runs in a single implicit timezone).
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
