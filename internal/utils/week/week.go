// Package week computes the weekly quota window for the crush channel.
// The window is always derived from the clock at call time, never stored:
// a crush belongs to "this week" iff its creation timestamp falls inside
// the window computed when the question is asked.
package week

import "time"

// Window is the half-open interval [Start, End) of one quota week.
type Window struct {
	Start time.Time
	End   time.Time
}

// For returns the window containing now, pinned to Sunday 00:00 UTC.
func For(now time.Time) Window {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start = start.AddDate(0, 0, -int(now.Weekday()))
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.Start) && t.Before(w.End)
}
