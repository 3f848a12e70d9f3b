// Package slots generates the exhaustive sequence of fixed-size candidate
// intervals for an availability window.
package slots

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned for degenerate generation inputs: a
// non-positive slot duration or a window that ends at or before its start.
var ErrInvalidRange = errors.New("slots: invalid range")

// Interval is a half-open [Start, End) span of UTC instants. End > Start.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not overlap. This is the single overlap rule for the whole
// service; conflict checking and slot marking both go through it.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}

// BusinessHours restricts generation to [StartHour, EndHour) local hours of
// each day.
type BusinessHours struct {
	StartHour int
	EndHour   int
}

func (bh BusinessHours) valid() bool {
	return bh.StartHour >= 0 && bh.EndHour <= 24 && bh.StartHour < bh.EndHour
}

// Generate produces every slotMinutes-sized interval between windowStart and
// windowEnd, walking each calendar day of the window in loc (nil means UTC).
// With hours set, each day contributes only [StartHour, EndHour) and a slot is
// emitted only when it fits entirely before the day's end bound; without
// hours, consecutive slots tile the window with no gaps. Day bounds are
// computed with time.Date in loc, so a DST day keeps its local business-hour
// bounds even though the day is 23 or 25 hours long.
//
// Output is strictly chronological and non-overlapping. All returned instants
// are UTC.
func Generate(windowStart, windowEnd time.Time, slotMinutes int, hours *BusinessHours, loc *time.Location) ([]Interval, error) {
	if slotMinutes <= 0 {
		return nil, fmt.Errorf("%w: slot duration %d minutes", ErrInvalidRange, slotMinutes)
	}
	if !windowEnd.After(windowStart) {
		return nil, fmt.Errorf("%w: window end %s not after start %s",
			ErrInvalidRange, windowEnd.Format(time.RFC3339), windowStart.Format(time.RFC3339))
	}
	if hours != nil && !hours.valid() {
		return nil, fmt.Errorf("%w: business hours %d-%d", ErrInvalidRange, hours.StartHour, hours.EndHour)
	}
	if loc == nil {
		loc = time.UTC
	}

	step := time.Duration(slotMinutes) * time.Minute
	var out []Interval

	// Without business hours the whole window is one generation bound:
	// consecutive slots tile it with end == next start, regardless of whether
	// the duration divides a day.
	if hours == nil {
		for cur := windowStart; !cur.Add(step).After(windowEnd); cur = cur.Add(step) {
			out = append(out, Interval{Start: cur.UTC(), End: cur.Add(step).UTC()})
		}
		return out, nil
	}

	day := startOfDay(windowStart.In(loc))
	for day.Before(windowEnd) {
		nextDay := day.AddDate(0, 0, 1)

		y, m, d := day.Date()
		dayStart := time.Date(y, m, d, hours.StartHour, 0, 0, 0, loc)
		dayEnd := time.Date(y, m, d, hours.EndHour, 0, 0, 0, loc)
		if dayStart.Before(windowStart) {
			dayStart = windowStart.In(loc)
		}
		if dayEnd.After(windowEnd) {
			dayEnd = windowEnd.In(loc)
		}

		for cur := dayStart; !cur.Add(step).After(dayEnd); cur = cur.Add(step) {
			out = append(out, Interval{Start: cur.UTC(), End: cur.Add(step).UTC()})
		}
		day = nextDay
	}
	return out, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
