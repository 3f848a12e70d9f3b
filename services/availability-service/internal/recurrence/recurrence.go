// Package recurrence expands blocked-period records into the concrete
// occurrence intervals that fall inside a query window. Expansion is a single
// forward pass bounded by the window and the rule's own end; it never
// materializes an open-ended series and every emitted occurrence is plain
// interval data, so expansion cannot compound.
package recurrence

import (
	"time"

	"github.com/example/slotwise/services/availability-service/internal/model"
	"github.com/example/slotwise/services/availability-service/internal/slots"
)

// Expand returns the occurrences of p that overlap [windowStart, windowEnd),
// in chronological order. Every occurrence has the base occurrence's
// duration.
//
// Expansion is deliberately total over stored data: a corrupt recurrence
// (unknown frequency, non-positive interval, weekly rule with no weekdays)
// expands to nothing instead of failing, so one bad row cannot take down
// availability computation for anyone else. Input validation belongs at the
// write path, not here.
func Expand(p model.BlockedPeriod, windowStart, windowEnd time.Time) []slots.Interval {
	if !p.End.After(p.Start) || !windowEnd.After(windowStart) {
		return nil
	}
	window := slots.Interval{Start: windowStart, End: windowEnd}
	base := slots.Interval{Start: p.Start, End: p.End}

	if !p.IsRecurring || p.Recurrence == nil {
		if base.Overlaps(window) {
			return []slots.Interval{base}
		}
		return nil
	}

	rec := *p.Recurrence
	if rec.Interval <= 0 {
		return nil
	}

	// Occurrences starting at or after lastStart cannot overlap the window,
	// and a recurrence end caps the series regardless of the window.
	lastStart := windowEnd
	if rec.RecurrenceEnd != nil && rec.RecurrenceEnd.Before(lastStart) {
		lastStart = *rec.RecurrenceEnd
	}

	duration := base.Duration()
	var out []slots.Interval
	emit := func(start time.Time) {
		occ := slots.Interval{Start: start, End: start.Add(duration)}
		if occ.Overlaps(window) {
			out = append(out, occ)
		}
	}

	switch rec.Frequency {
	case model.FrequencyDaily:
		for cur := p.Start; !cur.After(lastStart); cur = cur.AddDate(0, 0, rec.Interval) {
			emit(cur)
		}
	case model.FrequencyWeekly:
		expandWeekly(p.Start, lastStart, rec, emit)
	case model.FrequencyMonthly:
		expandMonthly(p.Start, lastStart, rec.Interval, emit)
	default:
		return nil
	}
	return out
}

// expandWeekly walks day by day from the base occurrence, keeping days whose
// weekday is selected and whose week (anchored on the base occurrence's week)
// lands on the interval. A rule with no selected weekdays yields nothing; the
// write path requires weekdays for weekly rules, but stored data is not
// trusted to honor that.
func expandWeekly(baseStart, lastStart time.Time, rec model.Recurrence, emit func(time.Time)) {
	selected := make(map[time.Weekday]bool, len(rec.DaysOfWeek))
	for _, d := range rec.DaysOfWeek {
		if d >= 0 && d <= 6 {
			selected[time.Weekday(d)] = true
		}
	}
	if len(selected) == 0 {
		return
	}

	for dayIdx, cur := 0, baseStart; !cur.After(lastStart); dayIdx, cur = dayIdx+1, cur.AddDate(0, 0, 1) {
		if (dayIdx/7)%rec.Interval != 0 {
			continue
		}
		if selected[cur.Weekday()] {
			emit(cur)
		}
	}
}

// expandMonthly steps in whole months keeping the base occurrence's
// day-of-month. Months too short for that day are skipped outright: a block
// on the 31st recurs only in 31-day months and never rolls into the next
// month. time.AddDate would normalize Feb 31 to Mar 2-ish, so each candidate
// month is built from fields and checked instead.
func expandMonthly(baseStart, lastStart time.Time, interval int, emit func(time.Time)) {
	baseYear, baseMonth, _ := baseStart.Date()
	day := baseStart.Day()
	hour, min, sec := baseStart.Clock()
	loc := baseStart.Location()

	for i := 0; ; i += interval {
		y, m := addMonths(baseYear, baseMonth, i)
		candidate := time.Date(y, m, day, hour, min, sec, baseStart.Nanosecond(), loc)
		if candidate.After(lastStart) {
			return
		}
		// Normalization moved the date forward; this month has no such day.
		if candidate.Day() != day || candidate.Month() != m {
			continue
		}
		emit(candidate)
	}
}

func addMonths(year int, month time.Month, n int) (int, time.Month) {
	total := int(month) - 1 + n
	return year + total/12, time.Month(total%12 + 1)
}
