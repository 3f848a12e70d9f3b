package model

import "time"

// RecurrenceFrequency enumerates the supported repeat units for a blocked period.
type RecurrenceFrequency string

const (
	FrequencyDaily   RecurrenceFrequency = "daily"
	FrequencyWeekly  RecurrenceFrequency = "weekly"
	FrequencyMonthly RecurrenceFrequency = "monthly"
)

// Recurrence describes how a blocked period repeats. Interval is the step in
// frequency units (every N days/weeks/months). DaysOfWeek applies to weekly
// rules only, 0=Sunday..6=Saturday. A nil RecurrenceEnd means the rule has no
// end of its own and is bounded only by the query window.
type Recurrence struct {
	Frequency     RecurrenceFrequency
	Interval      int
	DaysOfWeek    []int
	RecurrenceEnd *time.Time
}

// BlockedPeriod is an owner's self-declared unavailability. Start/End is the
// base occurrence in UTC; when IsRecurring is set, Recurrence describes the
// repeat pattern and the base occurrence's duration applies to every
// occurrence. Blocked periods are created and deleted by the owner only; the
// booking flow never mutates them.
type BlockedPeriod struct {
	ID          string
	OwnerID     string
	Start       time.Time
	End         time.Time
	Reason      string
	IsRecurring bool
	Recurrence  *Recurrence
	CreatedAt   time.Time
}
