package model

import "github.com/example/slotwise/services/availability-service/internal/slots"

// ConflictReason says why a candidate slot is unavailable.
type ConflictReason string

const (
	ConflictBlocked ConflictReason = "blocked"
	ConflictBooked  ConflictReason = "booked"
)

// CandidateSlot is one generated interval annotated with availability. It is
// transient output of the availability engine and is never persisted.
type CandidateSlot struct {
	Interval  slots.Interval
	Available bool
	Reason    ConflictReason
}
