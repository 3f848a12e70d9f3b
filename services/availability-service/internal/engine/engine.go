// Package engine computes annotated candidate slots for an owner's window by
// combining generated slots with expanded blocked periods and approved
// bookings.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/example/slotwise/services/availability-service/internal/model"
	"github.com/example/slotwise/services/availability-service/internal/recurrence"
	"github.com/example/slotwise/services/availability-service/internal/slots"
	"github.com/example/slotwise/services/availability-service/internal/timezone"
)

// BlockedPeriodStore lists an owner's blocked periods overlapping a window.
// Implementations return UTC-normalized timestamps.
type BlockedPeriodStore interface {
	ListForOwner(ctx context.Context, ownerID string, windowStart, windowEnd time.Time) ([]model.BlockedPeriod, error)
}

// BookingStore lists an owner's approved bookings overlapping a window,
// optionally excluding one booking by id. Implementations return
// UTC-normalized timestamps. Pending and rejected bookings are never
// returned.
type BookingStore interface {
	ListApprovedForOwner(ctx context.Context, ownerID string, windowStart, windowEnd time.Time, excludeBookingID string) ([]model.Booking, error)
}

// Engine orchestrates slot generation and conflict marking. It holds no
// cross-request state; each GetSlots call reads both stores exactly once and
// computes over that snapshot, so a result is internally consistent even if
// the stores change mid-flight. The snapshot is advisory only; approval-time
// conflict checking, not this read path, is the source of truth.
type Engine struct {
	blocked  BlockedPeriodStore
	bookings BookingStore
}

func New(blocked BlockedPeriodStore, bookings BookingStore) *Engine {
	return &Engine{blocked: blocked, bookings: bookings}
}

// SlotRequest describes one availability query. Zone is the owner's IANA zone
// and governs how business-hour bounds land on calendar days; an empty or
// unrecognized zone falls back per timezone.LoadZone.
type SlotRequest struct {
	OwnerID     string
	WindowStart time.Time
	WindowEnd   time.Time
	SlotMinutes int
	Hours       *slots.BusinessHours
	Zone        string
}

// GetSlots returns every candidate slot in the request window, annotated with
// availability. A slot overlapping any expanded blocked period is marked
// blocked; a still-available slot overlapping an approved booking is marked
// booked. Returns slots.ErrInvalidRange for degenerate windows or durations.
func (e *Engine) GetSlots(ctx context.Context, req SlotRequest) ([]model.CandidateSlot, error) {
	generated, err := slots.Generate(req.WindowStart, req.WindowEnd, req.SlotMinutes, req.Hours, timezone.LoadZone(req.Zone))
	if err != nil {
		return nil, err
	}

	blocked, err := e.blocked.ListForOwner(ctx, req.OwnerID, req.WindowStart, req.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("list blocked periods: %w", err)
	}
	var blockedIntervals []slots.Interval
	for _, p := range blocked {
		blockedIntervals = append(blockedIntervals, recurrence.Expand(p, req.WindowStart, req.WindowEnd)...)
	}

	booked, err := e.bookings.ListApprovedForOwner(ctx, req.OwnerID, req.WindowStart, req.WindowEnd, "")
	if err != nil {
		return nil, fmt.Errorf("list approved bookings: %w", err)
	}

	out := make([]model.CandidateSlot, 0, len(generated))
	for _, iv := range generated {
		cs := model.CandidateSlot{Interval: iv, Available: true}
		if overlapsAny(iv, blockedIntervals) {
			cs.Available = false
			cs.Reason = model.ConflictBlocked
		} else if overlapsAnyBooking(iv, booked) {
			cs.Available = false
			cs.Reason = model.ConflictBooked
		}
		out = append(out, cs)
	}
	return out, nil
}

// GetOnlyAvailableSlots is GetSlots filtered to available slots.
func (e *Engine) GetOnlyAvailableSlots(ctx context.Context, req SlotRequest) ([]model.CandidateSlot, error) {
	all, err := e.GetSlots(ctx, req)
	if err != nil {
		return nil, err
	}
	available := all[:0]
	for _, cs := range all {
		if cs.Available {
			available = append(available, cs)
		}
	}
	return available, nil
}

func overlapsAny(iv slots.Interval, against []slots.Interval) bool {
	for _, other := range against {
		if iv.Overlaps(other) {
			return true
		}
	}
	return false
}

func overlapsAnyBooking(iv slots.Interval, bookings []model.Booking) bool {
	for _, b := range bookings {
		if iv.Overlaps(slots.Interval{Start: b.Start, End: b.End}) {
			return true
		}
	}
	return false
}
