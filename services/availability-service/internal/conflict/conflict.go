// Package conflict decides whether a proposed interval collides with an
// owner's existing commitments. The availability engine uses it to annotate
// slots; the booking-approval flow re-runs it against fresh data at commit
// time, because availability snapshots go stale between read and approve.
package conflict

import (
	"context"
	"fmt"

	"github.com/example/slotwise/services/availability-service/internal/engine"
	"github.com/example/slotwise/services/availability-service/internal/model"
	"github.com/example/slotwise/services/availability-service/internal/recurrence"
	"github.com/example/slotwise/services/availability-service/internal/slots"
)

// ConflictError reports that an operation would double-book an owner. It is
// fatal to the operation that raised it; no partial state change may survive.
type ConflictError struct {
	OwnerID  string
	Interval slots.Interval
	Details  Conflicts
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: owner %s interval %s collides with %d booking(s) and %d blocked interval(s)",
		e.OwnerID, e.Interval, len(e.Details.Bookings), len(e.Details.BlockedIntervals))
}

// Conflicts lists what a proposed interval collided with.
type Conflicts struct {
	Bookings         []model.Booking
	BlockedIntervals []slots.Interval
}

// Empty reports whether nothing conflicted.
func (c Conflicts) Empty() bool {
	return len(c.Bookings) == 0 && len(c.BlockedIntervals) == 0
}

// Checker evaluates proposed intervals against the same stores the
// availability engine reads.
type Checker struct {
	blocked  engine.BlockedPeriodStore
	bookings engine.BookingStore
}

func NewChecker(blocked engine.BlockedPeriodStore, bookings engine.BookingStore) *Checker {
	return &Checker{blocked: blocked, bookings: bookings}
}

// FindConflicts returns everything the proposed interval overlaps:
// approved bookings (excluding excludeBookingID, so a booking being approved
// does not conflict with itself) and expanded blocked-period occurrences.
// Overlap is the half-open rule; touching endpoints never conflict.
func (c *Checker) FindConflicts(ctx context.Context, ownerID string, proposed slots.Interval, excludeBookingID string) (Conflicts, error) {
	if !proposed.End.After(proposed.Start) {
		return Conflicts{}, fmt.Errorf("%w: proposed interval %s", slots.ErrInvalidRange, proposed)
	}

	var found Conflicts

	booked, err := c.bookings.ListApprovedForOwner(ctx, ownerID, proposed.Start, proposed.End, excludeBookingID)
	if err != nil {
		return Conflicts{}, fmt.Errorf("list approved bookings: %w", err)
	}
	for _, b := range booked {
		if proposed.Overlaps(slots.Interval{Start: b.Start, End: b.End}) {
			found.Bookings = append(found.Bookings, b)
		}
	}

	periods, err := c.blocked.ListForOwner(ctx, ownerID, proposed.Start, proposed.End)
	if err != nil {
		return Conflicts{}, fmt.Errorf("list blocked periods: %w", err)
	}
	for _, p := range periods {
		for _, occ := range recurrence.Expand(p, proposed.Start, proposed.End) {
			if proposed.Overlaps(occ) {
				found.BlockedIntervals = append(found.BlockedIntervals, occ)
			}
		}
	}
	return found, nil
}

// HasConflict is FindConflicts reduced to a boolean.
func (c *Checker) HasConflict(ctx context.Context, ownerID string, proposed slots.Interval, excludeBookingID string) (bool, error) {
	found, err := c.FindConflicts(ctx, ownerID, proposed, excludeBookingID)
	if err != nil {
		return false, err
	}
	return !found.Empty(), nil
}

// Check returns a *ConflictError when the proposed interval conflicts, nil
// otherwise. Approval flows call this inside their transaction so the check
// and the status write observe the same booking set.
func (c *Checker) Check(ctx context.Context, ownerID string, proposed slots.Interval, excludeBookingID string) error {
	found, err := c.FindConflicts(ctx, ownerID, proposed, excludeBookingID)
	if err != nil {
		return err
	}
	if found.Empty() {
		return nil
	}
	return &ConflictError{OwnerID: ownerID, Interval: proposed, Details: found}
}

// BookingsOverlapping filters an already-fetched booking set down to those
// overlapping the proposed interval, excluding excludeBookingID. The
// transactional approval path uses this against rows it has locked, rather
// than re-reading through the store interface.
func BookingsOverlapping(proposed slots.Interval, bookings []model.Booking, excludeBookingID string) []model.Booking {
	var out []model.Booking
	for _, b := range bookings {
		if b.ID == excludeBookingID {
			continue
		}
		if b.Status != model.StatusApproved {
			continue
		}
		if proposed.Overlaps(slots.Interval{Start: b.Start, End: b.End}) {
			out = append(out, b)
		}
	}
	return out
}
