package outbox

import (
	"encoding/json"
	"time"

	"github.com/example/slotwise/services/availability-service/internal/model"
)

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (production-style: event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const (
	AggregateBooking       = "booking"
	AggregateBlockedPeriod = "blocked_period"

	EventBookingRequested = "availability.booking.requested.v1"
	EventBookingApproved  = "availability.booking.approved.v1"
	EventBookingRejected  = "availability.booking.rejected.v1"
	EventBookingCancelled = "availability.booking.cancelled.v1"

	EventBlockedPeriodCreated = "availability.blocked_period.created.v1"
	EventBlockedPeriodDeleted = "availability.blocked_period.deleted.v1"
)

type bookingPayload struct {
	BookingID    string     `json:"booking_id"`
	OwnerID      string     `json:"owner_id"`
	RequesterID  string     `json:"requester_id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	Status       string     `json:"status"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
}

func BookingEvent(eventType string, b model.Booking) Event {
	payload, _ := json.Marshal(bookingPayload{
		BookingID:    b.ID,
		OwnerID:      b.OwnerID,
		RequesterID:  b.RequesterID,
		StartTime:    b.Start,
		EndTime:      b.End,
		Status:       b.Status,
		CancelReason: b.CancelReason,
		DecidedAt:    b.DecidedAt,
	})
	return Event{
		AggregateType: AggregateBooking,
		AggregateID:   b.ID,
		EventType:     eventType,
		Payload:       payload,
	}
}

type blockedPeriodPayload struct {
	BlockedPeriodID string    `json:"blocked_period_id"`
	OwnerID         string    `json:"owner_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	IsRecurring     bool      `json:"is_recurring"`
}

func BlockedPeriodEvent(eventType, id string, p model.BlockedPeriod) Event {
	payload, _ := json.Marshal(blockedPeriodPayload{
		BlockedPeriodID: id,
		OwnerID:         p.OwnerID,
		StartTime:       p.Start,
		EndTime:         p.End,
		IsRecurring:     p.IsRecurring,
	})
	return Event{
		AggregateType: AggregateBlockedPeriod,
		AggregateID:   id,
		EventType:     eventType,
		Payload:       payload,
	}
}
