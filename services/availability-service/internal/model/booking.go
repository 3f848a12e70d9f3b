package model

import "time"

// Booking statuses. Only approved bookings occupy an owner's time; pending
// and rejected bookings never block slots.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// Booking is a requester's reservation of an owner's time, in UTC.
type Booking struct {
	ID           string
	OwnerID      string
	RequesterID  string
	Start        time.Time
	End          time.Time
	Status       string
	Note         string
	CancelReason string
	CreatedAt    time.Time
	DecidedAt    *time.Time
}
