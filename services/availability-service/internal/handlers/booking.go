package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/slotwise/services/availability-service/internal/conflict"
	"github.com/example/slotwise/services/availability-service/internal/model"
	"github.com/example/slotwise/services/availability-service/internal/outbox"
	"github.com/example/slotwise/services/availability-service/internal/recurrence"
	"github.com/example/slotwise/services/availability-service/internal/slots"
	"github.com/example/slotwise/services/availability-service/internal/storage"
)

type bookingStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, tx pgx.Tx, b model.Booking) (model.Booking, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Booking, error)
	LockOwner(ctx context.Context, tx pgx.Tx, ownerID string) error
	ListApprovedForOwnerForUpdate(ctx context.Context, tx pgx.Tx, ownerID string, windowStart, windowEnd time.Time, excludeBookingID string) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id string, to string, from []string, cancelReason string) (model.Booking, error)
	ListForOwner(ctx context.Context, ownerID string, status string, limit int) ([]model.Booking, error)
}

type blockedLister interface {
	ListForOwner(ctx context.Context, ownerID string, windowStart, windowEnd time.Time) ([]model.BlockedPeriod, error)
}

type BookingHandler struct {
	repo    bookingStore
	blocked blockedLister
	outbox  outboxStore
	logger  *slog.Logger
}

func NewBookingHandler(repo bookingStore, blocked blockedLister, outboxRepo outboxStore, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{repo: repo, blocked: blocked, outbox: outboxRepo, logger: logger}
}

type createBookingRequest struct {
	OwnerID     string `json:"owner_id"`
	RequesterID string `json:"requester_id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Timezone    string `json:"timezone,omitempty"`
	Note        string `json:"note,omitempty"`
}

type bookingItem struct {
	BookingID    string `json:"booking_id"`
	OwnerID      string `json:"owner_id"`
	RequesterID  string `json:"requester_id"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Status       string `json:"status"`
	Note         string `json:"note,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`
	CreatedAt    string `json:"created_at"`
	DecidedAt    string `json:"decided_at,omitempty"`
}

type conflictItem struct {
	Kind      string `json:"kind"`
	BookingID string `json:"booking_id,omitempty"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Create serves POST /api/v1/bookings. Requests always land as pending; the
// availability read is only a hint, so even a currently-conflicting interval
// may be requested. Conflicts are decided at approval time.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.OwnerID = strings.TrimSpace(req.OwnerID)
	req.RequesterID = strings.TrimSpace(req.RequesterID)
	if req.OwnerID == "" || req.RequesterID == "" {
		http.Error(w, "owner_id and requester_id required", http.StatusBadRequest)
		return
	}

	start, err := parseInstant(req.StartTime, req.Timezone)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}
	end, err := parseInstant(req.EndTime, req.Timezone)
	if err != nil {
		http.Error(w, "invalid end_time", http.StatusBadRequest)
		return
	}
	if !end.After(start) {
		http.Error(w, "end_time must be after start_time", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	booking, err := h.repo.Create(ctx, tx, model.Booking{
		OwnerID:     req.OwnerID,
		RequesterID: req.RequesterID,
		Start:       start,
		End:         end,
		Note:        strings.TrimSpace(req.Note),
	})
	if err != nil {
		http.Error(w, "failed to create booking", http.StatusInternalServerError)
		return
	}
	if err := h.outbox.Insert(ctx, tx, outbox.BookingEvent(outbox.EventBookingRequested, booking)); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, bookingToItem(booking))
}

type decideBookingRequest struct {
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason,omitempty"`
}

// Approve serves POST /api/v1/bookings/approve. The conflict re-check and the
// status flip run in one transaction holding the owner's advisory lock, so
// approvals for one owner run one at a time and two overlapping pending
// requests cannot both win. Approving an already-approved booking is a no-op
// success.
func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDecideRequest(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	booking, err := h.repo.GetForUpdate(ctx, tx, req.BookingID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load booking", http.StatusInternalServerError)
		return
	}

	if booking.Status == model.StatusApproved {
		writeJSON(w, http.StatusOK, bookingToItem(booking))
		return
	}
	if booking.Status != model.StatusPending {
		http.Error(w, "only pending bookings can be approved", http.StatusConflict)
		return
	}

	// Serialize against other approvals for this owner before reading the
	// approved set; a competitor that commits first becomes visible here.
	if err := h.repo.LockOwner(ctx, tx, booking.OwnerID); err != nil {
		http.Error(w, "failed to lock owner calendar", http.StatusInternalServerError)
		return
	}

	proposed := slots.Interval{Start: booking.Start, End: booking.End}

	approved, err := h.repo.ListApprovedForOwnerForUpdate(ctx, tx, booking.OwnerID, booking.Start, booking.End, booking.ID)
	if err != nil {
		http.Error(w, "failed to load approved bookings", http.StatusInternalServerError)
		return
	}
	found := conflict.Conflicts{
		Bookings: conflict.BookingsOverlapping(proposed, approved, booking.ID),
	}

	periods, err := h.blocked.ListForOwner(ctx, booking.OwnerID, booking.Start, booking.End)
	if err != nil {
		http.Error(w, "failed to load blocked periods", http.StatusInternalServerError)
		return
	}
	for _, p := range periods {
		for _, occ := range recurrence.Expand(p, booking.Start, booking.End) {
			if proposed.Overlaps(occ) {
				found.BlockedIntervals = append(found.BlockedIntervals, occ)
			}
		}
	}

	if !found.Empty() {
		conflictErr := &conflict.ConflictError{OwnerID: booking.OwnerID, Interval: proposed, Details: found}
		h.logger.Info("booking approval rejected on conflict",
			"booking_id", booking.ID, "owner_id", booking.OwnerID, "err", conflictErr)
		writeConflict(w, conflictErr)
		return
	}

	updated, err := h.repo.UpdateStatus(ctx, tx, booking.ID, model.StatusApproved, []string{model.StatusPending}, "")
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "booking is no longer pending", http.StatusConflict)
			return
		}
		http.Error(w, "failed to approve booking", http.StatusInternalServerError)
		return
	}
	if err := h.outbox.Insert(ctx, tx, outbox.BookingEvent(outbox.EventBookingApproved, updated)); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, bookingToItem(updated))
}

// Reject serves POST /api/v1/bookings/reject. Rejecting an already-rejected
// booking is a no-op success.
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDecideRequest(w, r)
	if !ok {
		return
	}
	h.decide(w, r, req, model.StatusRejected, []string{model.StatusPending}, outbox.EventBookingRejected)
}

// Cancel serves POST /api/v1/bookings/cancel. Pending and approved bookings
// may be cancelled; cancelling an already-cancelled booking is a no-op
// success.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDecideRequest(w, r)
	if !ok {
		return
	}
	h.decide(w, r, req, model.StatusCancelled, []string{model.StatusPending, model.StatusApproved}, outbox.EventBookingCancelled)
}

func (h *BookingHandler) decide(w http.ResponseWriter, r *http.Request, req decideBookingRequest, to string, from []string, eventType string) {
	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	booking, err := h.repo.GetForUpdate(ctx, tx, req.BookingID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load booking", http.StatusInternalServerError)
		return
	}

	if booking.Status == to {
		writeJSON(w, http.StatusOK, bookingToItem(booking))
		return
	}
	allowed := false
	for _, s := range from {
		if booking.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		http.Error(w, "booking status does not allow this transition", http.StatusConflict)
		return
	}

	updated, err := h.repo.UpdateStatus(ctx, tx, booking.ID, to, from, strings.TrimSpace(req.Reason))
	if err != nil {
		http.Error(w, "failed to update booking", http.StatusInternalServerError)
		return
	}
	if err := h.outbox.Insert(ctx, tx, outbox.BookingEvent(eventType, updated)); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, bookingToItem(updated))
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id"))
	if ownerID == "" {
		http.Error(w, "owner_id required", http.StatusBadRequest)
		return
	}
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	switch status {
	case "", model.StatusPending, model.StatusApproved, model.StatusRejected, model.StatusCancelled:
	default:
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}
	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	bookings, err := h.repo.ListForOwner(r.Context(), ownerID, status, limit)
	if err != nil {
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}

	items := make([]bookingItem, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, bookingToItem(b))
	}
	writeJSON(w, http.StatusOK, items)
}

func decodeDecideRequest(w http.ResponseWriter, r *http.Request) (decideBookingRequest, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return decideBookingRequest{}, false
	}
	var req decideBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return decideBookingRequest{}, false
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" {
		http.Error(w, "booking_id required", http.StatusBadRequest)
		return decideBookingRequest{}, false
	}
	return req, true
}

func writeConflict(w http.ResponseWriter, err *conflict.ConflictError) {
	items := make([]conflictItem, 0, len(err.Details.Bookings)+len(err.Details.BlockedIntervals))
	for _, b := range err.Details.Bookings {
		items = append(items, conflictItem{
			Kind:      "booking",
			BookingID: b.ID,
			StartTime: b.Start.UTC().Format(time.RFC3339),
			EndTime:   b.End.UTC().Format(time.RFC3339),
		})
	}
	for _, iv := range err.Details.BlockedIntervals {
		items = append(items, conflictItem{
			Kind:      "blocked",
			StartTime: iv.Start.UTC().Format(time.RFC3339),
			EndTime:   iv.End.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusConflict, map[string]any{
		"error":     "booking conflicts with existing commitments",
		"conflicts": items,
	})
}

func bookingToItem(b model.Booking) bookingItem {
	item := bookingItem{
		BookingID:    b.ID,
		OwnerID:      b.OwnerID,
		RequesterID:  b.RequesterID,
		StartTime:    b.Start.UTC().Format(time.RFC3339),
		EndTime:      b.End.UTC().Format(time.RFC3339),
		Status:       b.Status,
		Note:         b.Note,
		CancelReason: b.CancelReason,
		CreatedAt:    b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.DecidedAt != nil {
		item.DecidedAt = b.DecidedAt.UTC().Format(time.RFC3339)
	}
	return item
}
