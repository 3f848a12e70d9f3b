package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/example/slotwise/libs/db"
	"github.com/example/slotwise/services/availability-service/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}

// BookingRepository persists booking requests and their lifecycle. Approval
// runs inside a caller-owned transaction so the conflict re-check and the
// status flip are atomic.
type BookingRepository struct {
	pool *db.Pool
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

const bookingColumns = `id::text, owner_id, requester_id, start_time, end_time, status, note, COALESCE(cancel_reason, ''), created_at, decided_at`

// Create inserts a pending booking inside the caller's transaction so the
// outbox event commits with it.
func (r *BookingRepository) Create(ctx context.Context, tx pgx.Tx, b model.Booking) (model.Booking, error) {
	b.ID = uuid.NewString()
	b.Status = model.StatusPending
	b.Start = b.Start.UTC()
	b.End = b.End.UTC()

	row := tx.QueryRow(ctx, `
		INSERT INTO bookings (id, owner_id, requester_id, start_time, end_time, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+bookingColumns+`
	`, b.ID, b.OwnerID, b.RequesterID, b.Start, b.End, b.Status, b.Note)
	return scanBooking(row)
}

func (r *BookingRepository) Get(ctx context.Context, id string) (model.Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id)
	return scanBooking(row)
}

// LockOwner takes a transaction-scoped advisory lock on the owner's calendar.
// Approvals for the same owner serialize here: the loser blocks until the
// winner commits, and its conflict read then sees the newly approved row.
// Row locks alone cannot do this, because two still-pending competitors lock
// only their own rows and neither sees an approved row to lock.
func (r *BookingRepository) LockOwner(ctx context.Context, tx pgx.Tx, ownerID string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, ownerID)
	return err
}

// GetForUpdate locks the booking row for the duration of the transaction.
func (r *BookingRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Booking, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanBooking(row)
}

// ListApprovedForOwner returns approved bookings overlapping
// [windowStart, windowEnd), optionally excluding one booking by id.
func (r *BookingRepository) ListApprovedForOwner(ctx context.Context, ownerID string, windowStart, windowEnd time.Time, excludeBookingID string) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE owner_id = $1
			AND status = $2
			AND start_time < $4
			AND end_time > $3
			AND ($5 = '' OR id::text <> $5)
		ORDER BY start_time ASC
	`, ownerID, model.StatusApproved, windowStart, windowEnd, excludeBookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListApprovedForOwnerForUpdate is the transactional variant used by the
// approval path. It locks the approved rows it returns so none of them can be
// cancelled out from under the check; serialization against other approvals
// comes from LockOwner, which the caller must hold first.
func (r *BookingRepository) ListApprovedForOwnerForUpdate(ctx context.Context, tx pgx.Tx, ownerID string, windowStart, windowEnd time.Time, excludeBookingID string) ([]model.Booking, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE owner_id = $1
			AND status = $2
			AND start_time < $4
			AND end_time > $3
			AND ($5 = '' OR id::text <> $5)
		ORDER BY start_time ASC
		FOR UPDATE
	`, ownerID, model.StatusApproved, windowStart, windowEnd, excludeBookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// UpdateStatus flips a booking's status inside tx, guarded by the statuses it
// may transition from. Returns ErrNotFound when the booking is missing or not
// in an allowed source status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, to string, from []string, cancelReason string) (model.Booking, error) {
	row := tx.QueryRow(ctx, `
		UPDATE bookings
		SET status = $2, decided_at = now(), cancel_reason = NULLIF($3, '')
		WHERE id = $1 AND status = ANY($4)
		RETURNING `+bookingColumns+`
	`, id, to, cancelReason, from)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

func (r *BookingRepository) ListForOwner(ctx context.Context, ownerID string, status string, limit int) ([]model.Booking, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE owner_id = $1
			AND ($2 = '' OR status = $2)
		ORDER BY start_time DESC
		LIMIT $3
	`, ownerID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]model.Booking, error) {
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func scanBooking(row rowScanner) (model.Booking, error) {
	var b model.Booking
	if err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.RequesterID,
		&b.Start,
		&b.End,
		&b.Status,
		&b.Note,
		&b.CancelReason,
		&b.CreatedAt,
		&b.DecidedAt,
	); err != nil {
		return model.Booking{}, err
	}
	b.Start = b.Start.UTC()
	b.End = b.End.UTC()
	return b, nil
}
