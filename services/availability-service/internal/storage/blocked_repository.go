package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/example/slotwise/libs/db"
	"github.com/example/slotwise/services/availability-service/internal/model"
)

// BlockedPeriodRepository persists owner-declared blocked periods. All
// timestamps are stored and returned in UTC.
type BlockedPeriodRepository struct {
	pool *db.Pool
}

func NewBlockedPeriodRepository(pool *db.Pool) *BlockedPeriodRepository {
	return &BlockedPeriodRepository{pool: pool}
}

func (r *BlockedPeriodRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Create inserts the period inside the caller's transaction so the outbox
// event commits with it.
func (r *BlockedPeriodRepository) Create(ctx context.Context, tx pgx.Tx, p model.BlockedPeriod) (string, error) {
	id := uuid.NewString()

	var frequency *string
	var interval *int
	var daysOfWeek []int
	var recurrenceEnd *time.Time
	if p.IsRecurring && p.Recurrence != nil {
		f := string(p.Recurrence.Frequency)
		frequency = &f
		interval = &p.Recurrence.Interval
		daysOfWeek = p.Recurrence.DaysOfWeek
		recurrenceEnd = p.Recurrence.RecurrenceEnd
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO blocked_periods
			(id, owner_id, start_time, end_time, reason, is_recurring, frequency, recur_interval, days_of_week, recurrence_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, p.OwnerID, p.Start.UTC(), p.End.UTC(), p.Reason, p.IsRecurring, frequency, interval, daysOfWeek, recurrenceEnd)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListForOwner returns the owner's blocked periods that can contribute an
// occurrence to [windowStart, windowEnd). Non-recurring rows are filtered by
// interval overlap in SQL; recurring rows are returned whenever their series
// could reach the window (base started before the window end and any
// recurrence end has not passed before the window start), leaving exact
// occurrence math to the expander.
func (r *BlockedPeriodRepository) ListForOwner(ctx context.Context, ownerID string, windowStart, windowEnd time.Time) ([]model.BlockedPeriod, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, owner_id, start_time, end_time, reason, is_recurring,
			COALESCE(frequency, ''), COALESCE(recur_interval, 0), days_of_week, recurrence_end, created_at
		FROM blocked_periods
		WHERE owner_id = $1
			AND start_time < $3
			AND (
				(NOT is_recurring AND end_time > $2)
				OR (is_recurring AND (recurrence_end IS NULL OR recurrence_end > $2))
			)
		ORDER BY start_time ASC
	`, ownerID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BlockedPeriod
	for rows.Next() {
		p, err := scanBlockedPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *BlockedPeriodRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.BlockedPeriod, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, owner_id, start_time, end_time, reason, is_recurring,
			COALESCE(frequency, ''), COALESCE(recur_interval, 0), days_of_week, recurrence_end, created_at
		FROM blocked_periods
		WHERE owner_id = $1
		ORDER BY start_time DESC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BlockedPeriod
	for rows.Next() {
		p, err := scanBlockedPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Delete removes an owner's blocked period and returns the deleted row.
// Deleting someone else's period is a not-found, not an error class of its
// own.
func (r *BlockedPeriodRepository) Delete(ctx context.Context, tx pgx.Tx, ownerID, id string) (model.BlockedPeriod, error) {
	row := tx.QueryRow(ctx, `
		DELETE FROM blocked_periods
		WHERE id = $1 AND owner_id = $2
		RETURNING id::text, owner_id, start_time, end_time, reason, is_recurring,
			COALESCE(frequency, ''), COALESCE(recur_interval, 0), days_of_week, recurrence_end, created_at
	`, id, ownerID)
	return scanBlockedPeriod(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlockedPeriod(row rowScanner) (model.BlockedPeriod, error) {
	var p model.BlockedPeriod
	var frequency string
	var interval int
	var daysOfWeek []int
	var recurrenceEnd *time.Time
	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Start,
		&p.End,
		&p.Reason,
		&p.IsRecurring,
		&frequency,
		&interval,
		&daysOfWeek,
		&recurrenceEnd,
		&p.CreatedAt,
	); err != nil {
		return model.BlockedPeriod{}, err
	}
	p.Start = p.Start.UTC()
	p.End = p.End.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	if recurrenceEnd != nil {
		u := recurrenceEnd.UTC()
		recurrenceEnd = &u
	}
	if p.IsRecurring && frequency != "" {
		p.Recurrence = &model.Recurrence{
			Frequency:     model.RecurrenceFrequency(frequency),
			Interval:      interval,
			DaysOfWeek:    daysOfWeek,
			RecurrenceEnd: recurrenceEnd,
		}
	}
	return p, nil
}
