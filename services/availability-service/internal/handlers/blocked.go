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

	"github.com/example/slotwise/services/availability-service/internal/model"
	"github.com/example/slotwise/services/availability-service/internal/outbox"
	"github.com/example/slotwise/services/availability-service/internal/storage"
	"github.com/example/slotwise/services/availability-service/internal/timezone"
)

type blockedStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, tx pgx.Tx, p model.BlockedPeriod) (string, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.BlockedPeriod, error)
	Delete(ctx context.Context, tx pgx.Tx, ownerID, id string) (model.BlockedPeriod, error)
}

type outboxStore interface {
	Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) error
}

type BlockedPeriodHandler struct {
	repo   blockedStore
	outbox outboxStore
	logger *slog.Logger
}

func NewBlockedPeriodHandler(repo blockedStore, outboxRepo outboxStore, logger *slog.Logger) *BlockedPeriodHandler {
	return &BlockedPeriodHandler{repo: repo, outbox: outboxRepo, logger: logger}
}

type recurrencePayload struct {
	Frequency     string `json:"frequency"`
	Interval      int    `json:"interval"`
	DaysOfWeek    []int  `json:"days_of_week,omitempty"`
	RecurrenceEnd string `json:"recurrence_end,omitempty"`
}

type createBlockedPeriodRequest struct {
	OwnerID    string             `json:"owner_id"`
	StartTime  string             `json:"start_time"`
	EndTime    string             `json:"end_time"`
	Timezone   string             `json:"timezone,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	Recurrence *recurrencePayload `json:"recurrence,omitempty"`
}

type blockedPeriodItem struct {
	ID         string             `json:"id"`
	OwnerID    string             `json:"owner_id"`
	StartTime  string             `json:"start_time"`
	EndTime    string             `json:"end_time"`
	Reason     string             `json:"reason,omitempty"`
	Recurrence *recurrencePayload `json:"recurrence,omitempty"`
	CreatedAt  string             `json:"created_at"`
}

// Create serves POST /api/v1/blocked-periods. Times may be RFC3339 instants
// or wall-clock values ("2006-01-02T15:04:05") paired with a timezone field.
func (h *BlockedPeriodHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBlockedPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.OwnerID = strings.TrimSpace(req.OwnerID)
	if req.OwnerID == "" {
		http.Error(w, "owner_id required", http.StatusBadRequest)
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

	period := model.BlockedPeriod{
		OwnerID: req.OwnerID,
		Start:   start,
		End:     end,
		Reason:  strings.TrimSpace(req.Reason),
	}
	if req.Recurrence != nil {
		rec, errMsg := parseRecurrence(*req.Recurrence)
		if errMsg != "" {
			http.Error(w, errMsg, http.StatusBadRequest)
			return
		}
		period.IsRecurring = true
		period.Recurrence = rec
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := h.repo.Create(ctx, tx, period)
	if err != nil {
		http.Error(w, "failed to create blocked period", http.StatusInternalServerError)
		return
	}
	if err := h.outbox.Insert(ctx, tx, outbox.BlockedPeriodEvent(outbox.EventBlockedPeriodCreated, id, period)); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"blocked_period_id": id})
}

func (h *BlockedPeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id"))
	if ownerID == "" {
		http.Error(w, "owner_id required", http.StatusBadRequest)
		return
	}
	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	periods, err := h.repo.ListByOwner(r.Context(), ownerID, limit)
	if err != nil {
		http.Error(w, "failed to list blocked periods", http.StatusInternalServerError)
		return
	}

	items := make([]blockedPeriodItem, 0, len(periods))
	for _, p := range periods {
		items = append(items, blockedPeriodToItem(p))
	}
	writeJSON(w, http.StatusOK, items)
}

type deleteBlockedPeriodRequest struct {
	OwnerID         string `json:"owner_id"`
	BlockedPeriodID string `json:"blocked_period_id"`
}

func (h *BlockedPeriodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req deleteBlockedPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.OwnerID = strings.TrimSpace(req.OwnerID)
	req.BlockedPeriodID = strings.TrimSpace(req.BlockedPeriodID)
	if req.OwnerID == "" || req.BlockedPeriodID == "" {
		http.Error(w, "owner_id and blocked_period_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	deleted, err := h.repo.Delete(ctx, tx, req.OwnerID, req.BlockedPeriodID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "blocked period not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete blocked period", http.StatusInternalServerError)
		return
	}
	if err := h.outbox.Insert(ctx, tx, outbox.BlockedPeriodEvent(outbox.EventBlockedPeriodDeleted, deleted.ID, deleted)); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"blocked_period_id": deleted.ID, "status": "deleted"})
}

// parseInstant accepts an RFC3339 instant, or a wall-clock value interpreted
// in zone when one is given.
func parseInstant(raw, zone string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return timezone.ToUTC(raw, strings.TrimSpace(zone))
}

func parseRecurrence(p recurrencePayload) (*model.Recurrence, string) {
	freq := model.RecurrenceFrequency(strings.ToLower(strings.TrimSpace(p.Frequency)))
	switch freq {
	case model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly:
	default:
		return nil, "recurrence frequency must be daily, weekly, or monthly"
	}
	if p.Interval <= 0 {
		return nil, "recurrence interval must be positive"
	}
	if freq == model.FrequencyWeekly {
		if len(p.DaysOfWeek) == 0 {
			return nil, "weekly recurrence requires days_of_week"
		}
		for _, d := range p.DaysOfWeek {
			if d < 0 || d > 6 {
				return nil, "days_of_week values must be 0 (Sunday) through 6 (Saturday)"
			}
		}
	}

	rec := &model.Recurrence{
		Frequency:  freq,
		Interval:   p.Interval,
		DaysOfWeek: p.DaysOfWeek,
	}
	if raw := strings.TrimSpace(p.RecurrenceEnd); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, "invalid recurrence_end"
		}
		utc := t.UTC()
		rec.RecurrenceEnd = &utc
	}
	return rec, ""
}

func blockedPeriodToItem(p model.BlockedPeriod) blockedPeriodItem {
	item := blockedPeriodItem{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		StartTime: p.Start.UTC().Format(time.RFC3339),
		EndTime:   p.End.UTC().Format(time.RFC3339),
		Reason:    p.Reason,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.IsRecurring && p.Recurrence != nil {
		rp := &recurrencePayload{
			Frequency:  string(p.Recurrence.Frequency),
			Interval:   p.Recurrence.Interval,
			DaysOfWeek: p.Recurrence.DaysOfWeek,
		}
		if p.Recurrence.RecurrenceEnd != nil {
			rp.RecurrenceEnd = p.Recurrence.RecurrenceEnd.UTC().Format(time.RFC3339)
		}
		item.Recurrence = rp
	}
	return item
}
