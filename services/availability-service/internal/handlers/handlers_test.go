package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/slotwise/services/availability-service/internal/calendarcfg"
	"github.com/example/slotwise/services/availability-service/internal/engine"
	"github.com/example/slotwise/services/availability-service/internal/model"
	"github.com/example/slotwise/services/availability-service/internal/outbox"
	"github.com/example/slotwise/services/availability-service/internal/slots"
	"github.com/example/slotwise/services/availability-service/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeBlockedStore struct {
	periods []model.BlockedPeriod
	created []model.BlockedPeriod
}

func (f *fakeBlockedStore) ListForOwner(_ context.Context, _ string, _, _ time.Time) ([]model.BlockedPeriod, error) {
	return f.periods, nil
}

func (f *fakeBlockedStore) ListByOwner(_ context.Context, _ string, _ int) ([]model.BlockedPeriod, error) {
	return f.periods, nil
}

func (f *fakeBlockedStore) Begin(_ context.Context) (pgx.Tx, error) {
	return &fakeTx{}, nil
}

func (f *fakeBlockedStore) Create(_ context.Context, _ pgx.Tx, p model.BlockedPeriod) (string, error) {
	f.created = append(f.created, p)
	return "bp-1", nil
}

func (f *fakeBlockedStore) Delete(_ context.Context, _ pgx.Tx, ownerID, id string) (model.BlockedPeriod, error) {
	for _, p := range f.periods {
		if p.ID == id && p.OwnerID == ownerID {
			return p, nil
		}
	}
	return model.BlockedPeriod{}, storage.ErrNotFound
}

type fakeBookingListStore struct {
	approved []model.Booking
}

func (f *fakeBookingListStore) ListApprovedForOwner(_ context.Context, _ string, _, _ time.Time, exclude string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.approved {
		if b.ID != exclude {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeTx satisfies pgx.Tx for handler tests; only Commit and Rollback are
// reachable through the fake stores.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBookingStore struct {
	bookings map[string]*model.Booking
	approved []model.Booking
	updated  []string
	lastTx   *fakeTx

	lockedOwners   []string
	onLockOwner    func()
	listedUnlocked bool
}

func (f *fakeBookingStore) Begin(_ context.Context) (pgx.Tx, error) {
	f.lastTx = &fakeTx{}
	return f.lastTx, nil
}

func (f *fakeBookingStore) Create(_ context.Context, _ pgx.Tx, b model.Booking) (model.Booking, error) {
	b.ID = "bk-new"
	b.Status = model.StatusPending
	b.CreatedAt = time.Now().UTC()
	if f.bookings == nil {
		f.bookings = map[string]*model.Booking{}
	}
	f.bookings[b.ID] = &b
	return b, nil
}

func (f *fakeBookingStore) GetForUpdate(_ context.Context, _ pgx.Tx, id string) (model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, storage.ErrNotFound
	}
	return *b, nil
}

// LockOwner records the lock and runs the onLockOwner hook, which tests use
// to model a competing approval committing while this one waited.
func (f *fakeBookingStore) LockOwner(_ context.Context, _ pgx.Tx, ownerID string) error {
	f.lockedOwners = append(f.lockedOwners, ownerID)
	if f.onLockOwner != nil {
		f.onLockOwner()
	}
	return nil
}

func (f *fakeBookingStore) ListApprovedForOwnerForUpdate(_ context.Context, _ pgx.Tx, _ string, _, _ time.Time, exclude string) ([]model.Booking, error) {
	if len(f.lockedOwners) == 0 {
		f.listedUnlocked = true
	}
	var out []model.Booking
	for _, b := range f.approved {
		if b.ID != exclude {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) UpdateStatus(_ context.Context, _ pgx.Tx, id string, to string, _ []string, cancelReason string) (model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, storage.ErrNotFound
	}
	b.Status = to
	b.CancelReason = cancelReason
	now := time.Now().UTC()
	b.DecidedAt = &now
	f.updated = append(f.updated, id+":"+to)
	return *b, nil
}

func (f *fakeBookingStore) ListForOwner(_ context.Context, _ string, status string, _ int) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if status == "" || b.Status == status {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeOutbox struct {
	events []outbox.Event
}

func (f *fakeOutbox) Insert(_ context.Context, _ pgx.Tx, evt outbox.Event) error {
	f.events = append(f.events, evt)
	return nil
}

func staticSettings() calendarcfg.Provider {
	return calendarcfg.NewStaticProvider(calendarcfg.Settings{
		Timezone:    "UTC",
		SlotMinutes: 60,
		Hours:       &slots.BusinessHours{StartHour: 9, EndHour: 12},
	})
}

func TestSlotsEndpoint(t *testing.T) {
	blocked := &fakeBlockedStore{periods: []model.BlockedPeriod{{
		OwnerID: "owner-1",
		Start:   time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
	}}}
	eng := engine.New(blocked, &fakeBookingListStore{})
	h := NewSlotsHandler(eng, staticSettings(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/slots?owner_id=owner-1&date=2024-06-10", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var items []slotItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	// Business hours 9-12, 60-minute slots.
	if len(items) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(items))
	}
	if items[0].Available || items[0].Reason != "blocked" {
		t.Fatalf("09:00 slot should be blocked, got %+v", items[0])
	}
	if !items[1].Available || !items[2].Available {
		t.Fatalf("10:00 and 11:00 slots should be available, got %+v", items[1:])
	}
}

func TestSlotsEndpointOnlyAvailable(t *testing.T) {
	blocked := &fakeBlockedStore{periods: []model.BlockedPeriod{{
		OwnerID: "owner-1",
		Start:   time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
	}}}
	eng := engine.New(blocked, &fakeBookingListStore{})
	h := NewSlotsHandler(eng, staticSettings(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/slots?owner_id=owner-1&date=2024-06-10&only_available=true", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var items []slotItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 available slots, got %d", len(items))
	}
	for _, it := range items {
		if !it.Available {
			t.Fatalf("filtered output should be available, got %+v", it)
		}
	}
}

func TestSlotsEndpointValidation(t *testing.T) {
	eng := engine.New(&fakeBlockedStore{}, &fakeBookingListStore{})
	h := NewSlotsHandler(eng, staticSettings(), testLogger())

	cases := []string{
		"/api/v1/public/slots",
		"/api/v1/public/slots?owner_id=owner-1",
		"/api/v1/public/slots?owner_id=owner-1&date=bogus",
		"/api/v1/public/slots?owner_id=owner-1&date=2024-06-10&slot_minutes=0",
		"/api/v1/public/slots?owner_id=owner-1&from=2024-06-10T10:00:00Z&to=2024-06-10T10:00:00Z",
	}
	for _, url := range cases {
		rec := httptest.NewRecorder()
		h.Slots(rec, httptest.NewRequest(http.MethodGet, url, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", url, rec.Code)
		}
	}
}

func TestTimezoneCheckEndpoint(t *testing.T) {
	h := NewTimezoneHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timezones/check?zone=America/New_York&local_time=2024-03-10T02:30:00", nil)
	rec := httptest.NewRecorder()
	h.Check(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp timezoneCheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if !resp.Valid {
		t.Fatal("expected valid zone")
	}
	if !resp.IsNonExistent {
		t.Fatal("expected non-existent flag for the skipped spring-forward time")
	}

	rec = httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/api/v1/timezones/check?zone=Not/AZone", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp = timezoneCheckResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Valid {
		t.Fatal("expected invalid zone")
	}
}

func TestCreateBookingEndpoint(t *testing.T) {
	store := &fakeBookingStore{}
	ob := &fakeOutbox{}
	h := NewBookingHandler(store, &fakeBlockedStore{}, ob, testLogger())

	body := `{"owner_id":"owner-1","requester_id":"req-1","start_time":"2024-06-10T10:00:00Z","end_time":"2024-06-10T11:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var item bookingItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if item.Status != model.StatusPending {
		t.Fatalf("expected pending status, got %q", item.Status)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != outbox.EventBookingRequested {
		t.Fatalf("expected one requested event, got %+v", ob.events)
	}
	if store.lastTx == nil || !store.lastTx.committed {
		t.Fatal("expected transaction committed")
	}
}

func TestApproveBookingConflict(t *testing.T) {
	pending := model.Booking{
		ID:      "bk-pending",
		OwnerID: "owner-1",
		Status:  model.StatusPending,
		Start:   time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC),
	}
	store := &fakeBookingStore{
		bookings: map[string]*model.Booking{pending.ID: &pending},
		approved: []model.Booking{{
			ID:      "bk-approved",
			OwnerID: "owner-1",
			Status:  model.StatusApproved,
			Start:   time.Date(2024, 6, 10, 10, 30, 0, 0, time.UTC),
			End:     time.Date(2024, 6, 10, 11, 30, 0, 0, time.UTC),
		}},
	}
	ob := &fakeOutbox{}
	h := NewBookingHandler(store, &fakeBlockedStore{}, ob, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/approve", strings.NewReader(`{"booking_id":"bk-pending"}`))
	rec := httptest.NewRecorder()
	h.Approve(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if pending.Status != model.StatusPending {
		t.Fatalf("booking status must be untouched, got %q", pending.Status)
	}
	if len(store.updated) != 0 {
		t.Fatalf("no status update may happen on conflict, got %v", store.updated)
	}
	if len(ob.events) != 0 {
		t.Fatalf("no event may be written on conflict, got %+v", ob.events)
	}
	if store.lastTx.committed {
		t.Fatal("conflicting approval must not commit")
	}
}

func TestApproveBookingSuccess(t *testing.T) {
	pending := model.Booking{
		ID:      "bk-pending",
		OwnerID: "owner-1",
		Status:  model.StatusPending,
		Start:   time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC),
	}
	store := &fakeBookingStore{
		bookings: map[string]*model.Booking{pending.ID: &pending},
		// Touching interval: must not conflict.
		approved: []model.Booking{{
			ID:      "bk-approved",
			OwnerID: "owner-1",
			Status:  model.StatusApproved,
			Start:   time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC),
			End:     time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
		}},
	}
	ob := &fakeOutbox{}
	h := NewBookingHandler(store, &fakeBlockedStore{}, ob, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/approve", strings.NewReader(`{"booking_id":"bk-pending"}`))
	rec := httptest.NewRecorder()
	h.Approve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var item bookingItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if item.Status != model.StatusApproved {
		t.Fatalf("expected approved, got %q", item.Status)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != outbox.EventBookingApproved {
		t.Fatalf("expected one approved event, got %+v", ob.events)
	}
	if !store.lastTx.committed {
		t.Fatal("expected transaction committed")
	}
}

func TestApproveSerializesOnOwnerLock(t *testing.T) {
	// Two overlapping pending requests race. The winner commits while the
	// loser waits on the owner lock; by the time the loser's conflict read
	// runs, the winner's approved row is visible and the loser must lose.
	loser := model.Booking{
		ID:      "bk-loser",
		OwnerID: "owner-1",
		Status:  model.StatusPending,
		Start:   time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC),
	}
	store := &fakeBookingStore{bookings: map[string]*model.Booking{loser.ID: &loser}}
	store.onLockOwner = func() {
		store.approved = append(store.approved, model.Booking{
			ID:      "bk-winner",
			OwnerID: "owner-1",
			Status:  model.StatusApproved,
			Start:   time.Date(2024, 6, 10, 10, 30, 0, 0, time.UTC),
			End:     time.Date(2024, 6, 10, 11, 30, 0, 0, time.UTC),
		})
	}
	ob := &fakeOutbox{}
	h := NewBookingHandler(store, &fakeBlockedStore{}, ob, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/approve", strings.NewReader(`{"booking_id":"bk-loser"}`))
	rec := httptest.NewRecorder()
	h.Approve(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for the losing approval, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.lockedOwners) != 1 || store.lockedOwners[0] != "owner-1" {
		t.Fatalf("expected one owner lock on owner-1, got %v", store.lockedOwners)
	}
	if store.listedUnlocked {
		t.Fatal("approved set was read before the owner lock was taken")
	}
	if loser.Status != model.StatusPending || len(store.updated) != 0 {
		t.Fatalf("losing approval must not change state, got status %q updates %v", loser.Status, store.updated)
	}
	if len(ob.events) != 0 {
		t.Fatalf("losing approval must not emit events, got %+v", ob.events)
	}
	if store.lastTx.committed {
		t.Fatal("losing approval must not commit")
	}
}

func TestApproveBookingIdempotent(t *testing.T) {
	approved := model.Booking{
		ID:      "bk-approved",
		OwnerID: "owner-1",
		Status:  model.StatusApproved,
		Start:   time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC),
	}
	store := &fakeBookingStore{bookings: map[string]*model.Booking{approved.ID: &approved}}
	ob := &fakeOutbox{}
	h := NewBookingHandler(store, &fakeBlockedStore{}, ob, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/approve", strings.NewReader(`{"booking_id":"bk-approved"}`))
	rec := httptest.NewRecorder()
	h.Approve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for repeat approval, got %d", rec.Code)
	}
	if len(store.updated) != 0 {
		t.Fatalf("repeat approval must not rewrite status, got %v", store.updated)
	}
	if len(ob.events) != 0 {
		t.Fatalf("repeat approval must not emit events, got %+v", ob.events)
	}
}

func TestApproveBookingBlockedPeriodConflict(t *testing.T) {
	pending := model.Booking{
		ID:      "bk-pending",
		OwnerID: "owner-1",
		Status:  model.StatusPending,
		Start:   time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC),
	}
	store := &fakeBookingStore{bookings: map[string]*model.Booking{pending.ID: &pending}}
	blocked := &fakeBlockedStore{periods: []model.BlockedPeriod{{
		OwnerID: "owner-1",
		Start:   time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 10, 10, 30, 0, 0, time.UTC),
	}}}
	h := NewBookingHandler(store, blocked, &fakeOutbox{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/approve", strings.NewReader(`{"booking_id":"bk-pending"}`))
	rec := httptest.NewRecorder()
	h.Approve(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for blocked-period conflict, got %d", rec.Code)
	}
}

func TestCancelBooking(t *testing.T) {
	approved := model.Booking{
		ID:      "bk-1",
		OwnerID: "owner-1",
		Status:  model.StatusApproved,
		Start:   time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC),
	}
	store := &fakeBookingStore{bookings: map[string]*model.Booking{approved.ID: &approved}}
	ob := &fakeOutbox{}
	h := NewBookingHandler(store, &fakeBlockedStore{}, ob, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/cancel", strings.NewReader(`{"booking_id":"bk-1","reason":"sick"}`))
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var item bookingItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if item.Status != model.StatusCancelled || item.CancelReason != "sick" {
		t.Fatalf("expected cancelled with reason, got %+v", item)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != outbox.EventBookingCancelled {
		t.Fatalf("expected one cancelled event, got %+v", ob.events)
	}
}

func TestRejectAlreadyCancelledBooking(t *testing.T) {
	cancelled := model.Booking{
		ID:      "bk-1",
		OwnerID: "owner-1",
		Status:  model.StatusCancelled,
		Start:   time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC),
	}
	store := &fakeBookingStore{bookings: map[string]*model.Booking{cancelled.ID: &cancelled}}
	h := NewBookingHandler(store, &fakeBlockedStore{}, &fakeOutbox{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/reject", strings.NewReader(`{"booking_id":"bk-1"}`))
	rec := httptest.NewRecorder()
	h.Reject(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 rejecting a cancelled booking, got %d", rec.Code)
	}
}

func TestCreateBlockedPeriodEndpoint(t *testing.T) {
	store := &fakeBlockedStore{}
	ob := &fakeOutbox{}
	h := NewBlockedPeriodHandler(store, ob, testLogger())

	body := `{"owner_id":"owner-1","start_time":"2024-06-10T14:00:00","end_time":"2024-06-10T15:00:00","timezone":"America/New_York","recurrence":{"frequency":"weekly","interval":1,"days_of_week":[1]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/blocked-periods", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one created period, got %d", len(store.created))
	}
	// 14:00 EDT is 18:00 UTC.
	want := time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)
	if !store.created[0].Start.Equal(want) {
		t.Fatalf("expected %s, got %s", want, store.created[0].Start)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != outbox.EventBlockedPeriodCreated {
		t.Fatalf("expected one created event, got %+v", ob.events)
	}
}

func TestCreateBlockedPeriodWeeklyRequiresDays(t *testing.T) {
	h := NewBlockedPeriodHandler(&fakeBlockedStore{}, &fakeOutbox{}, testLogger())

	body := `{"owner_id":"owner-1","start_time":"2024-06-10T14:00:00Z","end_time":"2024-06-10T15:00:00Z","recurrence":{"frequency":"weekly","interval":1}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/blocked-periods", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for weekly rule without days, got %d", rec.Code)
	}
}

func TestDeleteBlockedPeriodNotFound(t *testing.T) {
	h := NewBlockedPeriodHandler(&fakeBlockedStore{}, &fakeOutbox{}, testLogger())

	body := `{"owner_id":"owner-1","blocked_period_id":"missing"}`
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/blocked-periods", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
