package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/slotwise/services/availability-service/internal/calendarcfg"
	"github.com/example/slotwise/services/availability-service/internal/engine"
	"github.com/example/slotwise/services/availability-service/internal/model"
	"github.com/example/slotwise/services/availability-service/internal/slots"
	"github.com/example/slotwise/services/availability-service/internal/timezone"
)

type SlotsHandler struct {
	engine   *engine.Engine
	settings calendarcfg.Provider
	logger   *slog.Logger
}

func NewSlotsHandler(eng *engine.Engine, settings calendarcfg.Provider, logger *slog.Logger) *SlotsHandler {
	return &SlotsHandler{engine: eng, settings: settings, logger: logger}
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Slots serves GET /api/v1/public/slots. The window is either a single
// owner-local date (date=YYYY-MM-DD) or an explicit UTC range (from/to,
// RFC3339). Zone, business hours, and slot length come from the owner's
// calendar settings; query params override for dev and testing.
func (h *SlotsHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id"))
	if ownerID == "" {
		http.Error(w, "owner_id required", http.StatusBadRequest)
		return
	}

	settings, err := h.settings.OwnerSettings(r.Context(), ownerID)
	if err != nil {
		h.logger.Warn("owner settings fetch failed; using defaults", "err", err)
		settings = calendarcfg.Settings{}
	}

	zone := settings.Timezone
	if v := strings.TrimSpace(r.URL.Query().Get("timezone")); v != "" {
		zone = v
	}
	if zone == "" {
		zone = "UTC"
	}

	slotMinutes := settings.SlotMinutes
	if v := strings.TrimSpace(r.URL.Query().Get("slot_minutes")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 8*60 {
			http.Error(w, "invalid slot_minutes", http.StatusBadRequest)
			return
		}
		slotMinutes = n
	}
	if slotMinutes <= 0 {
		slotMinutes = 30
	}

	hours, ok := h.resolveHours(w, r, settings)
	if !ok {
		return
	}

	windowStart, windowEnd, ok := h.resolveWindow(w, r, zone)
	if !ok {
		return
	}

	req := engine.SlotRequest{
		OwnerID:     ownerID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		SlotMinutes: slotMinutes,
		Hours:       hours,
		Zone:        zone,
	}

	var candidates []model.CandidateSlot
	if parseBoolParam(r, "only_available") {
		candidates, err = h.engine.GetOnlyAvailableSlots(r.Context(), req)
	} else {
		candidates, err = h.engine.GetSlots(r.Context(), req)
	}
	if err != nil {
		if errors.Is(err, slots.ErrInvalidRange) {
			http.Error(w, "invalid slot range", http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to compute slots", http.StatusInternalServerError)
		return
	}

	items := make([]slotItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, slotItem{
			StartTime: c.Interval.Start.UTC().Format(time.RFC3339),
			EndTime:   c.Interval.End.UTC().Format(time.RFC3339),
			Available: c.Available,
			Reason:    string(c.Reason),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *SlotsHandler) resolveHours(w http.ResponseWriter, r *http.Request, settings calendarcfg.Settings) (*slots.BusinessHours, bool) {
	hours := settings.Hours
	startRaw := strings.TrimSpace(r.URL.Query().Get("start_hour"))
	endRaw := strings.TrimSpace(r.URL.Query().Get("end_hour"))
	if startRaw == "" && endRaw == "" {
		return hours, true
	}
	start, err := strconv.Atoi(startRaw)
	if err != nil {
		http.Error(w, "invalid start_hour", http.StatusBadRequest)
		return nil, false
	}
	end, err := strconv.Atoi(endRaw)
	if err != nil {
		http.Error(w, "invalid end_hour", http.StatusBadRequest)
		return nil, false
	}
	if start < 0 || end > 24 || end <= start {
		http.Error(w, "start_hour and end_hour must form a range within 0..24", http.StatusBadRequest)
		return nil, false
	}
	return &slots.BusinessHours{StartHour: start, EndHour: end}, true
}

func (h *SlotsHandler) resolveWindow(w http.ResponseWriter, r *http.Request, zone string) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	if dateStr := strings.TrimSpace(q.Get("date")); dateStr != "" {
		loc := timezone.LoadZone(zone)
		day, err := time.ParseInLocation("2006-01-02", dateStr, loc)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return time.Time{}, time.Time{}, false
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		return start.UTC(), start.AddDate(0, 0, 1).UTC(), true
	}

	from, err := time.Parse(time.RFC3339, strings.TrimSpace(q.Get("from")))
	if err != nil {
		http.Error(w, "date or from/to required", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, strings.TrimSpace(q.Get("to")))
	if err != nil {
		http.Error(w, "invalid to", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	if !to.After(from) {
		http.Error(w, "to must be after from", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	return from.UTC(), to.UTC(), true
}

func parseBoolParam(r *http.Request, name string) bool {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
