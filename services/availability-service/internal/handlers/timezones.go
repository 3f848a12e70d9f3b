package handlers

import (
	"net/http"
	"strings"

	"github.com/example/slotwise/services/availability-service/internal/timezone"
)

type TimezoneHandler struct{}

func NewTimezoneHandler() *TimezoneHandler {
	return &TimezoneHandler{}
}

type timezoneCheckResponse struct {
	Zone               string `json:"zone"`
	Valid              bool   `json:"valid"`
	DisplayName        string `json:"display_name"`
	IsTransitionWindow bool   `json:"is_transition_window,omitempty"`
	IsAmbiguous        bool   `json:"is_ambiguous,omitempty"`
	IsNonExistent      bool   `json:"is_non_existent,omitempty"`
}

// Check serves GET /api/v1/timezones/check. With only a zone it validates the
// name; with local_time it also probes the wall-clock for DST hazards so a UI
// can warn before a booking or blocked period is submitted.
func (h *TimezoneHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	zone := strings.TrimSpace(r.URL.Query().Get("zone"))
	if zone == "" {
		http.Error(w, "zone required", http.StatusBadRequest)
		return
	}

	resp := timezoneCheckResponse{
		Zone:        zone,
		Valid:       timezone.IsValidZone(zone),
		DisplayName: timezone.DisplayName(zone),
	}

	if local := strings.TrimSpace(r.URL.Query().Get("local_time")); local != "" {
		hazard := timezone.CheckDSTHazard(local, zone)
		resp.IsTransitionWindow = hazard.IsTransitionWindow
		resp.IsAmbiguous = hazard.IsAmbiguous
		resp.IsNonExistent = hazard.IsNonExistent
	}

	writeJSON(w, http.StatusOK, resp)
}
