package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	meteringapp "solar-portal/internal/metering/application"
	metering "solar-portal/internal/metering/domain"
	"solar-portal/internal/observability/metrics"
)

// StatusHandler serves the public, unauthenticated status lookup. It only
// ever exposes the customer snapshot, never reviewer notes.
type StatusHandler struct {
	tracker *meteringapp.StatusTracker
}

// NewStatusHandler constructs a status handler.
func NewStatusHandler(tracker *meteringapp.StatusTracker) (*StatusHandler, error) {
	if tracker == nil {
		return nil, errors.New("status handler: nil tracker")
	}
	return &StatusHandler{tracker: tracker}, nil
}

// ServeHTTP handles GET /api/v1/application-status/{referenceCode}.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	referenceCode := strings.TrimPrefix(r.URL.Path, "/api/v1/application-status/")
	if referenceCode == "" || strings.Contains(referenceCode, "/") {
		http.Error(w, "reference code required", http.StatusBadRequest)
		return
	}

	snapshot, err := h.tracker.Lookup(r.Context(), referenceCode)
	if err != nil {
		if errors.Is(err, metering.ErrNotFound) {
			metrics.IncStatusLookup(metrics.ResultError)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "application not found"})
			return
		}
		metrics.IncStatusLookup(metrics.ResultError)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.IncStatusLookup(metrics.ResultSuccess)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}
