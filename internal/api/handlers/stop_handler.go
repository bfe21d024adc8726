package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/somos/attraction/backend/internal/domain/entities"
)

//go:embed templates/stop_schedule.html
var templateFS embed.FS

var scheduleTemplate = template.Must(template.ParseFS(templateFS, "templates/stop_schedule.html"))

// StopDirectory is the stop lookup surface used by StopHandler
type StopDirectory interface {
	ListStopsInAreas(ctx context.Context) ([]entities.Stop, error)
	StopSchedule(ctx context.Context, stopID string) *entities.StopSchedule
}

// StopHandler serves the stop directory and stop schedules
type StopHandler struct {
	stops StopDirectory
}

// NewStopHandler creates a new stop handler
func NewStopHandler(stops StopDirectory) *StopHandler {
	return &StopHandler{stops: stops}
}

// ListStops handles GET /api/stops
func (h *StopHandler) ListStops(w http.ResponseWriter, r *http.Request) {
	stops, err := h.stops.ListStopsInAreas(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if stops == nil {
		stops = []entities.Stop{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"stops": stops,
	})
}

// GetSchedule handles GET /api/stops/{stop_id}/schedule
func (h *StopHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := h.stops.StopSchedule(r.Context(), r.PathValue("stop_id"))
	respondWithJSON(w, http.StatusOK, schedule)
}

// RenderSchedule handles GET /stops/{stop_id}/schedule
func (h *StopHandler) RenderSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := h.stops.StopSchedule(r.Context(), r.PathValue("stop_id"))

	var buf bytes.Buffer
	if err := scheduleTemplate.Execute(&buf, schedule); err != nil {
		logUnexpected(r, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
