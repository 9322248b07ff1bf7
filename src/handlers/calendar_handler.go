// backend/src/handlers/calendar_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/username/fxjournal/backend/src/logger"
	"github.com/username/fxjournal/backend/src/models"
	"github.com/username/fxjournal/backend/src/services"
	"github.com/username/fxjournal/backend/src/utils"
)

type CalendarHandler struct {
	calendarService services.CalendarService
}

func NewCalendarHandler(service services.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		calendarService: service,
	}
}

// HandleParseCalendar turns text pasted from an economic calendar page into
// structured events. Unparseable lines are dropped, never an error.
func (h *CalendarHandler) HandleParseCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(requestBody.Text) == "" {
		utils.SendJSONError(w, "Calendar text is required", http.StatusBadRequest)
		return
	}

	events := h.calendarService.ParseText(userID, requestBody.Text, time.Now().UTC())
	if events == nil {
		events = []models.CalendarEvent{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"events": events}); err != nil {
		logger.L.Error("Error encoding calendar events", "userID", userID, "error", err)
	}
}

// HandleTodayEvents returns the events cached for the current IST day.
func (h *CalendarHandler) HandleTodayEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	events := h.calendarService.TodayEvents(userID, time.Now().UTC())
	if events == nil {
		events = []models.CalendarEvent{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"events": events}); err != nil {
		logger.L.Error("Error encoding today's calendar events", "userID", userID, "error", err)
	}
}
