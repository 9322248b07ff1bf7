// backend/src/handlers/analytics_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/fxjournal/backend/src/logger"
	"github.com/username/fxjournal/backend/src/services"
	"github.com/username/fxjournal/backend/src/utils"
)

type AnalyticsHandler struct {
	tradeService services.TradeService
}

func NewAnalyticsHandler(service services.TradeService) *AnalyticsHandler {
	return &AnalyticsHandler{
		tradeService: service,
	}
}

// HandleSummary returns win rate, net P&L and per-session performance for
// the dashboard, with ETag support since the payload changes rarely.
func (h *AnalyticsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	summary, err := h.tradeService.AnalyticsSummary(userID)
	if err != nil {
		logger.L.Error("Error computing analytics summary", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to compute analytics summary", http.StatusInternalServerError)
		return
	}

	etag, err := utils.GenerateETag(summary)
	if err == nil {
		if match := r.Header.Get("If-None-Match"); match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		logger.L.Error("Error encoding analytics summary", "userID", userID, "error", err)
	}
}
