// backend/src/handlers/trade_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/fxjournal/backend/src/config"
	"github.com/username/fxjournal/backend/src/logger"
	"github.com/username/fxjournal/backend/src/models"
	"github.com/username/fxjournal/backend/src/security/validation"
	"github.com/username/fxjournal/backend/src/services"
	"github.com/username/fxjournal/backend/src/utils"
)

type TradeHandler struct {
	tradeService services.TradeService
}

func NewTradeHandler(service services.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: service,
	}
}

// HandleImport accepts a multipart CSV upload in either the journal's own
// export format or a broker statement, and reports per-row results.
func (h *TradeHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file too large", "userID", userID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "userID", userID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("File content validation failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("Processing trade import", "userID", userID, "filename", fileHeader.Filename, "detectedType", detectedContentType)

	result, err := h.tradeService.ImportCSV(file, userID)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Import failed: unrecognized CSV format", "userID", userID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing CSV file: %v", err), http.StatusBadRequest)
		} else {
			logger.L.Error("Internal error processing import", "userID", userID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding import result", "userID", userID, "error", err)
	}
}

// HandleExport streams the user's journal in the native CSV format.
func (h *TradeHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	csvText, err := h.tradeService.ExportCSV(userID)
	if err != nil {
		logger.L.Error("Error exporting trades", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to export trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trades_export.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(csvText)); err != nil {
		logger.L.Error("Error writing CSV export", "userID", userID, "error", err)
	}
}

func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	trades, err := h.tradeService.ListTrades(userID)
	if err != nil {
		logger.L.Error("Error listing trades", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve trades", http.StatusInternalServerError)
		return
	}
	if trades == nil {
		trades = []models.TradeRecord{}
	}

	etag, err := utils.GenerateETag(trades)
	if err == nil {
		if match := r.Header.Get("If-None-Match"); match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(trades); err != nil {
		logger.L.Error("Error encoding trades response", "userID", userID, "error", err)
	}
}

func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var rec models.TradeRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.tradeService.CreateTrade(userID, rec)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateTrade) {
			utils.SendJSONError(w, "Trade already exists in the journal", http.StatusConflict)
			return
		}
		logger.L.Error("Error creating trade", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create trade", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		logger.L.Error("Error encoding created trade", "userID", userID, "error", err)
	}
}

func (h *TradeHandler) HandleDeleteAllTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.tradeService.DeleteAllTrades(userID); err != nil {
		logger.L.Error("Error deleting trades", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to delete trades", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Deleted all trades for user", "userID", userID)
	w.WriteHeader(http.StatusNoContent)
}
