package services

import (
	"errors"
	"io"
	"time"

	"github.com/username/fxjournal/backend/src/models"
)

var (
	// ErrParsingFailed wraps a structural CSV failure (unknown header). It is
	// the only way an import fails outright; bad rows are reported in the
	// ImportResult instead.
	ErrParsingFailed = errors.New("csv parsing failed")

	// ErrDuplicateTrade signals that an identical trade is already journaled.
	ErrDuplicateTrade = errors.New("trade already exists in the journal")
)

// TradeService is the core journal logic behind the trade endpoints.
type TradeService interface {
	ImportCSV(fileReader io.Reader, userID int64) (*models.ImportResult, error)
	ExportCSV(userID int64) (string, error)
	ListTrades(userID int64) ([]models.TradeRecord, error)
	CreateTrade(userID int64, rec models.TradeRecord) (*models.TradeRecord, error)
	DeleteAllTrades(userID int64) error
	AnalyticsSummary(userID int64) (*models.AnalyticsSummary, error)
	HasTrades(userID int64) (bool, error)
	InvalidateUserCache(userID int64)
}

// CalendarService turns pasted calendar text into events and remembers the
// result for the rest of the IST day.
type CalendarService interface {
	ParseText(userID int64, text string, now time.Time) []models.CalendarEvent
	TodayEvents(userID int64, now time.Time) []models.CalendarEvent
}

// EmailService sends account emails (verification, password reset).
type EmailService interface {
	SendVerificationEmail(toEmail, username, token string) error
	SendPasswordResetEmail(toEmail, username, token string) error
}
