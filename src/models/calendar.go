package models

import "time"

// CalendarEvent is one row of the economic calendar, either parsed from
// pasted ForexFactory-style text or fetched from the upstream feed. Date is
// the absolute UTC instant of the event; TimeLabel keeps the original
// wall-clock token (e.g. "9:30am") for display.
type CalendarEvent struct {
	ID        int       `json:"id"`
	Date      time.Time `json:"date"`
	TimeLabel string    `json:"timeLabel"`
	Currency  *string   `json:"currency,omitempty"`
	Event     *string   `json:"event,omitempty"`
	Actual    *string   `json:"actual,omitempty"`
	Forecast  *string   `json:"forecast,omitempty"`
	Previous  *string   `json:"previous,omitempty"`
}
