// backend/src/parsers/brokertime.go
package parsers

import (
	"strings"
	"time"
)

const brokerISOLayout = "2006-01-02T15:04:05Z"

// brokerTimeLayouts covers the comma-separated MM/DD/YYYY form MT4/MT5
// statement exports use, plus the usual ISO shapes. Unpadded layouts accept
// both "6/5/2025" and "06/05/2025".
var brokerTimeLayouts = []string{
	"1/2/2006, 15:04:05",
	"1/2/2006, 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseBrokerTime parses a broker statement timestamp, nil if no layout
// matches. Statement times carry no zone; they are taken as UTC.
func parseBrokerTime(cell string) *time.Time {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	for _, layout := range brokerTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
