// backend/src/calendar/parser.go
package calendar

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/username/fxjournal/backend/src/models"
)

// Event timestamps are displayed in India Standard Time. IST has no daylight
// saving, so the offset is a fixed constant rather than a zone lookup.
const istOffsetMinutes = 330

var (
	timeTokenRe = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(am|pm)$`)
	tabRunRe    = regexp.MustCompile(`\t+`)
	spaceRunRe  = regexp.MustCompile(` {2,}`)
)

// Parse converts text pasted from an economic calendar website into a
// sequence of CalendarEvent records. The scan is line oriented: a time token
// opens a block, an optional currency line tags it, the next free-form line
// becomes the pending event title, and a 3-column row supplies
// actual/forecast/previous. The caller injects now so that "today" (resolved
// in IST) is deterministic under test.
//
// Parse never fails; unparseable input just yields fewer events.
func Parse(raw string, now time.Time) []models.CalendarEvent {
	var (
		events       []models.CalendarEvent
		currentTime  string
		currentCcy   string
		pendingTitle string
	)

	emit := func(actual, forecast, previous string) {
		ev := models.CalendarEvent{
			ID:        len(events) + 1,
			Date:      eventTimestamp(currentTime, now),
			TimeLabel: currentTime,
		}
		if currentCcy != "" {
			ccy := currentCcy
			ev.Currency = &ccy
		}
		title := pendingTitle
		ev.Event = &title
		if actual != "" {
			a := actual
			ev.Actual = &a
		}
		if forecast != "" {
			f := forecast
			ev.Forecast = &f
		}
		if previous != "" {
			p := previous
			ev.Previous = &p
		}
		events = append(events, ev)
	}

	for _, line := range splitLines(raw) {
		if tok, ok := normalizeTimeToken(line); ok {
			currentTime = tok
			currentCcy = ""
			pendingTitle = ""
			continue
		}
		if ccy, ok := currencyToken(line); ok {
			currentCcy = ccy
			pendingTitle = ""
			continue
		}
		if isNoise(line) {
			continue
		}
		if pendingTitle != "" && currentTime != "" {
			if cols, ok := splitDataColumns(line); ok {
				emit(cols[0], cols[1], cols[2])
				pendingTitle = ""
				continue
			}
			// Not a data row: the line replaces the pending title, and the
			// previous title's event is lost. Known quirk, kept for
			// compatibility with existing journals.
			pendingTitle = line
			continue
		}
		if currentTime != "" {
			pendingTitle = line
		}
	}

	// A trailing title with no data row still becomes an event.
	if pendingTitle != "" && currentTime != "" {
		emit("", "", "")
	}

	return events
}

func splitLines(raw string) []string {
	var lines []string
	for _, line := range regexp.MustCompile(`\r?\n`).Split(raw, -1) {
		line = strings.ReplaceAll(line, " ", " ")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// normalizeTimeToken reports whether the line is a time-of-day token like
// "9:30am" or "11 pm", returning its lowercase space-free form.
func normalizeTimeToken(line string) (string, bool) {
	tok := strings.ToLower(strings.ReplaceAll(line, " ", ""))
	if timeTokenRe.MatchString(tok) {
		return tok, true
	}
	return "", false
}

// currencyToken reports whether the line is a 3-letter currency code.
func currencyToken(line string) (string, bool) {
	up := strings.ToUpper(line)
	if len(up) != 3 {
		return "", false
	}
	for _, r := range up {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return up, true
}

func isNoise(line string) bool {
	if line == "—" {
		return true
	}
	switch strings.ToLower(line) {
	case "actual", "forecast", "previous":
		return true
	}
	return false
}

// splitDataColumns tries to read an actual/forecast/previous row. Tab runs
// are tried first, then runs of two or more spaces; the first separator that
// yields at least 3 non-empty fields wins and the first 3 are kept.
func splitDataColumns(line string) ([]string, bool) {
	for _, re := range []*regexp.Regexp{tabRunRe, spaceRunRe} {
		var fields []string
		for _, part := range re.Split(line, -1) {
			part = strings.TrimSpace(part)
			if part != "" {
				fields = append(fields, part)
			}
		}
		if len(fields) >= 3 {
			return fields[:3], true
		}
	}
	return nil, false
}

// eventTimestamp converts a normalized time token into the absolute UTC
// instant of that wall-clock time on "today" in IST. time.Date normalizes
// out-of-range minutes, so early IST mornings roll back to the previous UTC
// day. A token that fails to parse falls back to now.
func eventTimestamp(token string, now time.Time) time.Time {
	m := timeTokenRe.FindStringSubmatch(token)
	if m == nil {
		return now
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return now
	}
	minute := 0
	if m[2] != "" {
		if minute, err = strconv.Atoi(m[2]); err != nil {
			return now
		}
	}

	// 12am is midnight, 12pm is noon.
	if hour == 12 {
		hour = 0
	}
	wallMinutes := hour*60 + minute
	if m[3] == "pm" {
		wallMinutes += 12 * 60
	}

	ist := now.UTC().Add(istOffsetMinutes * time.Minute)
	year, month, day := ist.Date()
	return time.Date(year, month, day, 0, wallMinutes-istOffsetMinutes, 0, 0, time.UTC)
}
