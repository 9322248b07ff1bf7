package services

import (
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fxjournal/backend/src/logger"
)

func setupCalendarService(t *testing.T) CalendarService {
	t.Helper()
	logger.InitLogger("error")
	return NewCalendarService(cache.New(time.Minute, time.Minute), "")
}

func TestCalendarParseTextCachesForTheDay(t *testing.T) {
	svc := setupCalendarService(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	events := svc.ParseText(1, "9:30am\nUSD\nCore CPI m/m\n0.3%\t0.3%\t0.2%", now)
	require.Len(t, events, 1)

	today := svc.TodayEvents(1, now)
	require.Len(t, today, 1)
	assert.Equal(t, events[0], today[0])

	// Another user sees nothing.
	assert.Empty(t, svc.TodayEvents(2, now))
}

func TestCalendarTodayEventsEmptyWithoutFeed(t *testing.T) {
	svc := setupCalendarService(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	events := svc.TodayEvents(1, now)
	assert.Empty(t, events)
}

func TestCalendarUnparseableTextNotCached(t *testing.T) {
	svc := setupCalendarService(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	events := svc.ParseText(1, "nothing useful here", now)
	assert.Empty(t, events)
	assert.Empty(t, svc.TodayEvents(1, now))
}
