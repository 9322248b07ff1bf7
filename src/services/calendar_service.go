// backend/src/services/calendar_service.go
package services

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/fxjournal/backend/src/calendar"
	"github.com/username/fxjournal/backend/src/logger"
	"github.com/username/fxjournal/backend/src/models"
	"golang.org/x/net/publicsuffix"
)

const ckCalendarDay = "agg_calendar_user_%d_day_%s"

// calendarServiceImpl keeps each user's most recent parse for the rest of
// the IST day, so the dashboard panel and the paste form share one source.
// When a feed URL is configured, an empty day is filled from upstream.
type calendarServiceImpl struct {
	eventCache *cache.Cache
	httpClient http.Client
	feedURL    string
}

func NewCalendarService(eventCache *cache.Cache, feedURL string) CalendarService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &calendarServiceImpl{
		eventCache: eventCache,
		httpClient: http.Client{
			Jar:     jar,
			Timeout: 20 * time.Second,
		},
		feedURL: feedURL,
	}
}

func (s *calendarServiceImpl) ParseText(userID int64, text string, now time.Time) []models.CalendarEvent {
	events := calendar.Parse(text, now)
	logger.L.Info("Parsed calendar text", "userID", userID, "events", len(events))
	if len(events) > 0 {
		s.eventCache.Set(s.dayKey(userID, now), events, untilEndOfISTDay(now))
	}
	return events
}

func (s *calendarServiceImpl) TodayEvents(userID int64, now time.Time) []models.CalendarEvent {
	if cached, found := s.eventCache.Get(s.dayKey(userID, now)); found {
		return cached.([]models.CalendarEvent)
	}

	if s.feedURL == "" {
		return []models.CalendarEvent{}
	}
	events, err := s.fetchUpstream(now)
	if err != nil {
		logger.L.Warn("Upstream calendar fetch failed", "userID", userID, "error", err)
		return []models.CalendarEvent{}
	}
	if len(events) > 0 {
		s.eventCache.Set(s.dayKey(userID, now), events, untilEndOfISTDay(now))
	}
	return events
}

// fetchUpstream pulls the configured plain-text feed and runs it through the
// same parser the paste form uses.
func (s *calendarServiceImpl) fetchUpstream(now time.Time) ([]models.CalendarEvent, error) {
	req, err := http.NewRequest(http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar feed body: %w", err)
	}

	return calendar.Parse(string(body), now), nil
}

func (s *calendarServiceImpl) dayKey(userID int64, now time.Time) string {
	ist := now.UTC().Add(330 * time.Minute)
	return fmt.Sprintf(ckCalendarDay, userID, ist.Format("2006-01-02"))
}

func untilEndOfISTDay(now time.Time) time.Duration {
	ist := now.UTC().Add(330 * time.Minute)
	year, month, day := ist.Date()
	endOfDay := time.Date(year, month, day+1, 0, 0, 0, 0, time.UTC)
	return endOfDay.Sub(ist)
}
