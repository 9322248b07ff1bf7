package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Noon UTC on 2025-06-10 is 17:30 IST, so "today" in IST is still June 10.
var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func TestParseSingleBlock(t *testing.T) {
	raw := "9:30am\nUSD\nCore CPI m/m\n0.3%\t0.3%\t0.2%\n"

	events := Parse(raw, testNow)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, 1, ev.ID)
	assert.Equal(t, "9:30am", ev.TimeLabel)
	assert.Equal(t, time.Date(2025, 6, 10, 4, 0, 0, 0, time.UTC), ev.Date)
	require.NotNil(t, ev.Currency)
	assert.Equal(t, "USD", *ev.Currency)
	require.NotNil(t, ev.Event)
	assert.Equal(t, "Core CPI m/m", *ev.Event)
	require.NotNil(t, ev.Actual)
	assert.Equal(t, "0.3%", *ev.Actual)
	require.NotNil(t, ev.Forecast)
	assert.Equal(t, "0.3%", *ev.Forecast)
	require.NotNil(t, ev.Previous)
	assert.Equal(t, "0.2%", *ev.Previous)
}

func TestParseMultipleBlocksSequentialIDs(t *testing.T) {
	raw := `9:30am
USD
Core CPI m/m
0.3%	0.3%	0.2%
2pm
GBP
Official Bank Rate
4.25%	4.25%	4.50%`

	events := Parse(raw, testNow)
	require.Len(t, events, 2)

	assert.Equal(t, 1, events[0].ID)
	assert.Equal(t, 2, events[1].ID)
	assert.Equal(t, "2pm", events[1].TimeLabel)
	require.NotNil(t, events[1].Currency)
	assert.Equal(t, "GBP", *events[1].Currency)
	assert.Equal(t, time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC), events[1].Date)
}

func TestParseSpaceSeparatedDataRow(t *testing.T) {
	raw := "9:30am\nEUR\nGerman Flash Manufacturing PMI\n48.9   48.5   48.3"

	events := Parse(raw, testNow)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Actual)
	assert.Equal(t, "48.9", *events[0].Actual)
	require.NotNil(t, events[0].Previous)
	assert.Equal(t, "48.3", *events[0].Previous)
}

func TestParseDanglingTitleEmitsEvent(t *testing.T) {
	raw := "11pm\nJPY\nBOJ Gov Ueda Speaks"

	events := Parse(raw, testNow)
	require.Len(t, events, 1)

	ev := events[0]
	require.NotNil(t, ev.Event)
	assert.Equal(t, "BOJ Gov Ueda Speaks", *ev.Event)
	assert.Nil(t, ev.Actual)
	assert.Nil(t, ev.Forecast)
	assert.Nil(t, ev.Previous)
	assert.Equal(t, time.Date(2025, 6, 10, 17, 30, 0, 0, time.UTC), ev.Date)
}

func TestParseNoiseLinesIgnored(t *testing.T) {
	raw := "9:30am\nUSD\nActual\nForecast\nPrevious\n—\nUnemployment Claims\n231K\t236K\t235K"

	events := Parse(raw, testNow)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Event)
	assert.Equal(t, "Unemployment Claims", *events[0].Event)
}

// A second free-form line before any data row replaces the pending title, so
// the first title never produces an event.
func TestParseSecondTitleReplacesPending(t *testing.T) {
	raw := "9:30am\nUSD\nFirst Headline Here\nSecond Headline Here\n0.1%\t0.2%\t0.3%"

	events := Parse(raw, testNow)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Event)
	assert.Equal(t, "Second Headline Here", *events[0].Event)
}

func TestParseEarlyMorningRollsToPreviousUTCDay(t *testing.T) {
	raw := "12:05am\nAUD\nMid-Year Economic Outlook"

	events := Parse(raw, testNow)
	require.Len(t, events, 1)
	// 00:05 IST is 18:35 UTC the previous evening.
	assert.Equal(t, time.Date(2025, 6, 9, 18, 35, 0, 0, time.UTC), events[0].Date)
}

func TestParseNoonAndMidnightTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  time.Time
	}{
		{"noon", "12pm", time.Date(2025, 6, 10, 6, 30, 0, 0, time.UTC)},
		{"midnight", "12am", time.Date(2025, 6, 9, 18, 30, 0, 0, time.UTC)},
		{"plain hour", "3pm", time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := Parse(tt.token+"\nUSD\nSome Scheduled Event", testNow)
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0].Date)
		})
	}
}

func TestParseTimeTokenWithSpaces(t *testing.T) {
	events := Parse("9:30 AM\nUSD\nRetail Sales m/m\n0.4%\t0.2%\t0.1%", testNow)
	require.Len(t, events, 1)
	assert.Equal(t, "9:30am", events[0].TimeLabel)
}

func TestParseCurrencyResetsPendingTitle(t *testing.T) {
	// The title before the currency line belongs to nothing and is dropped.
	raw := "9:30am\nStray Line Of Text\nUSD\nTrade Balance\n-68.5B\t-70.2B\t-61.6B"

	events := Parse(raw, testNow)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Event)
	assert.Equal(t, "Trade Balance", *events[0].Event)
}

func TestParseEmptyAndUnstructuredInput(t *testing.T) {
	assert.Empty(t, Parse("", testNow))
	assert.Empty(t, Parse("\n\n\n", testNow))
	// Free-form lines with no preceding time token produce nothing.
	assert.Empty(t, Parse("just some text\nmore text", testNow))
}

func TestParseCRLFAndNonBreakingSpaces(t *testing.T) {
	raw := "9:30am\r\nUSD\r\nCore CPI m/m\r\n0.3%\t0.3%\t0.2%\r\n"

	events := Parse(raw, testNow)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Event)
	assert.Equal(t, "Core CPI m/m", *events[0].Event)
}
