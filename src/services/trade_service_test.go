package services

import (
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fxjournal/backend/src/database"
	"github.com/username/fxjournal/backend/src/logger"
	"github.com/username/fxjournal/backend/src/models"
)

const importCSV = `date,direction,entryPrice,instrument,session,pnl,rMultiple,notes
2025-06-05,long,1.085,EURUSD,london,150,2,clean breakout
2025-06-06,short,1.2,GBPUSD,newyork,-50,-1,chased the move
`

func setupTradeService(t *testing.T) TradeService {
	t.Helper()
	logger.InitLogger("error")
	database.InitDB(":memory:")
	return NewTradeService(cache.New(time.Minute, time.Minute))
}

func TestImportCSVNative(t *testing.T) {
	svc := setupTradeService(t)

	result, err := svc.ImportCSV(strings.NewReader(importCSV), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Empty(t, result.Failed)

	trades, err := svc.ListTrades(1)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	first := trades[0]
	require.NotNil(t, first.Date)
	assert.Equal(t, "2025-06-05", *first.Date)
	require.NotNil(t, first.Direction)
	assert.Equal(t, "long", *first.Direction)
	require.NotNil(t, first.PnL)
	assert.Equal(t, 150.0, *first.PnL)
	require.NotNil(t, first.ID)
}

func TestImportCSVReimportReportsDuplicates(t *testing.T) {
	svc := setupTradeService(t)

	_, err := svc.ImportCSV(strings.NewReader(importCSV), 1)
	require.NoError(t, err)

	result, err := svc.ImportCSV(strings.NewReader(importCSV), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, 2, result.Failed[0].Index)
	assert.Equal(t, "duplicate trade", result.Failed[0].Reason)
	assert.Equal(t, 3, result.Failed[1].Index)

	trades, err := svc.ListTrades(1)
	require.NoError(t, err)
	assert.Len(t, trades, 2)
}

func TestImportCSVUnknownFormat(t *testing.T) {
	svc := setupTradeService(t)

	_, err := svc.ImportCSV(strings.NewReader("foo,bar,baz\n1,2,3\n"), 1)
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestImportCSVIsolatedPerUser(t *testing.T) {
	svc := setupTradeService(t)

	_, err := svc.ImportCSV(strings.NewReader(importCSV), 1)
	require.NoError(t, err)

	hasData, err := svc.HasTrades(2)
	require.NoError(t, err)
	assert.False(t, hasData)

	trades, err := svc.ListTrades(2)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestImportCSVSanitizesNotes(t *testing.T) {
	svc := setupTradeService(t)

	csvText := "date,direction,entryPrice,instrument,notes\n" +
		"2025-06-05,long,1.085,EURUSD,<b>late</b> entry again\n"
	result, err := svc.ImportCSV(strings.NewReader(csvText), 1)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)

	trades, err := svc.ListTrades(1)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.NotNil(t, trades[0].Notes)
	assert.Equal(t, "late entry again", *trades[0].Notes)
}

func TestExportCSVRoundTripAndFormulaArmor(t *testing.T) {
	svc := setupTradeService(t)

	csvText := "date,direction,entryPrice,instrument,notes\n" +
		"2025-06-05,long,1.085,EURUSD,=SUM(A1:A9)\n"
	_, err := svc.ImportCSV(strings.NewReader(csvText), 1)
	require.NoError(t, err)

	out, err := svc.ExportCSV(1)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,date,entryTime,"))
	assert.Contains(t, lines[1], "EURUSD")
	// Cells starting with a formula trigger get neutralized on export.
	assert.Contains(t, lines[1], "'=SUM(A1:A9)")
}

func TestCreateTradeAndDuplicate(t *testing.T) {
	svc := setupTradeService(t)

	date := "2025-06-05"
	instrument := "EURUSD"
	direction := "long"
	pnl := 75.0
	rec := models.TradeRecord{
		Date:       &date,
		Instrument: &instrument,
		Direction:  &direction,
		PnL:        &pnl,
	}

	created, err := svc.CreateTrade(1, rec)
	require.NoError(t, err)
	require.NotNil(t, created.ID)

	_, err = svc.CreateTrade(1, rec)
	assert.ErrorIs(t, err, ErrDuplicateTrade)

	// The same trade under another user is fine.
	_, err = svc.CreateTrade(2, rec)
	assert.NoError(t, err)
}

func TestDeleteAllTrades(t *testing.T) {
	svc := setupTradeService(t)

	_, err := svc.ImportCSV(strings.NewReader(importCSV), 1)
	require.NoError(t, err)

	hasData, err := svc.HasTrades(1)
	require.NoError(t, err)
	assert.True(t, hasData)

	require.NoError(t, svc.DeleteAllTrades(1))

	hasData, err = svc.HasTrades(1)
	require.NoError(t, err)
	assert.False(t, hasData)

	trades, err := svc.ListTrades(1)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestAnalyticsSummary(t *testing.T) {
	svc := setupTradeService(t)

	_, err := svc.ImportCSV(strings.NewReader(importCSV), 1)
	require.NoError(t, err)

	summary, err := svc.AnalyticsSummary(1)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalTrades)
	assert.Equal(t, 1, summary.Wins)
	assert.Equal(t, 1, summary.Losses)
	assert.Equal(t, 0, summary.Breakeven)
	assert.Equal(t, 0.5, summary.WinRate)
	assert.Equal(t, 100.0, summary.NetPnL)
	assert.Equal(t, 0.5, summary.AvgRMultiple)
	assert.Equal(t, 150.0, summary.BestPnL)
	assert.Equal(t, -50.0, summary.WorstPnL)

	require.Contains(t, summary.BySession, "london")
	london := summary.BySession["london"]
	assert.Equal(t, 1, london.Trades)
	assert.Equal(t, 1, london.Wins)
	assert.Equal(t, 150.0, london.NetPnL)
	assert.Equal(t, 1.0, london.WinRate)

	require.Contains(t, summary.BySession, "newyork")
	assert.Equal(t, 0.0, summary.BySession["newyork"].WinRate)
}

func TestAnalyticsSummaryEmptyJournal(t *testing.T) {
	svc := setupTradeService(t)

	summary, err := svc.AnalyticsSummary(1)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTrades)
	assert.Equal(t, 0.0, summary.WinRate)
	assert.Empty(t, summary.BySession)
}

func TestCacheInvalidationOnWrite(t *testing.T) {
	svc := setupTradeService(t)

	_, err := svc.ImportCSV(strings.NewReader(importCSV), 1)
	require.NoError(t, err)

	summary, err := svc.AnalyticsSummary(1)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalTrades)

	// A new trade must be visible through the cached paths.
	date := "2025-06-07"
	instrument := "USDJPY"
	pnl := 20.0
	_, err = svc.CreateTrade(1, models.TradeRecord{Date: &date, Instrument: &instrument, PnL: &pnl})
	require.NoError(t, err)

	summary, err = svc.AnalyticsSummary(1)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalTrades)
}
