package parsers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fxjournal/backend/src/models"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool      { return &b }

func TestDecodeUnknownHeader(t *testing.T) {
	_, _, err := Decode("foo,bar,baz\n1,2,3\n")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, _, err = Decode("")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	rec := models.TradeRecord{
		ID:                strPtr("7"),
		Date:              strPtr("2025-06-05"),
		EntryTime:         strPtr("2025-06-05T14:30:00Z"),
		Instrument:        strPtr("EURUSD"),
		Direction:         strPtr("long"),
		Timeframe:         strPtr("m5"),
		Session:           strPtr("london"),
		Killzone:          strPtr("london-open"),
		IsPremiumDiscount: boolPtr(true),
		SetupType:         strPtr("2022 model"),
		PDArrays:          []string{"FVG", "OB"},
		EntryPrice:        numPtr(1.0850),
		StopLoss:          numPtr(1.0830),
		TakeProfit:        numPtr(1.0910),
		ExitPrice:         numPtr(1.0910),
		LotSize:           numPtr(0.5),
		PnL:               numPtr(300),
		RR:                numPtr(3),
		Outcome:           strPtr("win"),
		FollowedHTFBias:   boolPtr(true),
		NoEarlyExit:       boolPtr(false),
		Notes:             strPtr("clean sweep of asia low"),
		Tags:              []string{"a+", "news-day"},
	}

	records, failures, err := Decode(Encode([]models.TradeRecord{rec}))
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
}

func TestEncodeQuoting(t *testing.T) {
	rec := models.TradeRecord{
		Date:       strPtr("2025-06-05"),
		Instrument: strPtr("EURUSD"),
		Notes:      strPtr(`stopped out, then "re-entered"` + "\nsecond line"),
	}

	out := Encode([]models.TradeRecord{rec})
	assert.Contains(t, out, `"stopped out, then ""re-entered""`+"\nsecond line\"")
	// Plain fields stay unquoted.
	assert.Contains(t, out, "2025-06-05,,")

	// The quoted text survives a decode intact.
	records, _, err := Decode(out)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Notes)
	assert.Equal(t, *rec.Notes, *records[0].Notes)
}

func TestEncodeNumberFormatting(t *testing.T) {
	rec := models.TradeRecord{
		Date:       strPtr("2025-06-05"),
		EntryPrice: numPtr(1.5000),
		PnL:        numPtr(-120.25),
	}
	out := Encode([]models.TradeRecord{rec})
	assert.Contains(t, out, ",1.5,")
	assert.Contains(t, out, ",-120.25,")
}

func TestDecodeNativeFailureIndexing(t *testing.T) {
	csvText := strings.Join([]string{
		"date,direction,entryPrice,instrument,pnl",
		"2025-06-05,long,1.085,EURUSD,150", // row 2
		" , , , , ",                        // row 3: blank, silently skipped
		",short,1.2,,", // row 4: no instrument, no date
		"2025-06-06,short,1.25,GBPUSD,-80", // row 5
	}, "\n")

	rows, failures, err := DecodeRows(csvText)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Index)
	assert.Equal(t, 5, rows[1].Index)

	require.Len(t, failures, 1)
	assert.Equal(t, 4, failures[0].Index)
	assert.Equal(t, "row has neither an instrument nor a date", failures[0].Reason)
}

func TestDecodeNativeMalformedCellsDegrade(t *testing.T) {
	csvText := "date,direction,entryPrice,instrument,pnl,followedHTFBias\n" +
		"2025-06-05,sideways,not-a-number,EURUSD,$1,maybe\n"

	records, failures, err := Decode(csvText)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Nil(t, rec.Direction)      // unknown vocabulary
	assert.Nil(t, rec.EntryPrice)     // unparseable number
	assert.Nil(t, rec.FollowedHTFBias)
	require.NotNil(t, rec.PnL)
	assert.Equal(t, 1.0, *rec.PnL)
}

func TestDecodeBrokerStatement(t *testing.T) {
	csvText := "open_time,open_price,close_time,close_price,side,instrument,lot_size,pnl,fees,notes\n" +
		`"6/5/2025, 14:30:00",1.0850,"6/5/2025, 15:45",1.0910,Buy,EURUSD,0.5,"$300.00",2.50,entered early` + "\n"

	records, failures, err := Decode(csvText)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, records, 1)

	rec := records[0]
	require.NotNil(t, rec.Date)
	assert.Equal(t, "2025-06-05", *rec.Date)
	require.NotNil(t, rec.EntryTime)
	assert.Equal(t, "2025-06-05T14:30:00Z", *rec.EntryTime)
	require.NotNil(t, rec.ExitTime)
	assert.Equal(t, "2025-06-05T15:45:00Z", *rec.ExitTime)
	require.NotNil(t, rec.Direction)
	assert.Equal(t, "long", *rec.Direction)
	require.NotNil(t, rec.EntryPrice)
	assert.Equal(t, 1.0850, *rec.EntryPrice)
	require.NotNil(t, rec.PnL)
	assert.Equal(t, 300.0, *rec.PnL)
	require.NotNil(t, rec.Notes)
	assert.Equal(t, "entered early | Fees: 2.50", *rec.Notes)
}

func TestDecodeBrokerSideMapping(t *testing.T) {
	tests := []struct {
		side string
		want *string
	}{
		{"Buy", strPtr("long")},
		{"SELL", strPtr("short")},
		{"long", strPtr("long")},
		{"short", strPtr("short")},
		{"hold", nil},
	}
	for _, tt := range tests {
		t.Run(tt.side, func(t *testing.T) {
			csvText := "open_time,open_price,side,instrument\n" +
				"2025-06-05 10:00:00,1.1," + tt.side + ",EURUSD\n"
			records, _, err := Decode(csvText)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].Direction)
		})
	}
}

func TestDecodeBrokerRowWithoutInstrumentOrOpenTime(t *testing.T) {
	csvText := "open_time,open_price,side,instrument\n" +
		"garbage-time,1.1,buy,\n"

	records, failures, err := Decode(csvText)
	require.NoError(t, err)
	assert.Empty(t, records)
	require.Len(t, failures, 1)
	assert.Equal(t, 2, failures[0].Index)
	assert.Equal(t, "row has neither an instrument nor an open time", failures[0].Reason)
}

func TestMergeFeesIntoNotes(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		fees  string
		want  *string
	}{
		{"both present", "entered early", "2.50", strPtr("entered early | Fees: 2.50")},
		{"fees only", "", "1.25", strPtr("Fees: 1.25")},
		{"notes only", "held too long", "", strPtr("held too long")},
		{"non numeric fees ignored", "ok trade", "n/a", strPtr("ok trade")},
		{"nothing", "", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeFeesIntoNotes(tt.notes, tt.fees))
		})
	}
}

func TestParseBrokerTime(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want *time.Time
	}{
		{"statement format", "6/5/2025, 14:30:00", timePtr(time.Date(2025, 6, 5, 14, 30, 0, 0, time.UTC))},
		{"statement no seconds", "12/31/2025, 23:59", timePtr(time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC))},
		{"iso with zone", "2025-06-05T14:30:00Z", timePtr(time.Date(2025, 6, 5, 14, 30, 0, 0, time.UTC))},
		{"space separated", "2025-06-05 14:30:00", timePtr(time.Date(2025, 6, 5, 14, 30, 0, 0, time.UTC))},
		{"date only", "2025-06-05", timePtr(time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC))},
		{"empty", "", nil},
		{"garbage", "yesterday at noon", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseBrokerTime(tt.cell))
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestDecodeToleratesBOMAndUnbalancedQuotes(t *testing.T) {
	csvText := "\ufeffdate,direction,entryPrice,instrument\n" +
		"2025-06-05,long,1.085,EURUSD\n"

	records, failures, err := Decode(csvText)
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Date)
}
