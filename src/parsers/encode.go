// backend/src/parsers/encode.go
package parsers

import (
	"strconv"
	"strings"

	"github.com/username/fxjournal/backend/src/models"
)

// NativeHeader is the fixed column order of the journal's own export format.
// Decode detects this schema by looking for the date, direction and
// entryPrice columns.
var NativeHeader = []string{
	"id", "date", "entryTime", "exitTime",
	"instrument", "direction", "timeframe",
	"session", "killzone", "weeklyBias", "dailyBias", "drawOnLiquidity", "isPremiumDiscount",
	"setupType", "pdArrays", "confluences",
	"entryPrice", "stopLoss", "takeProfit", "exitPrice", "lotSize", "riskPerTrade",
	"pnl", "rr", "rMultiple", "outcome",
	"followedHTFBias", "correctSession", "validPDArray", "riskRespected", "noEarlyExit",
	"mae", "mfe", "htfLevelUsed", "ltfConfirmationQuality",
	"emotions", "lessons", "notes", "tags",
}

// Encode renders records as native-format CSV: the fixed header row followed
// by one row per record. Absent fields become empty cells.
func Encode(rows []models.TradeRecord) string {
	var b strings.Builder
	writeRow(&b, NativeHeader)
	for _, r := range rows {
		writeRow(&b, encodeRecord(r))
	}
	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeField(f))
	}
	b.WriteByte('\n')
}

// escapeField quotes a field only when it has to: an embedded comma, quote
// or line break. Embedded quotes are doubled.
func escapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func encodeRecord(r models.TradeRecord) []string {
	return []string{
		fmtText(r.ID), fmtText(r.Date), fmtText(r.EntryTime), fmtText(r.ExitTime),
		fmtText(r.Instrument), fmtText(r.Direction), fmtText(r.Timeframe),
		fmtText(r.Session), fmtText(r.Killzone), fmtText(r.WeeklyBias), fmtText(r.DailyBias),
		fmtText(r.DrawOnLiquidity), fmtBool(r.IsPremiumDiscount),
		fmtText(r.SetupType), fmtList(r.PDArrays), fmtList(r.Confluences),
		fmtNumber(r.EntryPrice), fmtNumber(r.StopLoss), fmtNumber(r.TakeProfit),
		fmtNumber(r.ExitPrice), fmtNumber(r.LotSize), fmtNumber(r.RiskPerTrade),
		fmtNumber(r.PnL), fmtNumber(r.RR), fmtNumber(r.RMultiple), fmtText(r.Outcome),
		fmtBool(r.FollowedHTFBias), fmtBool(r.CorrectSession), fmtBool(r.ValidPDArray),
		fmtBool(r.RiskRespected), fmtBool(r.NoEarlyExit),
		fmtNumber(r.MAE), fmtNumber(r.MFE), fmtText(r.HTFLevelUsed), fmtText(r.LTFConfirmationQuality),
		fmtText(r.Emotions), fmtText(r.Lessons), fmtText(r.Notes), fmtList(r.Tags),
	}
}

func fmtText(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func fmtBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func fmtNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func fmtList(v []string) string {
	return strings.Join(v, ";")
}
