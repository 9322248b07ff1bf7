// backend/src/parsers/decode.go
package parsers

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/username/fxjournal/backend/src/models"
)

// ErrUnknownFormat is the single structural failure of the decoder: the
// header row matches neither the journal export schema nor the broker
// statement schema. No rows are processed when it is returned.
var ErrUnknownFormat = errors.New("unrecognized CSV header: expected a journal export or a broker statement")

// DecodedRow is one successfully mapped data row. Index is the spreadsheet
// row the record came from (data row N, zero-based, is row N+2 once the
// header row is counted), so callers can report downstream rejections
// against the file the user uploaded.
type DecodedRow struct {
	Index  int
	Record models.TradeRecord
}

// Decode parses CSV text into trade records. The schema is detected from the
// header row; data rows are mapped best effort, with rows that carry no
// usable data reported in failures. Malformed cells degrade to absent fields
// and never abort the decode.
func Decode(csvText string) ([]models.TradeRecord, []models.RowFailure, error) {
	rows, failures, err := DecodeRows(csvText)
	if err != nil {
		return nil, nil, err
	}
	records := make([]models.TradeRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record)
	}
	return records, failures, nil
}

// DecodeRows is Decode keeping each record's source row index.
func DecodeRows(csvText string) ([]DecodedRow, []models.RowFailure, error) {
	rows := tokenize(csvText)
	if len(rows) == 0 {
		return nil, nil, ErrUnknownFormat
	}

	header := headerIndex(rows[0])
	data := rows[1:]

	switch {
	case hasColumns(header, "date", "direction", "entryPrice"):
		records, failures := decodeNative(header, data)
		return records, failures, nil
	case hasColumns(header, "open_time", "open_price", "side"):
		records, failures := decodeBroker(header, data)
		return records, failures, nil
	default:
		return nil, nil, ErrUnknownFormat
	}
}

// tokenize reads every row it can. LazyQuotes keeps unbalanced quotes from
// failing the whole file; a row the reader cannot recover is dropped and the
// scan continues to end of input.
func tokenize(csvText string) [][]string {
	r := csv.NewReader(strings.NewReader(csvText))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			return rows
		}
		if err != nil {
			continue
		}
		rows = append(rows, record)
	}
}

func headerIndex(headerRow []string) map[string]int {
	index := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name != "" {
			index[name] = i
		}
	}
	return index
}

func hasColumns(header map[string]int, names ...string) bool {
	for _, name := range names {
		if _, ok := header[name]; !ok {
			return false
		}
	}
	return true
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cellValue returns the named column of a row, tolerating short rows.
func cellValue(header map[string]int, row []string, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func decodeNative(header map[string]int, data [][]string) ([]DecodedRow, []models.RowFailure) {
	var (
		records  []DecodedRow
		failures []models.RowFailure
	)
	for i, row := range data {
		if isBlankRow(row) {
			continue
		}
		cell := func(name string) string { return cellValue(header, row, name) }

		rec := models.TradeRecord{
			ID:        coerceText(cell("id")),
			Date:      coerceText(cell("date")),
			EntryTime: coerceText(cell("entryTime")),
			ExitTime:  coerceText(cell("exitTime")),

			Instrument: coerceText(cell("instrument")),
			Direction:  coerceDirection(cell("direction")),
			Timeframe:  coerceText(cell("timeframe")),

			Session:           coerceText(cell("session")),
			Killzone:          coerceText(cell("killzone")),
			WeeklyBias:        coerceText(cell("weeklyBias")),
			DailyBias:         coerceText(cell("dailyBias")),
			DrawOnLiquidity:   coerceText(cell("drawOnLiquidity")),
			IsPremiumDiscount: coerceBool(cell("isPremiumDiscount")),

			SetupType:   coerceText(cell("setupType")),
			PDArrays:    coerceList(cell("pdArrays")),
			Confluences: coerceList(cell("confluences")),

			EntryPrice:   coerceNumber(cell("entryPrice")),
			StopLoss:     coerceNumber(cell("stopLoss")),
			TakeProfit:   coerceNumber(cell("takeProfit")),
			ExitPrice:    coerceNumber(cell("exitPrice")),
			LotSize:      coerceNumber(cell("lotSize")),
			RiskPerTrade: coerceNumber(cell("riskPerTrade")),

			PnL:       coerceNumber(cell("pnl")),
			RR:        coerceNumber(cell("rr")),
			RMultiple: coerceNumber(cell("rMultiple")),
			Outcome:   coerceText(cell("outcome")),

			FollowedHTFBias: coerceBool(cell("followedHTFBias")),
			CorrectSession:  coerceBool(cell("correctSession")),
			ValidPDArray:    coerceBool(cell("validPDArray")),
			RiskRespected:   coerceBool(cell("riskRespected")),
			NoEarlyExit:     coerceBool(cell("noEarlyExit")),

			MAE:                    coerceNumber(cell("mae")),
			MFE:                    coerceNumber(cell("mfe")),
			HTFLevelUsed:           coerceText(cell("htfLevelUsed")),
			LTFConfirmationQuality: coerceText(cell("ltfConfirmationQuality")),

			Emotions: coerceText(cell("emotions")),
			Lessons:  coerceText(cell("lessons")),
			Notes:    coerceText(cell("notes")),
			Tags:     coerceList(cell("tags")),
		}

		if rec.Instrument == nil && rec.Date == nil {
			failures = append(failures, models.RowFailure{Index: i + 2, Reason: "row has neither an instrument nor a date"})
			continue
		}
		records = append(records, DecodedRow{Index: i + 2, Record: rec})
	}
	return records, failures
}

func decodeBroker(header map[string]int, data [][]string) ([]DecodedRow, []models.RowFailure) {
	var (
		records  []DecodedRow
		failures []models.RowFailure
	)
	for i, row := range data {
		if isBlankRow(row) {
			continue
		}
		cell := func(name string) string { return cellValue(header, row, name) }

		rec := models.TradeRecord{
			Instrument: coerceText(cell("instrument")),
			Direction:  coerceSide(cell("side")),

			EntryPrice: coerceNumber(cell("open_price")),
			ExitPrice:  coerceNumber(cell("close_price")),
			StopLoss:   coerceNumber(cell("stop_loss")),
			TakeProfit: coerceNumber(cell("take_profit")),
			LotSize:    coerceNumber(cell("lot_size")),
			PnL:        coerceNumber(cell("pnl")),
		}

		if open := parseBrokerTime(cell("open_time")); open != nil {
			date := open.Format("2006-01-02")
			entry := open.Format(brokerISOLayout)
			rec.Date = &date
			rec.EntryTime = &entry
		}
		if closed := parseBrokerTime(cell("close_time")); closed != nil {
			exit := closed.Format(brokerISOLayout)
			rec.ExitTime = &exit
		}

		rec.Notes = mergeFeesIntoNotes(cell("notes"), cell("fees"))

		if rec.Instrument == nil && rec.Date == nil {
			failures = append(failures, models.RowFailure{Index: i + 2, Reason: "row has neither an instrument nor an open time"})
			continue
		}
		records = append(records, DecodedRow{Index: i + 2, Record: rec})
	}
	return records, failures
}

// mergeFeesIntoNotes folds the broker fees column into the free-text notes.
// The journal schema has no fees field, so the merge is lossy and one way.
// The raw cell text is kept so "2.50" stays "2.50".
func mergeFeesIntoNotes(notesCell, feesCell string) *string {
	notes := coerceText(notesCell)
	fees := strings.TrimSpace(feesCell)
	if fees == "" || coerceNumber(feesCell) == nil {
		return notes
	}
	var merged string
	if notes != nil {
		merged = *notes + " | Fees: " + fees
	} else {
		merged = "Fees: " + fees
	}
	return &merged
}
