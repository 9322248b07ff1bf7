package models

// TradeRecord is the flat journal entry the CSV codec works on. Every
// optional field is a pointer so that "absent" survives a round trip through
// the codec and the database; an empty CSV cell decodes to nil, never to a
// zero value.
type TradeRecord struct {
	ID        *string `json:"id,omitempty"`
	Date      *string `json:"date,omitempty"`
	EntryTime *string `json:"entryTime,omitempty"`
	ExitTime  *string `json:"exitTime,omitempty"`

	Instrument *string `json:"instrument,omitempty"`
	Direction  *string `json:"direction,omitempty"` // "long" or "short"
	Timeframe  *string `json:"timeframe,omitempty"`

	Session           *string `json:"session,omitempty"`
	Killzone          *string `json:"killzone,omitempty"`
	WeeklyBias        *string `json:"weeklyBias,omitempty"`
	DailyBias         *string `json:"dailyBias,omitempty"`
	DrawOnLiquidity   *string `json:"drawOnLiquidity,omitempty"`
	IsPremiumDiscount *bool   `json:"isPremiumDiscount,omitempty"`

	SetupType   *string  `json:"setupType,omitempty"`
	PDArrays    []string `json:"pdArrays,omitempty"`
	Confluences []string `json:"confluences,omitempty"`

	EntryPrice   *float64 `json:"entryPrice,omitempty"`
	StopLoss     *float64 `json:"stopLoss,omitempty"`
	TakeProfit   *float64 `json:"takeProfit,omitempty"`
	ExitPrice    *float64 `json:"exitPrice,omitempty"`
	LotSize      *float64 `json:"lotSize,omitempty"`
	RiskPerTrade *float64 `json:"riskPerTrade,omitempty"`

	PnL       *float64 `json:"pnl,omitempty"`
	RR        *float64 `json:"rr,omitempty"`
	RMultiple *float64 `json:"rMultiple,omitempty"`
	Outcome   *string  `json:"outcome,omitempty"`

	FollowedHTFBias *bool `json:"followedHTFBias,omitempty"`
	CorrectSession  *bool `json:"correctSession,omitempty"`
	ValidPDArray    *bool `json:"validPDArray,omitempty"`
	RiskRespected   *bool `json:"riskRespected,omitempty"`
	NoEarlyExit     *bool `json:"noEarlyExit,omitempty"`

	MAE                    *float64 `json:"mae,omitempty"`
	MFE                    *float64 `json:"mfe,omitempty"`
	HTFLevelUsed           *string  `json:"htfLevelUsed,omitempty"`
	LTFConfirmationQuality *string  `json:"ltfConfirmationQuality,omitempty"`

	Emotions *string  `json:"emotions,omitempty"`
	Lessons  *string  `json:"lessons,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// RowFailure reports one CSV data row that could not be imported. Index is
// the spreadsheet row number (data row N, zero-based, lands on row N+2 once
// the header row is counted).
type RowFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult is the response body of POST /api/trades/import.
type ImportResult struct {
	Created int          `json:"created"`
	Failed  []RowFailure `json:"failed"`
}

// SessionStats is the per-session slice of the analytics summary.
type SessionStats struct {
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	NetPnL  float64 `json:"netPnl"`
	WinRate float64 `json:"winRate"`
}

// AnalyticsSummary aggregates a user's journal for the dashboard.
type AnalyticsSummary struct {
	TotalTrades  int                     `json:"totalTrades"`
	Wins         int                     `json:"wins"`
	Losses       int                     `json:"losses"`
	Breakeven    int                     `json:"breakeven"`
	WinRate      float64                 `json:"winRate"`
	NetPnL       float64                 `json:"netPnl"`
	AvgRMultiple float64                 `json:"avgRMultiple"`
	BestPnL      float64                 `json:"bestPnl"`
	WorstPnL     float64                 `json:"worstPnl"`
	BySession    map[string]SessionStats `json:"bySession"`
}
