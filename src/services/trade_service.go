// backend/src/services/trade_service.go
package services

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/fxjournal/backend/src/database"
	"github.com/username/fxjournal/backend/src/logger"
	"github.com/username/fxjournal/backend/src/models"
	"github.com/username/fxjournal/backend/src/parsers"
	"github.com/username/fxjournal/backend/src/security/validation"
	"github.com/username/fxjournal/backend/src/utils"
)

const (
	ckTradeList        = "res_trade_list_user_%d"
	ckAnalyticsSummary = "agg_analytics_summary_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type tradeServiceImpl struct {
	reportCache *cache.Cache
}

func NewTradeService(reportCache *cache.Cache) TradeService {
	return &tradeServiceImpl{reportCache: reportCache}
}

// ImportCSV decodes an uploaded CSV (journal export or broker statement) and
// inserts each decoded row for the user. Row-level problems, including
// duplicates of already-imported trades, land in the result's Failed list;
// only an unrecognized header aborts the import.
func (s *tradeServiceImpl) ImportCSV(fileReader io.Reader, userID int64) (*models.ImportResult, error) {
	startTime := time.Now()
	logger.L.Info("ImportCSV START", "userID", userID)

	data, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, fmt.Errorf("error reading upload: %w", err)
	}

	rows, failures, err := parsers.DecodeRows(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	result := &models.ImportResult{Failed: failures}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(insertTradeSQL)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		rec := row.Record
		sanitizeRecord(&rec)
		if _, err := execInsertTrade(stmt, userID, rec); err != nil {
			reason := "database rejected row"
			if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
				reason = "duplicate trade"
				logger.L.Debug("Skipping duplicate trade on import", "userID", userID, "row", row.Index)
			} else {
				logger.L.Warn("Failed to insert imported trade", "userID", userID, "row", row.Index, "error", err)
			}
			result.Failed = append(result.Failed, models.RowFailure{Index: row.Index, Reason: reason})
			continue
		}
		result.Created++
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing trades: %w", err)
	}

	s.InvalidateUserCache(userID)
	if result.Failed == nil {
		result.Failed = []models.RowFailure{}
	}

	logger.L.Info("ImportCSV END", "userID", userID, "created", result.Created,
		"failed", len(result.Failed), "duration", time.Since(startTime))
	return result, nil
}

func (s *tradeServiceImpl) ExportCSV(userID int64) (string, error) {
	trades, err := s.ListTrades(userID)
	if err != nil {
		return "", err
	}
	for i := range trades {
		armorRecord(&trades[i])
	}
	return parsers.Encode(trades), nil
}

func (s *tradeServiceImpl) ListTrades(userID int64) ([]models.TradeRecord, error) {
	cacheKey := fmt.Sprintf(ckTradeList, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for trade list", "userID", userID)
		return cached.([]models.TradeRecord), nil
	}

	trades, err := fetchUserTrades(userID)
	if err != nil {
		return nil, err
	}
	s.reportCache.Set(cacheKey, trades, DefaultCacheExpiration)
	return trades, nil
}

func (s *tradeServiceImpl) CreateTrade(userID int64, rec models.TradeRecord) (*models.TradeRecord, error) {
	sanitizeRecord(&rec)

	stmt, err := database.DB.Prepare(insertTradeSQL)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	id, err := execInsertTrade(stmt, userID, rec)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
			return nil, ErrDuplicateTrade
		}
		return nil, fmt.Errorf("error inserting trade: %w", err)
	}

	idStr := strconv.FormatInt(id, 10)
	rec.ID = &idStr
	s.InvalidateUserCache(userID)
	return &rec, nil
}

func (s *tradeServiceImpl) DeleteAllTrades(userID int64) error {
	_, err := database.DB.Exec(`DELETE FROM trades WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("error deleting trades for userID %d: %w", userID, err)
	}
	s.InvalidateUserCache(userID)
	return nil
}

func (s *tradeServiceImpl) HasTrades(userID int64) (bool, error) {
	var count int
	err := database.DB.QueryRow(`SELECT COUNT(1) FROM trades WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AnalyticsSummary aggregates the user's journal. Recomputed on cache miss,
// cached until the next write.
func (s *tradeServiceImpl) AnalyticsSummary(userID int64) (*models.AnalyticsSummary, error) {
	cacheKey := fmt.Sprintf(ckAnalyticsSummary, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for analytics summary", "userID", userID)
		return cached.(*models.AnalyticsSummary), nil
	}

	trades, err := s.ListTrades(userID)
	if err != nil {
		return nil, err
	}

	summary := computeSummary(trades)
	s.reportCache.Set(cacheKey, summary, DefaultCacheExpiration)
	return summary, nil
}

func (s *tradeServiceImpl) InvalidateUserCache(userID int64) {
	for _, key := range []string{
		fmt.Sprintf(ckTradeList, userID),
		fmt.Sprintf(ckAnalyticsSummary, userID),
	} {
		s.reportCache.Delete(key)
	}
	logger.L.Debug("Invalidated trade caches for user", "userID", userID)
}

func computeSummary(trades []models.TradeRecord) *models.AnalyticsSummary {
	summary := &models.AnalyticsSummary{
		BySession: make(map[string]models.SessionStats),
	}
	var rSum float64
	var rCount int
	for _, t := range trades {
		summary.TotalTrades++
		pnl := 0.0
		if t.PnL != nil {
			pnl = *t.PnL
		}
		summary.NetPnL += pnl
		switch {
		case pnl > 0:
			summary.Wins++
		case pnl < 0:
			summary.Losses++
		default:
			summary.Breakeven++
		}
		if pnl > summary.BestPnL {
			summary.BestPnL = pnl
		}
		if pnl < summary.WorstPnL {
			summary.WorstPnL = pnl
		}
		if t.RMultiple != nil {
			rSum += *t.RMultiple
			rCount++
		}
		if t.Session != nil {
			stats := summary.BySession[*t.Session]
			stats.Trades++
			stats.NetPnL += pnl
			if pnl > 0 {
				stats.Wins++
			}
			if stats.Trades > 0 {
				stats.WinRate = utils.RoundFloat(float64(stats.Wins)/float64(stats.Trades), 4)
			}
			summary.BySession[*t.Session] = stats
		}
	}
	if summary.TotalTrades > 0 {
		summary.WinRate = utils.RoundFloat(float64(summary.Wins)/float64(summary.TotalTrades), 4)
	}
	if rCount > 0 {
		summary.AvgRMultiple = utils.RoundFloat(rSum/float64(rCount), 4)
	}
	summary.NetPnL = utils.RoundFloat(summary.NetPnL, 2)
	return summary
}

// sanitizeRecord cleans the free-text fields of an incoming record before it
// is stored; imported files are untrusted input.
func sanitizeRecord(rec *models.TradeRecord) {
	for _, field := range []**string{&rec.Notes, &rec.Lessons, &rec.Emotions, &rec.SetupType, &rec.Outcome} {
		if *field != nil {
			clean := validation.SanitizeFreeText(**field)
			if clean == "" {
				*field = nil
			} else {
				*field = &clean
			}
		}
	}
	for i, tag := range rec.Tags {
		rec.Tags[i] = validation.SanitizeFreeText(tag)
	}
}

// armorRecord guards exported free-text cells against spreadsheet formula
// injection.
func armorRecord(rec *models.TradeRecord) {
	for _, field := range []**string{&rec.Notes, &rec.Lessons, &rec.Emotions} {
		if *field != nil {
			armored := validation.SanitizeForFormulaInjection(**field)
			*field = &armored
		}
	}
}

const insertTradeSQL = `INSERT INTO trades (
	user_id, date, entry_time, exit_time, instrument, direction, timeframe,
	session, killzone, weekly_bias, daily_bias, draw_on_liquidity, is_premium_discount,
	setup_type, pd_arrays, confluences,
	entry_price, stop_loss, take_profit, exit_price, lot_size, risk_per_trade,
	pnl, rr, r_multiple, outcome,
	followed_htf_bias, correct_session, valid_pd_array, risk_respected, no_early_exit,
	mae, mfe, htf_level_used, ltf_confirmation_quality,
	emotions, lessons, notes, tags, hash_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func execInsertTrade(stmt *sql.Stmt, userID int64, rec models.TradeRecord) (int64, error) {
	res, err := stmt.Exec(
		userID, rec.Date, rec.EntryTime, rec.ExitTime, rec.Instrument, rec.Direction, rec.Timeframe,
		rec.Session, rec.Killzone, rec.WeeklyBias, rec.DailyBias, rec.DrawOnLiquidity, rec.IsPremiumDiscount,
		rec.SetupType, joinList(rec.PDArrays), joinList(rec.Confluences),
		rec.EntryPrice, rec.StopLoss, rec.TakeProfit, rec.ExitPrice, rec.LotSize, rec.RiskPerTrade,
		rec.PnL, rec.RR, rec.RMultiple, rec.Outcome,
		rec.FollowedHTFBias, rec.CorrectSession, rec.ValidPDArray, rec.RiskRespected, rec.NoEarlyExit,
		rec.MAE, rec.MFE, rec.HTFLevelUsed, rec.LTFConfirmationQuality,
		rec.Emotions, rec.Lessons, rec.Notes, joinList(rec.Tags), hashTrade(rec),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func fetchUserTrades(userID int64) ([]models.TradeRecord, error) {
	logger.L.Debug("Fetching trades from DB", "userID", userID)
	rows, err := database.DB.Query(`SELECT
		id, date, entry_time, exit_time, instrument, direction, timeframe,
		session, killzone, weekly_bias, daily_bias, draw_on_liquidity, is_premium_discount,
		setup_type, pd_arrays, confluences,
		entry_price, stop_loss, take_profit, exit_price, lot_size, risk_per_trade,
		pnl, rr, r_multiple, outcome,
		followed_htf_bias, correct_session, valid_pd_array, risk_respected, no_early_exit,
		mae, mfe, htf_level_used, ltf_confirmation_quality,
		emotions, lessons, notes, tags
	FROM trades WHERE user_id = ? ORDER BY date ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying trades for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var trades []models.TradeRecord
	for rows.Next() {
		var rec models.TradeRecord
		var id int64
		var pdArrays, confluences, tags sql.NullString
		scanErr := rows.Scan(
			&id, &rec.Date, &rec.EntryTime, &rec.ExitTime, &rec.Instrument, &rec.Direction, &rec.Timeframe,
			&rec.Session, &rec.Killzone, &rec.WeeklyBias, &rec.DailyBias, &rec.DrawOnLiquidity, &rec.IsPremiumDiscount,
			&rec.SetupType, &pdArrays, &confluences,
			&rec.EntryPrice, &rec.StopLoss, &rec.TakeProfit, &rec.ExitPrice, &rec.LotSize, &rec.RiskPerTrade,
			&rec.PnL, &rec.RR, &rec.RMultiple, &rec.Outcome,
			&rec.FollowedHTFBias, &rec.CorrectSession, &rec.ValidPDArray, &rec.RiskRespected, &rec.NoEarlyExit,
			&rec.MAE, &rec.MFE, &rec.HTFLevelUsed, &rec.LTFConfirmationQuality,
			&rec.Emotions, &rec.Lessons, &rec.Notes, &tags,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("error scanning trade row for userID %d: %w", userID, scanErr)
		}
		idStr := strconv.FormatInt(id, 10)
		rec.ID = &idStr
		rec.PDArrays = splitList(pdArrays.String)
		rec.Confluences = splitList(confluences.String)
		rec.Tags = splitList(tags.String)
		trades = append(trades, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over trade rows for userID %d: %w", userID, err)
	}
	return trades, nil
}

func joinList(items []string) *string {
	if len(items) == 0 {
		return nil
	}
	joined := strings.Join(items, ";")
	return &joined
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(joined, ";") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// hashTrade fingerprints the fields that identify a trade so re-uploading
// the same statement does not duplicate the journal.
func hashTrade(rec models.TradeRecord) string {
	var b strings.Builder
	for _, v := range []*string{rec.Date, rec.EntryTime, rec.ExitTime, rec.Instrument, rec.Direction, rec.Notes} {
		if v != nil {
			b.WriteString(*v)
		}
		b.WriteByte('|')
	}
	for _, v := range []*float64{rec.EntryPrice, rec.ExitPrice, rec.LotSize, rec.PnL} {
		if v != nil {
			b.WriteString(strconv.FormatFloat(*v, 'f', -1, 64))
		}
		b.WriteByte('|')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
