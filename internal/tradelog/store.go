package tradelog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/gw/prediction-pnl/internal/trade"
)

// ErrDuplicateUpload is returned when a source with the same hash was
// already stored.
var ErrDuplicateUpload = errors.New("file already uploaded")

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000"

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	// WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Run schema migration
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// HashBytes returns the hex sha256 used to detect re-uploads.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SaveUpload records u and inserts the batch's trades in one transaction.
// u.ID, u.CreatedTime and the counts are filled in. Trades already present
// (same slug, timestamp, price, shares, type and side) are ignored; the
// number actually inserted is returned.
func (s *Store) SaveUpload(ctx context.Context, u *Upload, b trade.Batch) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT upload_id FROM uploads WHERE file_hash = ?`, u.FileHash).Scan(&existing)
	switch {
	case err == nil:
		return 0, fmt.Errorf("%w: %s (upload %s)", ErrDuplicateUpload, u.Filename, existing)
	case !errors.Is(err, sql.ErrNoRows):
		return 0, err
	}

	u.ID = uuid.NewString()
	u.CreatedTime = time.Now().UTC()
	u.TradeCount = len(b.Trades)
	u.SkippedCount = b.Skipped()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO uploads (upload_id, filename, file_type, file_hash, trade_count, skipped_count, created_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Filename, u.FileType, u.FileHash, u.TradeCount, u.SkippedCount,
		u.CreatedTime.Format(timeLayout),
	); err != nil {
		return 0, fmt.Errorf("inserting upload: %w", err)
	}

	inserted, err := insertTrades(ctx, tx, u.ID, b.Trades)
	if err != nil {
		return 0, err
	}
	return inserted, tx.Commit()
}

func insertTrades(ctx context.Context, tx *sql.Tx, uploadID string, trades []trade.Trade) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO trades (upload_id, market, market_slug, timestamp, price, shares,
			cost, type, action, side, pnl, tx_hash, resolution)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range trades {
		var txHash sql.NullString
		if t.TxHash != nil {
			txHash = sql.NullString{String: *t.TxHash, Valid: true}
		}
		res, err := stmt.ExecContext(ctx,
			uploadID, t.Market, t.MarketSlug, t.Timestamp.Format(timeLayout),
			t.Price, t.Shares, t.Cost, t.Type, t.Action.String(), string(t.Side),
			t.PnL, txHash, string(t.Resolution),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting trade: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}
	return inserted, nil
}

const tradeColumns = `market, market_slug, timestamp, price, shares, cost, type, action, side, pnl, tx_hash, resolution`

// Trades returns stored trades ordered by timestamp, all markets when slug
// is empty.
func (s *Store) Trades(ctx context.Context, slug string) ([]trade.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades`
	var args []any
	if slug != "" {
		query += ` WHERE market_slug = ?`
		args = append(args, slug)
	}
	query += ` ORDER BY timestamp, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTrades(rows)
}

// RecentTrades returns the latest limit trades, newest first.
func (s *Store) RecentTrades(ctx context.Context, limit int) ([]trade.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trades ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanTrades(rows)
}

func scanTrades(rows *sql.Rows) ([]trade.Trade, error) {
	defer rows.Close()

	var results []trade.Trade
	for rows.Next() {
		var (
			t          trade.Trade
			ts, action string
			side, res  string
			txHash     sql.NullString
		)
		if err := rows.Scan(&t.Market, &t.MarketSlug, &ts, &t.Price, &t.Shares, &t.Cost,
			&t.Type, &action, &side, &t.PnL, &txHash, &res); err != nil {
			return nil, err
		}
		t.Timestamp = parseTime(ts)
		t.Action = trade.Buy
		if action == trade.Sell.String() {
			t.Action = trade.Sell
		}
		t.Side = trade.Side(side)
		t.Resolution = trade.Side(res)
		if txHash.Valid {
			h := txHash.String
			t.TxHash = &h
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// MarketBreakdown returns one row per market from v_market_pnl, largest
// absolute PnL first.
func (s *Store) MarketBreakdown(ctx context.Context) ([]MarketPnL, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT market_slug, market, trades, volume, pnl, wins, losses, exposure, cost_basis,
			first_trade, last_trade
		FROM v_market_pnl
		ORDER BY ABS(pnl) DESC, market_slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MarketPnL
	for rows.Next() {
		var (
			m           MarketPnL
			first, last string
		)
		if err := rows.Scan(&m.Slug, &m.Market, &m.Trades, &m.Volume, &m.PnL, &m.Wins, &m.Losses,
			&m.Exposure, &m.CostBasis, &first, &last); err != nil {
			return nil, err
		}
		m.FirstTrade = parseTime(first)
		m.LastTrade = parseTime(last)
		results = append(results, m)
	}
	return results, rows.Err()
}

// Uploads lists every upload, newest first.
func (s *Store) Uploads(ctx context.Context) ([]Upload, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT upload_id, filename, file_type, file_hash, trade_count, skipped_count, created_time
		FROM uploads ORDER BY created_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Upload
	for rows.Next() {
		var (
			u       Upload
			created string
		)
		if err := rows.Scan(&u.ID, &u.Filename, &u.FileType, &u.FileHash,
			&u.TradeCount, &u.SkippedCount, &created); err != nil {
			return nil, err
		}
		u.CreatedTime = parseTime(created)
		results = append(results, u)
	}
	return results, rows.Err()
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
