package tradelog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gw/prediction-pnl/internal/trade"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "tradelog.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

const exportJSON = `[
	{"market": "Rain?", "market_slug": "rain", "timestamp": "2024-01-01T09:00:00", "price": 40, "shares": 10, "cost": 4, "type": "Buy", "side": "YES", "pnl": 0, "tx_hash": "0x01"},
	{"market": "Rain?", "market_slug": "rain", "timestamp": "2024-01-02T09:00:00", "price": 70, "shares": 10, "cost": 7, "type": "Sell", "side": "YES", "pnl": 3, "resolution": "YES"},
	{"market": "BTC?", "market_slug": "btc", "timestamp": "2024-01-03T09:00:00", "price": 30, "shares": 5, "cost": 1.5, "type": "Buy", "side": "NO", "pnl": -1.5},
	{"market": "BTC?", "side": "SIDEWAYS"}
]`

func TestImportFile(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	path := writeTempFile(t, "trades.json", exportJSON)

	res, err := ImportFile(ctx, s, path)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if res.Records != 4 || res.Inserted != 3 || len(res.Failures) != 1 {
		t.Errorf("result = %+v, want 4 records, 3 inserted, 1 failure", res)
	}
	if res.Upload.ID == "" || res.Upload.FileType != "json" || res.Upload.SkippedCount != 1 {
		t.Errorf("upload = %+v", res.Upload)
	}

	if _, err := ImportFile(ctx, s, path); !errors.Is(err, ErrDuplicateUpload) {
		t.Errorf("second import error = %v, want ErrDuplicateUpload", err)
	}

	uploads, err := s.Uploads(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(uploads) != 1 || uploads[0].Filename != "trades.json" || uploads[0].TradeCount != 3 {
		t.Errorf("uploads = %+v", uploads)
	}
}

func TestImportFileDeduplicatesTrades(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := ImportFile(ctx, s, writeTempFile(t, "a.json", exportJSON)); err != nil {
		t.Fatal(err)
	}
	overlap := writeTempFile(t, "b.csv", "market,market_slug,timestamp,price,shares,cost,type,side,pnl\n"+
		"Rain?,rain,2024-01-01T09:00:00,40,10,4,Buy,YES,0\n"+
		"Rain?,rain,2024-01-05T09:00:00,55,2,1.1,Buy,NO,0\n")

	res, err := ImportFile(ctx, s, overlap)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if res.Inserted != 1 || res.Duplicates() != 1 {
		t.Errorf("inserted/duplicates = %d/%d, want 1/1", res.Inserted, res.Duplicates())
	}

	all, err := s.Trades(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("len(Trades) = %d, want 4", len(all))
	}
}

func TestTradesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if _, err := ImportFile(ctx, s, writeTempFile(t, "trades.json", exportJSON)); err != nil {
		t.Fatal(err)
	}

	rain, err := s.Trades(ctx, "rain")
	if err != nil {
		t.Fatal(err)
	}
	if len(rain) != 2 {
		t.Fatalf("len(rain) = %d, want 2", len(rain))
	}
	first, second := rain[0], rain[1]
	if !first.Timestamp.Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Timestamp = %v", first.Timestamp)
	}
	if first.TxHash == nil || *first.TxHash != "0x01" || second.TxHash != nil {
		t.Errorf("TxHash = %v / %v", first.TxHash, second.TxHash)
	}
	if second.Action != trade.Sell || second.Side != trade.Yes || second.Resolution != trade.Yes || second.PnL != 3 {
		t.Errorf("second = %+v", second)
	}

	recent, err := s.RecentTrades(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].MarketSlug != "btc" || recent[1].Price != 70 {
		t.Errorf("recent = %+v", recent)
	}
}

func TestMarketBreakdown(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if _, err := ImportFile(ctx, s, writeTempFile(t, "trades.json", exportJSON)); err != nil {
		t.Fatal(err)
	}

	rows, err := s.MarketBreakdown(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	rain := rows[0]
	if rain.Slug != "rain" || rain.Trades != 2 || rain.PnL != 3 || rain.Wins != 1 || rain.Losses != 0 {
		t.Errorf("rain = %+v", rain)
	}
	if rain.Volume != 11 || rain.Exposure != 0 || rain.CostBasis != -3 {
		t.Errorf("rain volume/exposure/cost = %v/%v/%v, want 11/0/-3", rain.Volume, rain.Exposure, rain.CostBasis)
	}
	btc := rows[1]
	if btc.Slug != "btc" || btc.Exposure != -5 || btc.Losses != 1 {
		t.Errorf("btc = %+v", btc)
	}
	if !btc.FirstTrade.Equal(btc.LastTrade) {
		t.Errorf("btc first/last = %v/%v", btc.FirstTrade, btc.LastTrade)
	}
}

type fakeHistory struct {
	records []trade.Record
	err     error
	limit   int
}

func (f *fakeHistory) FetchTradeHistory(_ context.Context, pageLimit int) ([]trade.Record, error) {
	f.limit = pageLimit
	return f.records, f.err
}

func apiRecords(t *testing.T) []trade.Record {
	t.Helper()
	var records []trade.Record
	dec := json.NewDecoder(strings.NewReader(`[
		{"market": {"title": "BTC?", "slug": "btc"}, "blockTimestamp": 1704067200, "collateralAmount": "2500000", "outcomeTokenAmount": "5000000", "pnl": "0", "strategy": "Buy", "outcomeIndex": 0, "price": 50},
		{"market": {"title": "BTC?", "slug": "btc"}, "blockTimestamp": 1704153600, "collateralAmount": "4000000", "outcomeTokenAmount": "5000000", "pnl": "1500000", "strategy": "Sell", "outcomeIndex": 0, "price": 80}
	]`))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		t.Fatal(err)
	}
	return records
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	src := &fakeHistory{records: apiRecords(t)}

	res, err := Sync(ctx, src, s, 25)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if src.limit != 25 {
		t.Errorf("page limit = %d, want 25", src.limit)
	}
	if res.Inserted != 2 || res.Upload.FileType != "api" {
		t.Errorf("result = %+v", res)
	}

	trades, err := s.Trades(ctx, "btc")
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 2 || trades[1].PnL != 1.5 || trades[1].Cost != 4 || trades[0].Shares != 5 {
		t.Errorf("trades = %+v", trades)
	}

	if _, err := Sync(ctx, src, s, 25); !errors.Is(err, ErrDuplicateUpload) {
		t.Errorf("unchanged sync error = %v, want ErrDuplicateUpload", err)
	}
}

func TestSyncFetchError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Sync(context.Background(), &fakeHistory{err: boom}, openTestStore(t), 10)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
}
