package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gw/prediction-pnl/internal/loader"
	"github.com/gw/prediction-pnl/internal/trade"
)

func sampleTrades() []trade.Trade {
	hash := "0xbeef"
	return []trade.Trade{
		{
			Market: "Rain?", MarketSlug: "rain",
			Timestamp: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
			Price:     40, Shares: 10, Cost: 4,
			Type: "Limit Buy", Action: trade.Buy, Side: trade.Yes,
			TxHash: &hash,
		},
		{
			Market: "Rain?", MarketSlug: "rain",
			Timestamp: time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC),
			Price:     60, Shares: 10, Cost: 6,
			Type: "Limit Sell", Action: trade.Sell, Side: trade.Yes,
			PnL: 2, Resolution: trade.Yes,
		},
		{
			Market: "BTC?", MarketSlug: "btc",
			Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Price:     25, Shares: 4, Cost: 1,
			Type: "Buy", Action: trade.Buy, Side: trade.No,
			PnL: -1,
		},
	}
}

func assertRoundTrip(t *testing.T, path string) {
	t.Helper()
	batch, err := loader.LoadTrades(path)
	if err != nil {
		t.Fatalf("LoadTrades failed: %v", err)
	}
	if batch.Skipped() != 0 {
		t.Fatalf("skipped %d records: %+v", batch.Skipped(), batch.Failures)
	}
	want := sampleTrades()
	if len(batch.Trades) != len(want) {
		t.Fatalf("len = %d, want %d", len(batch.Trades), len(want))
	}
	for i, got := range batch.Trades {
		w := want[i]
		if got.Market != w.Market || got.MarketSlug != w.MarketSlug || !got.Timestamp.Equal(w.Timestamp) {
			t.Errorf("trade %d identity = %q/%q/%v, want %q/%q/%v", i, got.Market, got.MarketSlug, got.Timestamp, w.Market, w.MarketSlug, w.Timestamp)
		}
		if got.Price != w.Price || got.Shares != w.Shares || got.Cost != w.Cost || got.PnL != w.PnL {
			t.Errorf("trade %d amounts = %v/%v/%v/%v", i, got.Price, got.Shares, got.Cost, got.PnL)
		}
		if got.Type != w.Type || got.Action != w.Action || got.Side != w.Side || got.Resolution != w.Resolution {
			t.Errorf("trade %d = %+v, want %+v", i, got, w)
		}
		if (got.TxHash == nil) != (w.TxHash == nil) || (got.TxHash != nil && *got.TxHash != *w.TxHash) {
			t.Errorf("trade %d TxHash = %v, want %v", i, got.TxHash, w.TxHash)
		}
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := Write(path, sampleTrades()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"timestamp": "2024-01-01T09:30:00"`) {
		t.Errorf("timestamp not ISO formatted:\n%s", data)
	}
	assertRoundTrip(t, path)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := Write(path, sampleTrades()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if header != "market,market_slug,timestamp,price,shares,cost,type,side,pnl,tx_hash,resolution" {
		t.Errorf("header = %q", header)
	}
	assertRoundTrip(t, path)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := Write(path, sampleTrades()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	assertRoundTrip(t, path)

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != tradesSheet || sheets[1] != summarySheet {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("summary rows = %d, want 3", len(rows))
	}
	// Ordered by title: "BTC?" before "Rain?".
	if rows[1][1] != "btc" || rows[2][1] != "rain" || rows[2][2] != "2" {
		t.Errorf("summary = %v", rows)
	}
	if len(rows[2]) < 8 || rows[2][7] != "YES" {
		t.Errorf("rain resolved_outcome missing: %v", rows[2])
	}
}

func TestWriteRefusesEmpty(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "a.csv", "a.xlsx"} {
		path := filepath.Join(dir, name)
		if err := Write(path, nil); !errors.Is(err, ErrNoTrades) {
			t.Errorf("Write(%s, nil) = %v, want ErrNoTrades", name, err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s was created", name)
		}
	}
}

func TestWriteUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := Write(path, sampleTrades()); !errors.Is(err, loader.ErrUnsupportedFormat) {
		t.Errorf("Write(.pdf) = %v, want ErrUnsupportedFormat", err)
	}
}
