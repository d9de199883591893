// Package export writes trade sets to JSON, CSV or XLSX files.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/gw/prediction-pnl/internal/loader"
	"github.com/gw/prediction-pnl/internal/pnl"
	"github.com/gw/prediction-pnl/internal/trade"
)

// ErrNoTrades is returned instead of writing an empty export.
var ErrNoTrades = errors.New("no trades to export")

const (
	tradesSheet  = "All Trades"
	summarySheet = "Market Summary"
)

// Row is the flat tabular form of a trade used by CSV and XLSX exports.
type Row struct {
	Market     string  `csv:"market"`
	MarketSlug string  `csv:"market_slug"`
	Timestamp  string  `csv:"timestamp"`
	Price      float64 `csv:"price"`
	Shares     float64 `csv:"shares"`
	Cost       float64 `csv:"cost"`
	Type       string  `csv:"type"`
	Side       string  `csv:"side"`
	PnL        float64 `csv:"pnl"`
	TxHash     string  `csv:"tx_hash"`
	Resolution string  `csv:"resolution"`
}

var rowHeader = []any{"market", "market_slug", "timestamp", "price", "shares", "cost", "type", "side", "pnl", "tx_hash", "resolution"}

func toRow(t trade.Trade) Row {
	r := Row{
		Market:     t.Market,
		MarketSlug: t.MarketSlug,
		Timestamp:  t.Timestamp.Format(trade.TimestampLayout),
		Price:      t.Price,
		Shares:     t.Shares,
		Cost:       t.Cost,
		Type:       t.Type,
		Side:       string(t.Side),
		PnL:        t.PnL,
		Resolution: string(t.Resolution),
	}
	if t.TxHash != nil {
		r.TxHash = *t.TxHash
	}
	return r
}

func (r Row) cells() []any {
	return []any{r.Market, r.MarketSlug, r.Timestamp, r.Price, r.Shares, r.Cost, r.Type, r.Side, r.PnL, r.TxHash, r.Resolution}
}

// Write exports trades in the format implied by the file extension.
func Write(path string, trades []trade.Trade) error {
	format, err := loader.DetectFormat(path)
	if err != nil {
		return err
	}
	switch format {
	case loader.JSON:
		return WriteJSON(path, trades)
	case loader.CSV:
		return WriteCSV(path, trades)
	default:
		return WriteXLSX(path, trades)
	}
}

// WriteJSON writes trades as an indented array of file-shape records with
// ISO-8601 timestamps. The output loads back through the loader unchanged.
func WriteJSON(path string, trades []trade.Trade) error {
	if len(trades) == 0 {
		return ErrNoTrades
	}
	data, err := json.MarshalIndent(trade.Records(trades), "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes one row per trade with a header line.
func WriteCSV(path string, trades []trade.Trade) error {
	if len(trades) == 0 {
		return ErrNoTrades
	}
	rows := make([]Row, len(trades))
	for i, t := range trades {
		rows[i] = toRow(t)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := gocsv.Marshal(&rows, f); err != nil {
		f.Close()
		return fmt.Errorf("encode csv: %w", err)
	}
	return f.Close()
}

// WriteXLSX writes a workbook with an "All Trades" sheet and a "Market
// Summary" sheet holding one summary row per market slug.
func WriteXLSX(path string, trades []trade.Trade) error {
	if len(trades) == 0 {
		return ErrNoTrades
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), tradesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, tradesSheet, 1, rowHeader); err != nil {
		return err
	}
	for i, t := range trades {
		if err := setRow(f, tradesSheet, i+2, toRow(t).cells()); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	header := []any{"market", "market_slug", "trade_count", "total_volume", "total_pnl", "win_rate", "roi", "resolved_outcome"}
	if err := setRow(f, summarySheet, 1, header); err != nil {
		return err
	}
	for i, ms := range marketSummaries(trades) {
		row := []any{ms.MarketTitle, ms.MarketSlug, ms.TotalTrades, ms.TotalVolume, ms.TotalPnL, ms.WinRate, ms.ROI, string(ms.ResolvedOutcome)}
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// marketSummaries groups trades by slug, ordered by market title then slug.
func marketSummaries(trades []trade.Trade) []pnl.MarketSummary {
	var out []pnl.MarketSummary
	for _, m := range trade.UniqueMarkets(trades) {
		out = append(out, pnl.SummarizeMarket(trade.ForMarket(trades, m.Slug)))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MarketTitle != out[j].MarketTitle {
			return out[i].MarketTitle < out[j].MarketTitle
		}
		return out[i].MarketSlug < out[j].MarketSlug
	})
	return out
}
