package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gw/prediction-pnl/internal/config"
	"github.com/gw/prediction-pnl/internal/inference"
	"github.com/gw/prediction-pnl/internal/limitless"
	"github.com/gw/prediction-pnl/internal/pnl"
	"github.com/gw/prediction-pnl/internal/trade"
)

func runSummary(cfg *config.Config, args []string) {
	f, err := parseFilters("summary", args)
	if err != nil {
		fatal("bad flags", err)
	}
	trades, err := loadTrades(cfg, f)
	if err != nil {
		fatal("loading trades", err)
	}

	if len(trades) == 0 {
		fmt.Println("No trades. Run 'tradelog import' or 'tradelog fetch' first.")
		return
	}

	s := pnl.Summarize(trades)
	fmt.Printf("Trades:        %d across %d markets\n", s.TotalTrades, len(trade.UniqueMarkets(trades)))
	printSummary(s)
}

func printSummary(s pnl.Summary) {
	fmt.Printf("Volume:        %s\n", dollars(s.TotalVolume))
	fmt.Printf("Total PnL:     %s\n", dollars(s.TotalPnL))
	fmt.Printf("Avg PnL/trade: %s\n", dollars(s.AvgPnL))
	fmt.Printf("Win/Loss/Even: %d/%d/%d (%.1f%% win rate)\n",
		s.WinningTrades, s.LosingTrades, s.BreakevenTrades, s.WinRate)
	fmt.Printf("Invested:      %s\n", dollars(s.TotalInvested))
	fmt.Printf("Returned:      %s\n", dollars(s.TotalReturned))
	fmt.Printf("ROI:           %.2f%%\n", s.ROI)
}

func runMarket(cfg *config.Config, args []string) {
	// Flags may follow the market name.
	var query []string
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		query = append(query, args[0])
		args = args[1:]
	}
	f, err := parseFilters("market", args)
	if err != nil {
		fatal("bad flags", err)
	}
	query = append(query, f.args...)
	if len(query) == 0 {
		fmt.Fprintln(os.Stderr, "market: name or slug required")
		os.Exit(1)
	}
	name := strings.Join(query, " ")

	all, err := loadTrades(cfg, f)
	if err != nil {
		fatal("loading trades", err)
	}

	cutoff := cfg.Policy.FuzzyCutoff
	if f.exact {
		cutoff = 0
	}
	trades := trade.MatchMarket(all, name, cutoff)
	if len(trades) == 0 {
		fmt.Printf("No market matching %q.\n", name)
		return
	}

	ms := pnl.SummarizeMarket(trades)
	fmt.Printf("%s (%s)\n\n", ms.MarketTitle, ms.MarketSlug)
	series := pnl.Calculate(trades)
	printSeries(series)
	fmt.Println()

	fmt.Printf("Trades:        %d\n", ms.TotalTrades)
	printSummary(ms.Summary)
	printMovingAverage(series.CumulativePnL, cfg.Policy.MovingAverageWindow)
	printResolution(ms, trades, cfg.Policy.ResolutionThreshold)

	if f.live {
		printLive(cfg, ms.MarketSlug)
	}
}

func printSeries(s pnl.Series) {
	fmt.Printf("%-20s %-12s %4s %-9s %7s %9s %10s %10s %10s %9s %10s\n",
		"Time", "Type", "Side", "Bias", "Price", "Shares", "Cost", "PnL", "Cum PnL", "Exposure", "MTM")
	fmt.Println("----------------------------------------------------------------------------------------------------------------------")
	for i, t := range s.Trades {
		fmt.Printf("%-20s %-12s %4s %-9s %7.2f %9.2f %10s %10s %10s %9.2f %10s\n",
			t.Timestamp.Format("2006-01-02 15:04:05"),
			truncate(t.Type, 12),
			t.Side,
			pnl.BiasOf(t),
			t.Price,
			t.Shares,
			dollars(t.Cost),
			dollars(t.PnL),
			dollars(s.CumulativePnL[i]),
			s.Exposure[i],
			dollars(s.MarkToMarket[i]),
		)
	}

	exposure, basis, mtm := s.Final()
	fmt.Printf("\nNet exposure: %.2f shares YES, cost basis %s, mark-to-market %s\n",
		exposure, dollars(basis), dollars(mtm))
}

func printMovingAverage(cum []float64, window int) {
	ma, err := pnl.MovingAverage(cum, window)
	if err != nil {
		slog.Warn("moving average", "err", err)
		return
	}
	if len(ma) == 0 {
		return
	}
	fmt.Printf("Cum PnL MA(%d): %s\n", min(window, len(cum)), dollars(ma[len(ma)-1]))
}

func printResolution(ms pnl.MarketSummary, trades []trade.Trade, threshold float64) {
	if ms.ResolvedOutcome != "" {
		fmt.Printf("Resolved:      %s (reported)\n", ms.ResolvedOutcome)
		return
	}
	if side, ok := inference.DetectResolution(trades); ok {
		fmt.Printf("Resolved:      %s (from trade history)\n", side)
		return
	}

	side, latest := inference.InferResolvedSide(trades, threshold)
	if side == "" {
		fmt.Println("Resolved:      unknown")
		return
	}
	fmt.Printf("Likely:        %s (last trade %s @ %.2f¢, threshold %.0f¢)\n",
		side, latest.Side, latest.Price, threshold)
}

func printLive(cfg *config.Config, slug string) {
	client, err := limitless.NewClient(cfg.APIURL, "", limitless.WithLogger(slog.Default()))
	if err != nil {
		slog.Warn("limitless client init", "err", err)
		return
	}

	m, err := client.FetchMarket(context.Background(), slug)
	if err != nil {
		slog.Warn("fetching market", "slug", slug, "err", err)
		return
	}

	fmt.Printf("Live status:   %s", m.Status)
	if side := m.Resolution(); side != "" {
		fmt.Printf(", winner %s", side)
	}
	if len(m.Prices) == 2 {
		fmt.Printf(", YES %.1f¢ / NO %.1f¢", m.Prices[0], m.Prices[1])
	}
	fmt.Println()
}

func runMarkets(cfg *config.Config) {
	store := openStore(cfg)
	defer store.Close()

	rows, err := store.MarketBreakdown(context.Background())
	if err != nil {
		fatal("query failed", err)
	}

	if len(rows) == 0 {
		fmt.Println("No trades. Run 'tradelog import' or 'tradelog fetch' first.")
		return
	}

	fmt.Printf("%-40s %6s %10s %10s %5s %5s %9s %10s %-10s\n",
		"Market", "Trades", "Volume", "PnL", "W", "L", "Exposure", "Basis", "Last")
	fmt.Println("----------------------------------------------------------------------------------------------------------------------")
	var total float64
	for _, r := range rows {
		fmt.Printf("%-40s %6d %10s %10s %5d %5d %9.2f %10s %-10s\n",
			truncate(r.Market, 40),
			r.Trades,
			dollars(r.Volume),
			dollars(r.PnL),
			r.Wins,
			r.Losses,
			r.Exposure,
			dollars(r.CostBasis),
			r.LastTrade.Format("2006-01-02"),
		)
		total += r.PnL
	}
	fmt.Printf("\n%d markets, total PnL %s\n", len(rows), dollars(total))
}
