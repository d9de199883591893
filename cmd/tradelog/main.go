package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/gw/prediction-pnl/internal/config"
	"github.com/gw/prediction-pnl/internal/export"
	"github.com/gw/prediction-pnl/internal/limitless"
	"github.com/gw/prediction-pnl/internal/tradelog"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "import":
		runImport(cfg, args)
	case "fetch":
		runFetch(cfg)
	case "summary":
		runSummary(cfg, args)
	case "market":
		runMarket(cfg, args)
	case "markets":
		runMarkets(cfg)
	case "trades":
		limit := 50
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				limit = n
			}
		}
		runTrades(cfg, limit)
	case "uploads":
		runUploads(cfg)
	case "export":
		runExport(cfg, args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: tradelog <command> [flags]

Commands:
  import FILE...           Import JSON, CSV or XLSX trade exports
  fetch                    Download trade history from Limitless
  summary [filters]        Show global PnL summary
  market NAME [filters]    Show per-trade PnL for one market (fuzzy name or slug)
  markets                  Show per-market breakdown
  trades [N]               Show last N trades (default 50)
  uploads                  Show imported files
  export FILE [filters]    Write trades to .json, .csv or .xlsx

Filters:
  -file PATH               Analyze a file instead of the database
  -start DATE, -end DATE   Inclusive date range (YYYY-MM-DD, MM/DD/YYYY, ...)
  -type LIST               Comma-separated trade types (Buy,Market Sell,...)
  -side LIST               Comma-separated sides (YES,NO)
  -min-pnl N, -max-pnl N   Inclusive PnL bounds
  -market SLUG             Restrict to one market slug
  -exact, -live            market only: exact name match, fetch live status`)
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

func openStore(cfg *config.Config) *tradelog.Store {
	store, err := tradelog.Open(cfg.DBPath)
	if err != nil {
		fatal("opening db", err)
	}
	return store
}

func runImport(cfg *config.Config, paths []string) {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "import: no files given")
		os.Exit(1)
	}

	store := openStore(cfg)
	defer store.Close()

	ctx := context.Background()
	failed := false
	for _, path := range paths {
		res, err := tradelog.ImportFile(ctx, store, path)
		if errors.Is(err, tradelog.ErrDuplicateUpload) {
			slog.Warn("skipping file", "file", path, "err", err)
			continue
		}
		if err != nil {
			slog.Error("import failed", "file", path, "err", err)
			failed = true
			continue
		}
		fmt.Printf("%s: %d records, %d new trades, %d duplicates, %d skipped\n",
			path, res.Records, res.Inserted, res.Duplicates(), len(res.Failures))
	}
	if failed {
		os.Exit(1)
	}
}

func runFetch(cfg *config.Config) {
	if err := cfg.RequirePrivateKey(); err != nil {
		fatal("config error", err)
	}

	client, err := limitless.NewClient(cfg.APIURL, cfg.PrivateKey, limitless.WithLogger(slog.Default()))
	if err != nil {
		fatal("limitless client init", err)
	}

	ctx := context.Background()
	if err := client.Login(ctx); err != nil {
		fatal("login failed", err)
	}

	store := openStore(cfg)
	defer store.Close()

	res, err := tradelog.Sync(ctx, client, store, cfg.PageLimit)
	if errors.Is(err, tradelog.ErrDuplicateUpload) {
		fmt.Println("History unchanged since last fetch.")
		return
	}
	if err != nil {
		fatal("sync failed", err)
	}

	fmt.Printf("Fetch complete: %d records, %d new trades, %d skipped.\n",
		res.Records, res.Inserted, len(res.Failures))
}

func runTrades(cfg *config.Config, limit int) {
	store := openStore(cfg)
	defer store.Close()

	trades, err := store.RecentTrades(context.Background(), limit)
	if err != nil {
		fatal("query failed", err)
	}

	if len(trades) == 0 {
		fmt.Println("No trades. Run 'tradelog import' or 'tradelog fetch' first.")
		return
	}

	fmt.Printf("%-20s %-35s %-12s %4s %7s %9s %10s %10s\n",
		"Time", "Market", "Type", "Side", "Price", "Shares", "Cost", "PnL")
	fmt.Println("------------------------------------------------------------------------------------------------------------------")
	for _, t := range trades {
		fmt.Printf("%-20s %-35s %-12s %4s %7.2f %9.2f %10s %10s\n",
			t.Timestamp.Format("2006-01-02 15:04:05"),
			truncate(t.Market, 35),
			truncate(t.Type, 12),
			t.Side,
			t.Price,
			t.Shares,
			dollars(t.Cost),
			dollars(t.PnL),
		)
	}
}

func runUploads(cfg *config.Config) {
	store := openStore(cfg)
	defer store.Close()

	uploads, err := store.Uploads(context.Background())
	if err != nil {
		fatal("query failed", err)
	}

	if len(uploads) == 0 {
		fmt.Println("No uploads.")
		return
	}

	fmt.Printf("%-20s %-36s %-30s %5s %7s %7s\n", "Time", "ID", "File", "Type", "Trades", "Skipped")
	fmt.Println("------------------------------------------------------------------------------------------------------------------")
	for _, u := range uploads {
		fmt.Printf("%-20s %-36s %-30s %5s %7d %7d\n",
			u.CreatedTime.Format("2006-01-02 15:04:05"),
			u.ID,
			truncate(u.Filename, 30),
			u.FileType,
			u.TradeCount,
			u.SkippedCount,
		)
	}
}

func runExport(cfg *config.Config, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "export: output file required")
		os.Exit(1)
	}
	out := args[0]

	f, err := parseFilters("export", args[1:])
	if err != nil {
		fatal("bad flags", err)
	}
	trades, err := loadTrades(cfg, f)
	if err != nil {
		fatal("loading trades", err)
	}

	if err := export.Write(out, trades); err != nil {
		if errors.Is(err, export.ErrNoTrades) {
			fmt.Println("No trades to export.")
			return
		}
		fatal("export failed", err)
	}
	fmt.Printf("Exported %d trades to %s\n", len(trades), out)
}

func dollars(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
