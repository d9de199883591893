package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gw/prediction-pnl/internal/config"
	"github.com/gw/prediction-pnl/internal/filter"
	"github.com/gw/prediction-pnl/internal/loader"
	"github.com/gw/prediction-pnl/internal/trade"
)

type filterFlags struct {
	params filter.Params
	file   string
	exact  bool
	live   bool
	args   []string
}

// parseFilters parses the shared filter flags. A -type or -side flag given
// with an empty value selects nothing.
func parseFilters(name string, args []string) (*filterFlags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	var (
		f              filterFlags
		start, end     string
		types, sides   string
		minPnL, maxPnL string
	)
	fs.StringVar(&f.file, "file", "", "analyze a trade file instead of the database")
	fs.StringVar(&start, "start", "", "start date")
	fs.StringVar(&end, "end", "", "end date")
	fs.StringVar(&types, "type", "", "comma-separated trade types")
	fs.StringVar(&sides, "side", "", "comma-separated sides")
	fs.StringVar(&minPnL, "min-pnl", "", "minimum trade PnL")
	fs.StringVar(&maxPnL, "max-pnl", "", "maximum trade PnL")
	fs.StringVar(&f.params.MarketSlug, "market", "", "market slug")
	fs.BoolVar(&f.exact, "exact", false, "match the market name or slug exactly")
	fs.BoolVar(&f.live, "live", false, "fetch live market status")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.args = fs.Args()

	var err error
	if start != "" {
		if f.params.Start, err = filter.ParseDate(start); err != nil {
			return nil, err
		}
	}
	if end != "" {
		if f.params.End, err = filter.ParseDate(end); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "type":
			f.params.Types = splitList(types, false)
		case "side":
			f.params.Sides = splitList(sides, true)
		}
	})

	if f.params.MinPnL, err = parseBound("min-pnl", minPnL); err != nil {
		return nil, err
	}
	if f.params.MaxPnL, err = parseBound("max-pnl", maxPnL); err != nil {
		return nil, err
	}
	return &f, nil
}

// splitList returns a non-nil slice even for an empty value.
func splitList(s string, upper bool) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if upper {
			part = strings.ToUpper(part)
		}
		out = append(out, part)
	}
	return out
}

func parseBound(name, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("-%s: %w", name, err)
	}
	return &v, nil
}

// loadTrades reads trades from -file or the database and applies the
// filters.
func loadTrades(cfg *config.Config, f *filterFlags) ([]trade.Trade, error) {
	var trades []trade.Trade
	if f.file != "" {
		batch, err := loader.LoadTrades(f.file)
		if err != nil {
			return nil, err
		}
		for _, fail := range batch.Failures {
			slog.Warn("skipped record", "file", f.file, "index", fail.Index, "reason", fail.Reason)
		}
		trades = trade.Deduplicate(batch.Trades)
	} else {
		store := openStore(cfg)
		defer store.Close()

		var err error
		if trades, err = store.Trades(context.Background(), ""); err != nil {
			return nil, err
		}
	}
	return f.params.Apply(trades), nil
}
