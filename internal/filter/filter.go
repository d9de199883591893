// Package filter narrows trade sets by date, type, side and PnL. Every
// filter returns a new slice and leaves its input untouched, so filters
// chain in any order with the same result.
package filter

import (
	"fmt"
	"time"

	"github.com/gw/prediction-pnl/internal/trade"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01-02-2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// ParseDate parses a calendar date in one of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", s)
}

// ByDate keeps trades from 00:00:00 on start's day through 23:59:59 on
// end's day. A zero bound is open. Bounds and timestamps are compared as
// naive wall-clock values.
func ByDate(trades []trade.Trade, start, end time.Time) []trade.Trade {
	if start.IsZero() && end.IsZero() {
		return clone(trades)
	}

	var from, until time.Time
	if !start.IsZero() {
		from = startOfDay(trade.Naive(start))
	}
	if !end.IsZero() {
		until = startOfDay(trade.Naive(end)).Add(24*time.Hour - time.Second)
	}

	out := make([]trade.Trade, 0, len(trades))
	for _, t := range trades {
		ts := trade.Naive(t.Timestamp)
		if !from.IsZero() && ts.Before(from) {
			continue
		}
		if !until.IsZero() && ts.After(until) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ByType keeps trades whose type string is in types. An empty types slice
// disables the filter.
func ByType(trades []trade.Trade, types []string) []trade.Trade {
	if len(types) == 0 {
		return clone(trades)
	}
	allowed := set(types)
	out := make([]trade.Trade, 0, len(trades))
	for _, t := range trades {
		if _, ok := allowed[t.Type]; ok {
			out = append(out, t)
		}
	}
	return out
}

// BySide keeps trades whose side is in sides. An empty sides slice disables
// the filter.
func BySide(trades []trade.Trade, sides []string) []trade.Trade {
	if len(sides) == 0 {
		return clone(trades)
	}
	allowed := set(sides)
	out := make([]trade.Trade, 0, len(trades))
	for _, t := range trades {
		if _, ok := allowed[string(t.Side)]; ok {
			out = append(out, t)
		}
	}
	return out
}

// ByPnL keeps trades with lo <= pnl <= hi. Nil bounds are open.
func ByPnL(trades []trade.Trade, lo, hi *float64) []trade.Trade {
	out := make([]trade.Trade, 0, len(trades))
	for _, t := range trades {
		if lo != nil && t.PnL < *lo {
			continue
		}
		if hi != nil && t.PnL > *hi {
			continue
		}
		out = append(out, t)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func set(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func clone(trades []trade.Trade) []trade.Trade {
	out := make([]trade.Trade, len(trades))
	copy(out, trades)
	return out
}
