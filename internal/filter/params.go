package filter

import (
	"time"

	"github.com/gw/prediction-pnl/internal/trade"
)

// Params is a full filter selection as supplied by a caller.
//
// For Types and Sides a nil slice means "not supplied" and leaves trades
// unfiltered, while a non-nil empty slice selects nothing.
type Params struct {
	Start      time.Time
	End        time.Time
	Types      []string
	Sides      []string
	MinPnL     *float64
	MaxPnL     *float64
	MarketSlug string
}

// Apply runs date, type, side, PnL and market filters in sequence.
func (p Params) Apply(trades []trade.Trade) []trade.Trade {
	if (p.Types != nil && len(p.Types) == 0) || (p.Sides != nil && len(p.Sides) == 0) {
		return []trade.Trade{}
	}

	out := ByDate(trades, p.Start, p.End)
	out = ByType(out, p.Types)
	out = BySide(out, p.Sides)
	if p.MinPnL != nil || p.MaxPnL != nil {
		out = ByPnL(out, p.MinPnL, p.MaxPnL)
	}
	if p.MarketSlug != "" {
		out = trade.ForMarket(out, p.MarketSlug)
		if out == nil {
			out = []trade.Trade{}
		}
	}
	return out
}

// IsZero reports whether p filters nothing.
func (p Params) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero() && p.Types == nil && p.Sides == nil &&
		p.MinPnL == nil && p.MaxPnL == nil && p.MarketSlug == ""
}
