package pnl

import (
	"github.com/gw/prediction-pnl/internal/trade"
)

// Summary aggregates a trade set. Every field is defined for an empty set.
type Summary struct {
	TotalTrades     int     `json:"total_trades"`
	TotalVolume     float64 `json:"total_volume"`
	TotalPnL        float64 `json:"total_pnl"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	BreakevenTrades int     `json:"breakeven_trades"`
	// WinRate is a percentage of decided trades; breakeven trades are left
	// out of the denominator.
	WinRate       float64 `json:"win_rate"`
	AvgPnL        float64 `json:"avg_pnl_per_trade"`
	TotalInvested float64 `json:"total_invested"`
	TotalReturned float64 `json:"total_returned"`
	ROI           float64 `json:"roi"`
}

// MarketSummary is a Summary for the trades of a single market.
type MarketSummary struct {
	MarketTitle string `json:"market_title"`
	MarketSlug  string `json:"market_slug"`
	Summary
	ResolvedOutcome trade.Side `json:"resolved_outcome,omitempty"`
}

// Summarize reduces trades of any scope.
func Summarize(trades []trade.Trade) Summary {
	var s Summary
	s.TotalTrades = len(trades)

	for _, t := range trades {
		s.TotalVolume += t.Cost
		s.TotalPnL += t.PnL

		switch {
		case t.PnL > 0:
			s.WinningTrades++
		case t.PnL < 0:
			s.LosingTrades++
		default:
			s.BreakevenTrades++
		}

		if t.IsBuy() {
			s.TotalInvested += t.Cost
		} else {
			s.TotalReturned += t.Cost
		}
	}

	s.WinRate = SafeDivide(float64(s.WinningTrades), float64(s.WinningTrades+s.LosingTrades), 0) * 100
	s.AvgPnL = SafeDivide(s.TotalPnL, float64(s.TotalTrades), 0)
	s.ROI = ROI(s.TotalPnL, s.TotalInvested)
	return s
}

// SummarizeMarket reduces the trades of one market. Title and slug come
// from the first trade. The resolved outcome is taken from the most recent
// trade that reports one.
func SummarizeMarket(trades []trade.Trade) MarketSummary {
	ms := MarketSummary{
		MarketTitle: trade.DefaultMarket,
		MarketSlug:  trade.DefaultMarketSlug,
		Summary:     Summarize(trades),
	}
	if len(trades) == 0 {
		return ms
	}
	ms.MarketTitle = trades[0].Market
	ms.MarketSlug = trades[0].MarketSlug

	var latest *trade.Trade
	for i := range trades {
		t := &trades[i]
		if t.Resolution == "" {
			continue
		}
		if latest == nil || !t.Timestamp.Before(latest.Timestamp) {
			latest = t
		}
	}
	if latest != nil {
		ms.ResolvedOutcome = latest.Resolution
	}
	return ms
}
