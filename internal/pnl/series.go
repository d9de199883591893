// Package pnl derives running position and profit figures from trades and
// reduces trade sets to summary statistics.
package pnl

import (
	"sort"

	"github.com/gw/prediction-pnl/internal/trade"
)

// Bias says which way a trade moves YES exposure.
type Bias int

const (
	LongYes Bias = iota
	ShortYes
)

func (b Bias) String() string {
	if b == ShortYes {
		return "Short YES"
	}
	return "Long YES"
}

// BiasOf classifies t: buying YES or selling NO is long YES, anything else
// is short YES.
func BiasOf(t trade.Trade) Bias {
	if longYes(t) {
		return LongYes
	}
	return ShortYes
}

func longYes(t trade.Trade) bool {
	return (t.IsBuy() && t.Side == trade.Yes) || (t.IsSell() && t.Side == trade.No)
}

// Series holds per-trade running figures. All slices are index-aligned with
// Trades, which is the input sorted by timestamp.
type Series struct {
	Trades []trade.Trade

	// CumulativePnL is the running sum of the source-reported trade PnL.
	CumulativePnL []float64
	// Exposure is net YES-equivalent shares held after each trade.
	Exposure []float64
	// CostBasis is net cash paid in after each trade.
	CostBasis []float64
	// MarkToMarket values Exposure at the trade price, less CostBasis.
	MarkToMarket []float64
}

// Len returns the number of trades in the series.
func (s Series) Len() int { return len(s.Trades) }

// Final returns the last point's exposure, cost basis and mark-to-market
// value. An empty series yields zeros.
func (s Series) Final() (exposure, costBasis, markToMarket float64) {
	n := s.Len()
	if n == 0 {
		return 0, 0, 0
	}
	return s.Exposure[n-1], s.CostBasis[n-1], s.MarkToMarket[n-1]
}

// Calculate runs a forward scan over trades for one scope. Callers group
// trades by market first; trades of different markets passed together are
// summed into one meaningless exposure. The input slice is not modified.
func Calculate(trades []trade.Trade) Series {
	sorted := make([]trade.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	n := len(sorted)
	s := Series{
		Trades:        sorted,
		CumulativePnL: make([]float64, n),
		Exposure:      make([]float64, n),
		CostBasis:     make([]float64, n),
		MarkToMarket:  make([]float64, n),
	}

	var realized, shares, cost float64
	for i, t := range sorted {
		realized += t.PnL

		if longYes(t) {
			shares += t.Shares
		} else {
			shares -= t.Shares
		}

		if t.IsBuy() {
			cost += t.Cost
		} else {
			cost -= t.Cost
		}

		s.CumulativePnL[i] = realized
		s.Exposure[i] = shares
		s.CostBasis[i] = cost
		s.MarkToMarket[i] = shares*(t.Price/100) - cost
	}
	return s
}
