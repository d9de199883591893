// Package trade defines the canonical prediction-market Trade and converts
// raw export records of either supported shape into it.
package trade

import (
	"strings"
	"time"
)

// Side is one of the two complementary outcome tokens of a binary market.
type Side string

const (
	Yes Side = "YES"
	No  Side = "NO"
)

// Valid reports whether s is YES or NO.
func (s Side) Valid() bool {
	return s == Yes || s == No
}

// Opposite returns the complementary side. Invalid sides are returned as-is.
func (s Side) Opposite() Side {
	switch s {
	case Yes:
		return No
	case No:
		return Yes
	}
	return s
}

// Action is the Buy/Sell classification of a trade type string.
type Action int

const (
	Buy Action = iota
	Sell
)

func (a Action) String() string {
	if a == Sell {
		return "Sell"
	}
	return "Buy"
}

// Classify maps a trade type spelling ("Buy", "Market Sell", "Limit Buy", ...)
// onto Buy or Sell by substring match. Anything ambiguous is Buy.
func Classify(tradeType string) Action {
	t := strings.ToLower(tradeType)
	if strings.Contains(t, "sell") && !strings.Contains(t, "buy") {
		return Sell
	}
	return Buy
}

// Trade is a single normalized fill. Values are created by Normalize and
// are not modified afterwards.
type Trade struct {
	Market     string    // display title, "Unknown" when absent
	MarketSlug string    // stable market id, "unknown" when absent
	Timestamp  time.Time // naive UTC
	Price      float64   // cents, nominally 0-100
	Shares     float64   // always >= 0
	Cost       float64   // paid for Buy, received for Sell
	Type       string
	Action     Action
	Side       Side
	PnL        float64
	TxHash     *string

	// Resolution is the explicit resolved outcome reported by the source, if any.
	Resolution Side
}

// IsBuy reports whether the trade is Buy-classified.
func (t Trade) IsBuy() bool { return t.Action == Buy }

// IsSell reports whether the trade is Sell-classified.
func (t Trade) IsSell() bool { return t.Action == Sell }
