// Package inference guesses how a market resolved from its trade history.
//
// Two signals are offered and never merged: a price-threshold guess on the
// latest trade, and a scan for explicit resolution markers. Callers pick
// which one to trust.
package inference

import (
	"sort"
	"strings"

	"github.com/gw/prediction-pnl/internal/trade"
)

// DefaultThreshold is the price in cents at or above which the latest
// trade's side is assumed to have won.
const DefaultThreshold = 50.0

var terminalTypes = map[string]struct{}{
	"claim": {},
	"won":   {},
	"loss":  {},
}

// InferResolvedSide looks at the most recent trade. If its price is at or
// above thresholdCents the market is assumed to have resolved to that
// trade's side, otherwise to the opposite side. The returned trade is the
// one the guess was based on; the side is empty when that trade carries no
// valid side. Empty input returns ("", nil).
//
// This is a heuristic and misclassifies markets that close near the
// threshold.
func InferResolvedSide(trades []trade.Trade, thresholdCents float64) (trade.Side, *trade.Trade) {
	if len(trades) == 0 {
		return "", nil
	}

	latest := trades[0]
	for _, t := range trades[1:] {
		if t.Timestamp.After(latest.Timestamp) {
			latest = t
		}
	}

	if !latest.Side.Valid() {
		return "", &latest
	}
	if latest.Price >= thresholdCents {
		return latest.Side, &latest
	}
	return latest.Side.Opposite(), &latest
}

// DetectResolution scans trades from newest to oldest for an explicit
// resolution attribute or a terminal trade type (Claim, Won, Loss). A
// terminal type reports the trade's own side. ok is false when no marker
// exists.
func DetectResolution(trades []trade.Trade) (side trade.Side, ok bool) {
	// Reversed before the stable sort so that, among equal timestamps, later
	// records are checked first.
	ordered := make([]trade.Trade, len(trades))
	for i, t := range trades {
		ordered[len(trades)-1-i] = t
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.After(ordered[j].Timestamp)
	})

	for _, t := range ordered {
		if t.Resolution.Valid() {
			return t.Resolution, true
		}
		if _, terminal := terminalTypes[strings.ToLower(strings.TrimSpace(t.Type))]; terminal && t.Side.Valid() {
			return t.Side, true
		}
	}
	return "", false
}
