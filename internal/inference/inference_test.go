package inference

import (
	"testing"
	"time"

	"github.com/gw/prediction-pnl/internal/trade"
)

func tr(day int, side trade.Side, price float64, typ string) trade.Trade {
	return trade.Trade{
		Timestamp: time.Date(2024, 2, day, 0, 0, 0, 0, time.UTC),
		Side:      side,
		Price:     price,
		Type:      typ,
	}
}

func TestInferResolvedSide(t *testing.T) {
	tests := []struct {
		name      string
		trades    []trade.Trade
		threshold float64
		want      trade.Side
		wantPrice float64
	}{
		{"latest above threshold keeps side", []trade.Trade{tr(1, trade.No, 10, "Buy"), tr(3, trade.Yes, 80, "Buy")}, DefaultThreshold, trade.Yes, 80},
		{"latest below threshold flips side", []trade.Trade{tr(5, trade.Yes, 20, "Buy"), tr(1, trade.Yes, 90, "Buy")}, DefaultThreshold, trade.No, 20},
		{"exactly at threshold keeps side", []trade.Trade{tr(1, trade.No, 50, "Sell")}, DefaultThreshold, trade.No, 50},
		{"custom threshold", []trade.Trade{tr(1, trade.Yes, 60, "Buy")}, 75, trade.No, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, basis := InferResolvedSide(tt.trades, tt.threshold)
			if got != tt.want {
				t.Errorf("side = %q, want %q", got, tt.want)
			}
			if basis == nil || basis.Price != tt.wantPrice {
				t.Errorf("basis = %+v, want price %v", basis, tt.wantPrice)
			}
		})
	}
}

func TestInferResolvedSideDegenerate(t *testing.T) {
	side, basis := InferResolvedSide(nil, DefaultThreshold)
	if side != "" || basis != nil {
		t.Errorf("empty = (%q, %v), want (\"\", nil)", side, basis)
	}

	side, basis = InferResolvedSide([]trade.Trade{tr(1, "MAYBE", 90, "Buy")}, DefaultThreshold)
	if side != "" || basis == nil {
		t.Errorf("invalid side = (%q, %v), want (\"\", trade)", side, basis)
	}
}

func TestDetectResolution(t *testing.T) {
	resolved := tr(2, trade.Yes, 40, "Buy")
	resolved.Resolution = trade.No
	sameDayYes := tr(4, trade.Yes, 60, "Buy")
	sameDayYes.Resolution = trade.Yes

	tests := []struct {
		name   string
		trades []trade.Trade
		want   trade.Side
		ok     bool
	}{
		{"none", []trade.Trade{tr(1, trade.Yes, 40, "Buy"), tr(2, trade.No, 40, "Sell")}, "", false},
		{"explicit attribute", []trade.Trade{resolved, tr(1, trade.Yes, 40, "Buy")}, trade.No, true},
		{"claim", []trade.Trade{tr(1, trade.Yes, 40, "Buy"), tr(4, trade.Yes, 100, "Claim")}, trade.Yes, true},
		{"newest marker wins", []trade.Trade{tr(3, trade.No, 0, "Loss"), resolved}, trade.No, true},
		{"won beats older resolution", []trade.Trade{resolved, tr(9, trade.Yes, 100, "Won")}, trade.Yes, true},
		{"tie goes to later record", []trade.Trade{sameDayYes, tr(4, trade.No, 100, "Claim")}, trade.No, true},
		{"tie goes to later record reversed", []trade.Trade{tr(4, trade.No, 100, "Claim"), sameDayYes}, trade.Yes, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectResolution(tt.trades)
			if got != tt.want || ok != tt.ok {
				t.Errorf("DetectResolution = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}
