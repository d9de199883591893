package trade

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultMarket     = "Unknown"
	DefaultMarketSlug = "unknown"
	DefaultType       = "Buy"
)

// ErrMalformedRecord wraps every per-record normalization failure.
var ErrMalformedRecord = errors.New("malformed trade record")

// Record is one raw trade as read from a file export or the remote API.
type Record map[string]any

// Failure describes a record that NormalizeBatch skipped.
type Failure struct {
	Index  int    `json:"record_index"`
	Reason string `json:"reason"`
}

// Batch is the outcome of normalizing a set of records. Trades keeps the
// input order of the records that succeeded.
type Batch struct {
	Trades   []Trade
	Failures []Failure
}

// Skipped returns the number of records that could not be normalized.
func (b Batch) Skipped() int { return len(b.Failures) }

// NormalizeBatch normalizes every record independently. A bad record is
// reported in Failures and does not affect the others.
func NormalizeBatch(records []Record) Batch {
	b := Batch{Trades: make([]Trade, 0, len(records))}
	for i, r := range records {
		t, err := Normalize(r)
		if err != nil {
			b.Failures = append(b.Failures, Failure{Index: i, Reason: err.Error()})
			continue
		}
		b.Trades = append(b.Trades, t)
	}
	return b
}

// Normalize maps a raw record of either export shape onto a Trade. The API
// shape is recognised by the presence of the collateralAmount field.
func Normalize(r Record) (Trade, error) {
	if r == nil {
		return Trade{}, fmt.Errorf("%w: empty record", ErrMalformedRecord)
	}

	var t Trade
	var err error

	if t.Market, t.MarketSlug, t.Resolution, err = resolveMarket(r); err != nil {
		return Trade{}, err
	}

	_, micro := r[microUnitMarker]
	amounts := fileAmountKeys
	if micro {
		amounts = apiAmountKeys
	}
	if t.Cost, err = amountField(r, amounts, fieldCost, micro); err != nil {
		return Trade{}, err
	}
	if t.PnL, err = amountField(r, amounts, fieldPnL, micro); err != nil {
		return Trade{}, err
	}
	if t.Shares, err = amountField(r, amounts, fieldShares, micro); err != nil {
		return Trade{}, err
	}
	t.Shares = math.Abs(t.Shares)

	if t.Price, err = floatField(r, commonKeys, fieldPrice); err != nil {
		return Trade{}, err
	}

	ts, _ := commonKeys.lookup(r, fieldTimestamp)
	t.Timestamp = ParseTimestamp(ts)

	t.Type = DefaultType
	if v, ok := commonKeys.lookup(r, fieldType); ok {
		s, err := stringValue(v)
		if err != nil {
			return Trade{}, malformed(fieldType, err)
		}
		if s = strings.TrimSpace(s); s != "" {
			t.Type = s
		}
	}
	t.Action = Classify(t.Type)

	if t.Side, err = resolveSide(r); err != nil {
		return Trade{}, err
	}

	if v, ok := commonKeys.lookup(r, fieldTxHash); ok {
		s, err := stringValue(v)
		if err != nil {
			return Trade{}, malformed(fieldTxHash, err)
		}
		if s = strings.TrimSpace(s); s != "" {
			t.TxHash = &s
		}
	}

	if t.Resolution == "" {
		if v, ok := commonKeys.lookup(r, fieldResolution); ok {
			t.Resolution = parseResolution(v)
		}
	}

	return t, nil
}

// resolveMarket reads title and slug independently: the nested market
// object first, then the flat fields, then the defaults.
func resolveMarket(r Record) (title, slug string, resolution Side, err error) {
	flat := r
	nested, isNested := r["market"].(map[string]any)
	if isNested {
		flat = make(Record, len(r))
		for k, v := range r {
			if k != "market" {
				flat[k] = v
			}
		}
	}

	if title, err = marketText(Record(nested), flat, fieldMarketTitle, DefaultMarket); err != nil {
		return "", "", "", err
	}
	if slug, err = marketText(Record(nested), flat, fieldMarketSlug, DefaultMarketSlug); err != nil {
		return "", "", "", err
	}
	if isNested {
		if v, ok := nestedMarketKeys.lookup(Record(nested), fieldResolution); ok {
			resolution = parseResolution(v)
		}
	}
	return title, slug, resolution, nil
}

func marketText(nested, flat Record, f field, def string) (string, error) {
	for _, src := range []struct {
		keys keyTable
		r    Record
	}{{nestedMarketKeys, nested}, {commonKeys, flat}} {
		if src.r == nil {
			continue
		}
		v, ok := src.keys.lookup(src.r, f)
		if !ok {
			continue
		}
		s, err := stringValue(v)
		if err != nil {
			return "", malformed(f, err)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
	}
	return def, nil
}

func resolveSide(r Record) (Side, error) {
	if v, ok := commonKeys.lookup(r, fieldSide); ok {
		s, err := stringValue(v)
		if err != nil {
			return "", malformed(fieldSide, err)
		}
		side := Side(strings.ToUpper(strings.TrimSpace(s)))
		if !side.Valid() {
			return "", malformed(fieldSide, fmt.Errorf("unknown side %q", s))
		}
		return side, nil
	}
	if v, ok := commonKeys.lookup(r, fieldOutcomeIndex); ok {
		idx, err := floatValue(v)
		if err != nil {
			return "", malformed(fieldOutcomeIndex, err)
		}
		if idx == 0 {
			return Yes, nil
		}
		return No, nil
	}
	return Yes, nil
}

func parseResolution(v any) Side {
	s, err := stringValue(v)
	if err != nil {
		return ""
	}
	side := Side(strings.ToUpper(strings.TrimSpace(s)))
	if !side.Valid() {
		return ""
	}
	return side
}

func amountField(r Record, keys keyTable, f field, micro bool) (float64, error) {
	v, ok := keys.lookup(r, f)
	if !ok {
		return 0, nil
	}
	if !micro {
		x, err := floatValue(v)
		if err != nil {
			return 0, malformed(f, err)
		}
		return x, nil
	}
	d, err := decimalValue(v)
	if err != nil {
		return 0, malformed(f, err)
	}
	return d.Shift(-6).InexactFloat64(), nil
}

func floatField(r Record, keys keyTable, f field) (float64, error) {
	v, ok := keys.lookup(r, f)
	if !ok {
		return 0, nil
	}
	x, err := floatValue(v)
	if err != nil {
		return 0, malformed(f, err)
	}
	return x, nil
}

func malformed(f field, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedRecord, f, err)
}

func stringValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	}
	if f, ok := numeric(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("expected text, got %T", v)
}

func floatValue(v any) (float64, error) {
	f, ok := numeric(v)
	if s, isStr := v.(string); isStr {
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, fmt.Errorf("not a number: %q", s)
		}
		ok = true
	}
	if ok {
		return finite(f)
	}
	if b, ok := v.(bool); ok && !b {
		return 0, nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func decimalValue(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	case json.Number:
		return decimal.NewFromString(x.String())
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case bool:
		if !x {
			return decimal.Zero, nil
		}
	}
	if f, ok := numeric(v); ok {
		f, err := finite(f)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromFloat(f), nil
	}
	return decimal.Zero, fmt.Errorf("expected number, got %T", v)
}

// finite treats NaN (an empty spreadsheet cell) as zero and rejects infinities.
func finite(f float64) (float64, error) {
	if math.IsNaN(f) {
		return 0, nil
	}
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("infinite value")
	}
	return f, nil
}
