package trade

// field is a canonical Trade field resolved from raw records.
type field int

const (
	fieldMarketTitle field = iota
	fieldMarketSlug
	fieldTimestamp
	fieldPrice
	fieldShares
	fieldCost
	fieldPnL
	fieldType
	fieldSide
	fieldOutcomeIndex
	fieldTxHash
	fieldResolution
)

var fieldNames = map[field]string{
	fieldMarketTitle:  "market",
	fieldMarketSlug:   "market_slug",
	fieldTimestamp:    "timestamp",
	fieldPrice:        "price",
	fieldShares:       "shares",
	fieldCost:         "cost",
	fieldPnL:          "pnl",
	fieldType:         "type",
	fieldSide:         "side",
	fieldOutcomeIndex: "outcome_index",
	fieldTxHash:       "tx_hash",
	fieldResolution:   "resolution",
}

func (f field) String() string { return fieldNames[f] }

// keyTable lists, per canonical field, the raw keys consulted in order.
// Supporting a new export shape is an edit here.
type keyTable map[field][]string

// microUnitMarker marks the API export shape, whose amounts are six-decimal
// fixed-point integers.
const microUnitMarker = "collateralAmount"

// Keys shared by both shapes.
var commonKeys = keyTable{
	fieldMarketTitle:  {"market", "market_title", "title"},
	fieldMarketSlug:   {"market_slug", "slug"},
	fieldTimestamp:    {"timestamp", "blockTimestamp"},
	fieldPrice:        {"price"},
	fieldType:         {"type", "strategy"},
	fieldSide:         {"side"},
	fieldOutcomeIndex: {"outcomeIndex", "outcome_index"},
	fieldTxHash:       {"tx_hash", "transactionHash"},
	fieldResolution:   {"resolution", "resolved_outcome"},
}

// Keys inside a nested "market" object.
var nestedMarketKeys = keyTable{
	fieldMarketTitle: {"title"},
	fieldMarketSlug:  {"slug"},
	fieldResolution:  {"resolution", "winningOutcome"},
}

// Amount keys for the file shape, already in natural units.
var fileAmountKeys = keyTable{
	fieldCost:   {"cost"},
	fieldPnL:    {"pnl"},
	fieldShares: {"shares"},
}

// Amount keys for the API shape, in micro-units.
var apiAmountKeys = keyTable{
	fieldCost:   {microUnitMarker},
	fieldPnL:    {"pnl"},
	fieldShares: {"outcomeTokenAmount"},
}

// lookup returns the first present, non-empty value among the keys for f.
func (kt keyTable) lookup(r Record, f field) (any, bool) {
	for _, key := range kt[f] {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}
