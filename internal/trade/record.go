package trade

// TimestampLayout renders naive timestamps in flattened records and exports.
const TimestampLayout = "2006-01-02T15:04:05.999999999"

// Record flattens t into the file export shape. Normalizing the result
// yields a Trade equal to t.
func (t Trade) Record() Record {
	r := Record{
		"market":      t.Market,
		"market_slug": t.MarketSlug,
		"timestamp":   t.Timestamp.Format(TimestampLayout),
		"price":       t.Price,
		"shares":      t.Shares,
		"cost":        t.Cost,
		"type":        t.Type,
		"side":        string(t.Side),
		"pnl":         t.PnL,
		"tx_hash":     nil,
	}
	if t.TxHash != nil {
		r["tx_hash"] = *t.TxHash
	}
	if t.Resolution != "" {
		r["resolution"] = string(t.Resolution)
	}
	return r
}

// Records flattens every trade in order.
func Records(trades []Trade) []Record {
	out := make([]Record, len(trades))
	for i, t := range trades {
		out[i] = t.Record()
	}
	return out
}
