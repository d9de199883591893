package tradelog

import "time"

// Upload is one imported file or API sync.
type Upload struct {
	ID           string
	Filename     string
	FileType     string // "json", "csv", "xlsx" or "api"
	FileHash     string // sha256 of the source bytes
	TradeCount   int    // trades normalized from the source
	SkippedCount int    // records that failed normalization
	CreatedTime  time.Time
}

// MarketPnL is a row from the v_market_pnl view.
type MarketPnL struct {
	Slug       string
	Market     string
	Trades     int
	Volume     float64
	PnL        float64
	Wins       int
	Losses     int
	Exposure   float64
	CostBasis  float64
	FirstTrade time.Time
	LastTrade  time.Time
}
