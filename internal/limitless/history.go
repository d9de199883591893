package limitless

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gw/prediction-pnl/internal/trade"
)

// DefaultPageLimit is the page size used when none is given.
const DefaultPageLimit = 100

type historyPage struct {
	Data       []map[string]any `json:"data"`
	TotalCount int              `json:"totalCount"`
}

// FetchTradeHistory pages through /portfolio/history until an empty page
// or totalCount records have been read. On error the records fetched so
// far are returned together with the error.
func (c *Client) FetchTradeHistory(ctx context.Context, pageLimit int) ([]trade.Record, error) {
	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}

	var records []trade.Record
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(pageLimit))

		var result historyPage
		if err := c.getJSON(ctx, "/portfolio/history", params, true, &result); err != nil {
			return records, fmt.Errorf("fetching history page %d: %w", page, err)
		}
		if len(result.Data) == 0 {
			break
		}
		for _, d := range result.Data {
			records = append(records, trade.Record(d))
		}

		c.logger.Info("downloaded history page", "page", page, "total", len(records))

		if len(records) >= result.TotalCount {
			break
		}
	}
	return records, nil
}

// Market is the subset of /markets/{slug} used for live status.
type Market struct {
	Slug                string    `json:"slug"`
	Title               string    `json:"title"`
	Status              string    `json:"status"`
	ExpirationDate      string    `json:"expirationDate"`
	WinningOutcomeIndex *int      `json:"winningOutcomeIndex"`
	Prices              []float64 `json:"-"`
}

// Resolution maps the winning outcome index to a side, "" while unresolved.
func (m Market) Resolution() trade.Side {
	if m.WinningOutcomeIndex == nil {
		return ""
	}
	if *m.WinningOutcomeIndex == 0 {
		return trade.Yes
	}
	return trade.No
}

// FetchMarket returns the public details of one market.
func (c *Client) FetchMarket(ctx context.Context, slug string) (*Market, error) {
	var raw struct {
		Market
		Prices json.RawMessage `json:"prices"`
	}
	if err := c.getJSON(ctx, "/markets/"+url.PathEscape(slug), nil, false, &raw); err != nil {
		return nil, fmt.Errorf("fetching market %s: %w", slug, err)
	}

	m := raw.Market
	// prices is [yes, no]; other shapes are ignored.
	var prices []float64
	if len(raw.Prices) > 0 && json.Unmarshal(raw.Prices, &prices) == nil {
		m.Prices = prices
	}
	return &m, nil
}
