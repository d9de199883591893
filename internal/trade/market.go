package trade

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultMatchCutoff is the minimum similarity ratio for fuzzy market lookup.
const DefaultMatchCutoff = 0.6

// MarketRef identifies one market seen in a trade set.
type MarketRef struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// UniqueMarkets lists the distinct markets in trades, ordered by slug. When
// a slug appears with several titles the last one wins.
func UniqueMarkets(trades []Trade) []MarketRef {
	titles := make(map[string]string)
	for _, t := range trades {
		if t.MarketSlug != "" && t.Market != "" {
			titles[t.MarketSlug] = t.Market
		}
	}
	refs := make([]MarketRef, 0, len(titles))
	for slug, title := range titles {
		refs = append(refs, MarketRef{Slug: slug, Title: title})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Slug < refs[j].Slug })
	return refs
}

// ForMarket returns the trades whose slug equals slug exactly.
func ForMarket(trades []Trade, slug string) []Trade {
	var out []Trade
	for _, t := range trades {
		if t.MarketSlug == slug {
			out = append(out, t)
		}
	}
	return out
}

// MatchMarket selects the trades of the market named by query. With
// cutoff <= 0 the query must equal a title or slug exactly; otherwise the
// closest title (then slug) with a similarity of at least cutoff is used.
func MatchMarket(trades []Trade, query string, cutoff float64) []Trade {
	if cutoff <= 0 {
		var out []Trade
		for _, t := range trades {
			if t.Market == query || t.MarketSlug == query {
				out = append(out, t)
			}
		}
		return out
	}

	titles := make(map[string]struct{})
	slugs := make(map[string]struct{})
	for _, t := range trades {
		titles[t.Market] = struct{}{}
		slugs[t.MarketSlug] = struct{}{}
	}

	if title, ok := closest(query, titles, cutoff); ok {
		var out []Trade
		for _, t := range trades {
			if t.Market == title {
				out = append(out, t)
			}
		}
		return out
	}
	if slug, ok := closest(query, slugs, cutoff); ok {
		return ForMarket(trades, slug)
	}
	return nil
}

func closest(query string, candidates map[string]struct{}, cutoff float64) (string, bool) {
	names := make([]string, 0, len(candidates))
	for c := range candidates {
		names = append(names, c)
	}
	sort.Strings(names)

	q := strings.Split(query, "")
	best, bestRatio := "", 0.0
	for _, name := range names {
		ratio := difflib.NewMatcher(q, strings.Split(name, "")).Ratio()
		if ratio >= cutoff && ratio > bestRatio {
			best, bestRatio = name, ratio
		}
	}
	return best, bestRatio > 0
}

type identity struct {
	slug      string
	timestamp int64
	price     float64
	shares    float64
	typ       string
	side      Side
}

// Deduplicate drops repeated trades, keeping the first occurrence. Two
// trades are the same when slug, timestamp, price, shares, type and side match.
func Deduplicate(trades []Trade) []Trade {
	seen := make(map[identity]struct{}, len(trades))
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		id := identity{t.MarketSlug, t.Timestamp.UnixNano(), t.Price, t.Shares, t.Type, t.Side}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, t)
	}
	return out
}
