package analysis

import (
	"strings"

	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

// CategoryOther is the default market category.
const CategoryOther = "Other"

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Politics", []string{"politics", "election", "biden", "trump", "congress"}},
	{"Sports", []string{"sports", "nba", "nfl", "mlb", "soccer", "football"}},
	{"Crypto", []string{"crypto", "bitcoin", "ethereum", "btc", "eth"}},
	{"Business", []string{"business", "tech", "stocks", "economy"}},
	{"Entertainment", []string{"entertainment", "celebrity", "movies", "music"}},
	{"Science", []string{"science", "ai", "technology", "space"}},
}

// CategorizeTags maps market tags to a category label.
//
// Trade records from the data API do not carry tags and resolving each
// conditionId against the markets API is too slow for batch analysis, so
// CategorizeTrade below does not call this yet. Kept so per-market metadata
// can be wired in without redefining the categories.
func CategorizeTags(tags []string) string {
	if len(tags) == 0 {
		return CategoryOther
	}
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}
	for _, c := range categoryKeywords {
		for _, tag := range lowered {
			for _, kw := range c.keywords {
				if tag == kw {
					return c.category
				}
			}
		}
	}
	return CategoryOther
}

// CategorizeTrade classifies a single trade. Currently every trade lands in
// the default bucket; see CategorizeTags.
func CategorizeTrade(models.Trade) string {
	return CategoryOther
}

// MainCategory tallies trades per category and returns the dominant category
// with its share of all trades.
func MainCategory(trades []models.Trade) (string, float64) {
	if len(trades) == 0 {
		return CategoryOther, 0
	}
	counts := make(map[string]int)
	for _, t := range trades {
		counts[CategorizeTrade(t)]++
	}

	main := CategoryOther
	best := -1
	for category, count := range counts {
		if count > best || (count == best && category < main) {
			main = category
			best = count
		}
	}
	return main, float64(best) / float64(len(trades))
}
