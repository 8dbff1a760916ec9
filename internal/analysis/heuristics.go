// Package analysis computes the deep-analysis heuristics over in-memory
// trade and position lists. Everything here is pure; fetching and persistence
// live in the analyzer.
package analysis

import (
	"sort"
	"time"

	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

// Extreme-odds bucket bounds over valid entry prices (0,1].
const (
	extremeLowBound    = 0.10
	extremeHighBound   = 0.90
	reasonableLow      = 0.20
	reasonableHigh     = 0.80
	highFrequencyMax   = 20
	cleanReasonableMin = 0.70
)

// EntryPrices extracts the valid entry prices (0 < p <= 1) from a trade list.
func EntryPrices(trades []models.Trade) []float64 {
	prices := make([]float64, 0, len(trades))
	for _, t := range trades {
		p := t.Price.Float()
		if p > 0 && p <= 1 {
			prices = append(prices, p)
		}
	}
	return prices
}

// BothSidesResult reports how often a trader took both outcomes of the same
// market, a wash-trading heuristic.
type BothSidesResult struct {
	BothSidesMarkets int
	TotalMarkets     int
	Ratio            float64
	Flagged          bool
}

// BothSides groups trades by market and flags markets where both sides appear.
// Trades without a market identifier or side are ignored.
func BothSides(trades []models.Trade) BothSidesResult {
	sides := make(map[string]map[string]struct{})
	for _, t := range trades {
		if t.ConditionID == "" || t.Side == "" {
			continue
		}
		set := sides[t.ConditionID]
		if set == nil {
			set = make(map[string]struct{})
			sides[t.ConditionID] = set
		}
		set[t.Side] = struct{}{}
	}

	res := BothSidesResult{TotalMarkets: len(sides)}
	for _, set := range sides {
		if len(set) > 1 {
			res.BothSidesMarkets++
		}
	}
	if res.TotalMarkets > 0 {
		res.Ratio = float64(res.BothSidesMarkets) / float64(res.TotalMarkets)
	}
	res.Flagged = res.BothSidesMarkets > 0
	return res
}

// ExtremeOddsResult buckets the valid entry prices.
type ExtremeOddsResult struct {
	LowPct             float64
	HighPct            float64
	ReasonablePct      float64
	AvgPrice           float64
	AvgReasonablePrice float64
	ValidPrices        int
}

// ExtremeOdds classifies each valid entry price as extreme-low (<0.10),
// extreme-high (>0.90), or reasonable (0.20-0.80). The buckets deliberately do
// not cover the 0.10-0.20 and 0.80-0.90 bands. With no valid prices the
// defaults are zero shares and a 0.5 average price.
func ExtremeOdds(trades []models.Trade) ExtremeOddsResult {
	prices := EntryPrices(trades)
	if len(prices) == 0 {
		return ExtremeOddsResult{AvgPrice: 0.5, AvgReasonablePrice: 0.5}
	}

	var low, high, reasonable int
	var sum, reasonableSum float64
	for _, p := range prices {
		sum += p
		switch {
		case p < extremeLowBound:
			low++
		case p > extremeHighBound:
			high++
		case p >= reasonableLow && p <= reasonableHigh:
			reasonable++
			reasonableSum += p
		}
	}

	n := float64(len(prices))
	res := ExtremeOddsResult{
		LowPct:        float64(low) / n,
		HighPct:       float64(high) / n,
		ReasonablePct: float64(reasonable) / n,
		AvgPrice:      sum / n,
		ValidPrices:   len(prices),
	}
	if reasonable > 0 {
		res.AvgReasonablePrice = reasonableSum / float64(reasonable)
	} else {
		res.AvgReasonablePrice = 0.5
	}
	return res
}

// FrequencyResult summarizes how trades cluster by calendar hour.
type FrequencyResult struct {
	MaxTradesPerHour int
	AvgTradesPerHour float64
	ActiveHours      int
	HighFrequency    bool
}

// TradingFrequency buckets trades into calendar-hour bins. Trades with no
// usable timestamp are skipped.
func TradingFrequency(trades []models.Trade) FrequencyResult {
	buckets := make(map[int64]int)
	for _, t := range trades {
		ts := t.Time()
		if ts <= 0 {
			continue
		}
		hour := time.Unix(ts, 0).UTC().Truncate(time.Hour).Unix()
		buckets[hour]++
	}
	if len(buckets) == 0 {
		return FrequencyResult{}
	}

	var max, total int
	for _, count := range buckets {
		total += count
		if count > max {
			max = count
		}
	}
	return FrequencyResult{
		MaxTradesPerHour: max,
		AvgTradesPerHour: float64(total) / float64(len(buckets)),
		ActiveHours:      len(buckets),
		HighFrequency:    max > highFrequencyMax,
	}
}

// MaxDrawdown accumulates position PnL values in ascending order, tracking
// the running peak and reporting the largest peak-to-sum gap. Values are
// sorted, not chronological: position records carry no close time.
func MaxDrawdown(positions []models.Position) float64 {
	values := make([]float64, 0, len(positions))
	for _, p := range positions {
		values = append(values, p.CashPnL.Float())
	}
	sort.Float64s(values)

	var cumulative, peak, maxDrawdown float64
	for _, v := range values {
		cumulative += v
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}

// UniqueMarkets counts the distinct market identifiers in a trade list.
func UniqueMarkets(trades []models.Trade) int {
	seen := make(map[string]struct{})
	for _, t := range trades {
		seen[t.ConditionID] = struct{}{}
	}
	return len(seen)
}

// IsClean is the composite copy-trade candidate flag: no both-sides markets,
// no high-frequency hour, and a reasonable-odds share above 0.70.
func IsClean(both BothSidesResult, freq FrequencyResult, odds ExtremeOddsResult) bool {
	return !both.Flagged && !freq.HighFrequency && odds.ReasonablePct > cleanReasonableMin
}

// CleanScore weights the red flags into a 0-100 ranking score: 30 points for
// no both-sides betting, 30 for no high-frequency hour, up to 40 scaled by the
// reasonable-odds share.
func CleanScore(d models.TraderDetail) float64 {
	var score float64
	if !d.TradesBothSides {
		score += 30
	}
	if !d.HighFrequency {
		score += 30
	}
	score += 40 * d.ReasonableOddsPct
	return score
}
