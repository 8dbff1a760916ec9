package models

import "time"

// Badge labels assigned by the deep analyzer.
const (
	BadgeContrarian    = "Contrarian"
	BadgeLotteryTicket = "Lottery Ticket"
	BadgeVeteran       = "Veteran"
	BadgeNovice        = "Novice"
	BadgeWhale         = "Whale"
	BadgeHighRoller    = "High Roller"
)

// TraderSummary is the per-address record produced by the quick scanner.
// Records are keyed by address; a rescan fully replaces the prior record.
type TraderSummary struct {
	Address          string    `json:"address"`
	Username         string    `json:"username"`
	PnL              float64   `json:"pnl"`
	Volume           float64   `json:"volume"`
	Trades           int       `json:"trades"`
	AvgBet           float64   `json:"avg_bet"`
	WinRate          float64   `json:"win_rate"`
	Wins             int       `json:"wins"`
	Losses           int       `json:"losses"`
	ScannedAt        time.Time `json:"scanned_at"`
	DetailedAnalysis bool      `json:"detailed_analysis"`
}

// MeetsThresholds reports whether the trader clears the promising filter.
// The detailed-analysis flag is checked separately by callers.
func (t TraderSummary) MeetsThresholds(minPnL, minWinRate float64, minTrades int) bool {
	return t.PnL >= minPnL && t.WinRate >= minWinRate && t.Trades >= minTrades
}

// TraderDetail is the per-address record produced by the deep analyzer.
// It carries the quick-scan fields plus the derived heuristics.
type TraderDetail struct {
	TraderSummary

	Badges            []string `json:"badges"`
	MainCategory      string   `json:"main_category"`
	SpecializationPct float64  `json:"specialization_pct"`

	BothSidesMarkets int     `json:"both_sides_markets"`
	TotalMarkets     int     `json:"total_markets"`
	BothSidesRatio   float64 `json:"both_sides_ratio"`
	TradesBothSides  bool    `json:"trades_both_sides"`

	ExtremeLowPct      float64 `json:"extreme_low_pct"`
	ExtremeHighPct     float64 `json:"extreme_high_pct"`
	ReasonableOddsPct  float64 `json:"reasonable_odds_pct"`
	AvgEntryPrice      float64 `json:"avg_entry_price"`
	AvgReasonablePrice float64 `json:"avg_reasonable_price"`

	MaxDrawdown   float64 `json:"max_drawdown"`
	UniqueMarkets int     `json:"unique_markets"`

	MaxTradesPerHour int     `json:"max_trades_per_hour"`
	AvgTradesPerHour float64 `json:"avg_trades_per_hour"`
	ActiveHours      int     `json:"active_hours"`
	HighFrequency    bool    `json:"high_frequency"`

	IsCleanTrader bool      `json:"is_clean_trader"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}
