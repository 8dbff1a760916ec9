// Package stats computes the quick-scan summary figures from raw trade and
// position lists.
package stats

import (
	"math"
	"time"

	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

// Positions with |PnL| inside this band are treated as undecided and count
// toward neither wins nor losses.
const decidedPnLThreshold = 5.0

// Volume sums the notional size of every trade. When usdcSize is missing or
// zero the notional falls back to size*price.
func Volume(trades []models.Trade) float64 {
	var total float64
	for _, t := range trades {
		size := math.Abs(t.USDCSize.Float())
		if size == 0 {
			size = math.Abs(t.Size.Float() * t.Price.Float())
		}
		total += size
	}
	return total
}

// AvgBet returns the mean notional per trade, 0 for an empty list.
func AvgBet(trades []models.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	return Volume(trades) / float64(len(trades))
}

// TotalPnL sums realized/unrealized PnL across positions.
func TotalPnL(positions []models.Position) float64 {
	var total float64
	for _, p := range positions {
		total += p.CashPnL.Float()
	}
	return total
}

// WinLoss counts decided positions on each side of the PnL band.
func WinLoss(positions []models.Position) (wins, losses int) {
	for _, p := range positions {
		pnl := p.CashPnL.Float()
		switch {
		case pnl > decidedPnLThreshold:
			wins++
		case pnl < -decidedPnLThreshold:
			losses++
		}
	}
	return wins, losses
}

// WinRate is wins/(wins+losses), 0 when no position is decided.
func WinRate(wins, losses int) float64 {
	if wins+losses == 0 {
		return 0
	}
	return float64(wins) / float64(wins+losses)
}

// Username picks the display name from the first trade, falling back to the
// pseudonym and then a generic label.
func Username(trades []models.Trade) string {
	if len(trades) == 0 {
		return "Anonymous"
	}
	if trades[0].Name != "" {
		return trades[0].Name
	}
	if trades[0].Pseudonym != "" {
		return trades[0].Pseudonym
	}
	return "Anonymous"
}

// Summarize builds a quick-scan record for one address from its fetched
// activity. The caller guarantees trades is non-empty.
func Summarize(address string, trades []models.Trade, positions []models.Position, now time.Time) models.TraderSummary {
	volume := Volume(trades)
	wins, losses := WinLoss(positions)

	return models.TraderSummary{
		Address:          address,
		Username:         Username(trades),
		PnL:              Round2(TotalPnL(positions)),
		Volume:           Round2(volume),
		Trades:           len(trades),
		AvgBet:           Round2(AvgBet(trades)),
		WinRate:          Round3(WinRate(wins, losses)),
		Wins:             wins,
		Losses:           losses,
		ScannedAt:        now,
		DetailedAnalysis: false,
	}
}

// Round2 rounds to cents; used for dollar figures.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to three decimals; used for rates and ratios.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
