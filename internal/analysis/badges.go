package analysis

import (
	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
	"github.com/drexon5/polymarket-trader-analyzer/internal/stats"
)

const (
	lotteryPnLThreshold   = 100.0
	veteranPositionCount  = 500
	novicePositionCount   = 100
	whaleVolumeThreshold  = 500_000.0
	rollerVolumeThreshold = 100_000.0
)

// Badges derives the label set for one trader from raw activity.
func Badges(trades []models.Trade, positions []models.Position) []string {
	var badges []string
	if len(trades) == 0 {
		return badges
	}

	prices := EntryPrices(trades)
	if len(prices) > 0 {
		lowProb := 0
		for _, p := range prices {
			if p < 0.5 {
				lowProb++
			}
		}

		if lowProb == len(prices) {
			badges = append(badges, models.BadgeContrarian)
		}

		lotteryWins := 0
		for _, p := range positions {
			if p.CashPnL.Float() > lotteryPnLThreshold {
				lotteryWins++
			}
		}
		if lotteryWins > 0 && float64(lowProb) > float64(len(prices))*0.5 {
			badges = append(badges, models.BadgeLotteryTicket)
		}
	}

	switch {
	case len(positions) >= veteranPositionCount:
		badges = append(badges, models.BadgeVeteran)
	case len(positions) >= novicePositionCount:
		badges = append(badges, models.BadgeNovice)
	}

	switch volume := stats.Volume(trades); {
	case volume > whaleVolumeThreshold:
		badges = append(badges, models.BadgeWhale)
	case volume > rollerVolumeThreshold:
		badges = append(badges, models.BadgeHighRoller)
	}

	return badges
}
