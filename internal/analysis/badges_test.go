package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

func sizedTrade(price, usdcSize float64) models.Trade {
	return models.Trade{
		ConditionID: "m1",
		Side:        "YES",
		Price:       models.Number(price),
		Size:        1,
		USDCSize:    models.Number(usdcSize),
	}
}

func TestBadgesContrarian(t *testing.T) {
	trades := []models.Trade{sizedTrade(0.1, 10), sizedTrade(0.3, 10), sizedTrade(0.49, 10)}
	badges := Badges(trades, nil)
	assert.Contains(t, badges, models.BadgeContrarian)
}

func TestBadgesNotContrarianWithOneHighPrice(t *testing.T) {
	trades := []models.Trade{sizedTrade(0.1, 10), sizedTrade(0.6, 10)}
	badges := Badges(trades, nil)
	assert.NotContains(t, badges, models.BadgeContrarian)
}

func TestBadgesLotteryTicket(t *testing.T) {
	trades := []models.Trade{sizedTrade(0.1, 10), sizedTrade(0.2, 10), sizedTrade(0.6, 10)}
	positions := []models.Position{position(150)}

	badges := Badges(trades, positions)
	assert.Contains(t, badges, models.BadgeLotteryTicket)

	// No big win: no badge.
	badges = Badges(trades, []models.Position{position(50)})
	assert.NotContains(t, badges, models.BadgeLotteryTicket)

	// Big win but mostly high-probability entries: no badge.
	highProb := []models.Trade{sizedTrade(0.8, 10), sizedTrade(0.9, 10), sizedTrade(0.1, 10)}
	badges = Badges(highProb, positions)
	assert.NotContains(t, badges, models.BadgeLotteryTicket)
}

func TestBadgesPositionCount(t *testing.T) {
	trades := []models.Trade{sizedTrade(0.6, 10)}

	veteran := make([]models.Position, 500)
	badges := Badges(trades, veteran)
	assert.Contains(t, badges, models.BadgeVeteran)
	assert.NotContains(t, badges, models.BadgeNovice)

	novice := make([]models.Position, 100)
	badges = Badges(trades, novice)
	assert.Contains(t, badges, models.BadgeNovice)
	assert.NotContains(t, badges, models.BadgeVeteran)

	badges = Badges(trades, make([]models.Position, 99))
	assert.NotContains(t, badges, models.BadgeNovice)
}

func TestBadgesVolumeThresholds(t *testing.T) {
	whale := []models.Trade{sizedTrade(0.6, 600_000)}
	badges := Badges(whale, nil)
	assert.Contains(t, badges, models.BadgeWhale)
	assert.NotContains(t, badges, models.BadgeHighRoller)

	roller := []models.Trade{sizedTrade(0.6, 200_000)}
	badges = Badges(roller, nil)
	assert.Contains(t, badges, models.BadgeHighRoller)
	assert.NotContains(t, badges, models.BadgeWhale)
}

func TestBadgesEmptyTrades(t *testing.T) {
	assert.Empty(t, Badges(nil, []models.Position{position(1000)}))
}

func TestBadgesIdempotent(t *testing.T) {
	trades := []models.Trade{sizedTrade(0.1, 150_000), sizedTrade(0.3, 10)}
	positions := make([]models.Position, 120)
	positions[0] = position(500)

	first := Badges(trades, positions)
	second := Badges(trades, positions)
	assert.Equal(t, first, second)
}
