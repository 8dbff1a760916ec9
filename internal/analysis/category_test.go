package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

func TestCategorizeTags(t *testing.T) {
	assert.Equal(t, "Politics", CategorizeTags([]string{"Election"}))
	assert.Equal(t, "Sports", CategorizeTags([]string{"NBA"}))
	assert.Equal(t, "Crypto", CategorizeTags([]string{"bitcoin"}))
	assert.Equal(t, CategoryOther, CategorizeTags([]string{"weather"}))
	assert.Equal(t, CategoryOther, CategorizeTags(nil))
}

func TestMainCategoryDefaultsToOther(t *testing.T) {
	trades := []models.Trade{
		{ConditionID: "m1", Side: "YES", Price: 0.5},
		{ConditionID: "m2", Side: "NO", Price: 0.3},
	}
	category, share := MainCategory(trades)
	assert.Equal(t, CategoryOther, category)
	assert.Equal(t, 1.0, share)

	category, share = MainCategory(nil)
	assert.Equal(t, CategoryOther, category)
	assert.Equal(t, 0.0, share)
}
