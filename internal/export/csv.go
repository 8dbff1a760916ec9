// Package export writes the ranked CSV reports produced by the deep analyzer.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/drexon5/polymarket-trader-analyzer/internal/analysis"
	"github.com/drexon5/polymarket-trader-analyzer/internal/logging"
	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

const categoryTopN = 50

// Row pairs a detail record with its computed clean score.
type Row struct {
	Detail     models.TraderDetail
	CleanScore float64
}

// Rank scores every record and orders rows by clean score descending, ties
// broken by PnL descending.
func Rank(details []models.TraderDetail) []Row {
	rows := make([]Row, 0, len(details))
	for _, d := range details {
		rows = append(rows, Row{Detail: d, CleanScore: analysis.CleanScore(d)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CleanScore != rows[j].CleanScore {
			return rows[i].CleanScore > rows[j].CleanScore
		}
		return rows[i].Detail.PnL > rows[j].Detail.PnL
	})
	return rows
}

// WriteReports writes the full table, the clean-traders table, and one
// top-N table per observed category into dir.
func WriteReports(dir string, details []models.TraderDetail) error {
	if len(details) == 0 {
		return nil
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure export dir: %w", err)
	}

	ranked := Rank(details)

	if err := writeCSV(filepath.Join(dir, "traders_detailed_all.csv"), ranked); err != nil {
		return err
	}
	logging.Infof("exported traders_detailed_all.csv (%d traders)", len(ranked))

	var clean []Row
	for _, r := range ranked {
		if r.Detail.IsCleanTrader {
			clean = append(clean, r)
		}
	}
	if err := writeCSV(filepath.Join(dir, "traders_clean.csv"), clean); err != nil {
		return err
	}
	logging.Infof("exported traders_clean.csv (%d traders)", len(clean))

	byCategory := make(map[string][]Row)
	for _, r := range ranked {
		category := r.Detail.MainCategory
		if category == "" {
			category = analysis.CategoryOther
		}
		byCategory[category] = append(byCategory[category], r)
	}
	for category, rows := range byCategory {
		if len(rows) > categoryTopN {
			rows = rows[:categoryTopN]
		}
		name := fmt.Sprintf("traders_%s.csv", strings.ToLower(category))
		if err := writeCSV(filepath.Join(dir, name), rows); err != nil {
			return err
		}
		logging.Infof("exported %s (top %d %s traders)", name, len(rows), category)
	}
	return nil
}

var header = []string{
	"address", "username", "pnl", "volume", "trades", "avg_bet", "win_rate",
	"wins", "losses", "badges", "main_category", "specialization_pct",
	"both_sides_markets", "total_markets", "both_sides_ratio", "trades_both_sides",
	"extreme_low_pct", "extreme_high_pct", "reasonable_odds_pct",
	"avg_entry_price", "avg_reasonable_price", "max_drawdown", "unique_markets",
	"max_trades_per_hour", "avg_trades_per_hour", "active_hours", "high_frequency",
	"is_clean_trader", "scanned_at", "analyzed_at", "clean_score",
}

func writeCSV(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(record(r)); err != nil {
			return fmt.Errorf("write row %s: %w", r.Detail.Address, err)
		}
	}
	return w.Error()
}

func record(r Row) []string {
	d := r.Detail
	return []string{
		d.Address,
		d.Username,
		formatFloat(d.PnL),
		formatFloat(d.Volume),
		strconv.Itoa(d.Trades),
		formatFloat(d.AvgBet),
		formatFloat(d.WinRate),
		strconv.Itoa(d.Wins),
		strconv.Itoa(d.Losses),
		strings.Join(d.Badges, "|"),
		d.MainCategory,
		formatFloat(d.SpecializationPct),
		strconv.Itoa(d.BothSidesMarkets),
		strconv.Itoa(d.TotalMarkets),
		formatFloat(d.BothSidesRatio),
		strconv.FormatBool(d.TradesBothSides),
		formatFloat(d.ExtremeLowPct),
		formatFloat(d.ExtremeHighPct),
		formatFloat(d.ReasonableOddsPct),
		formatFloat(d.AvgEntryPrice),
		formatFloat(d.AvgReasonablePrice),
		formatFloat(d.MaxDrawdown),
		strconv.Itoa(d.UniqueMarkets),
		strconv.Itoa(d.MaxTradesPerHour),
		formatFloat(d.AvgTradesPerHour),
		strconv.Itoa(d.ActiveHours),
		strconv.FormatBool(d.HighFrequency),
		strconv.FormatBool(d.IsCleanTrader),
		formatTime(d.ScannedAt),
		formatTime(d.AnalyzedAt),
		formatFloat(r.CleanScore),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
