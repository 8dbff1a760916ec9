// Package analyzer implements the phase-2 deep analysis over the promising
// traders exported by the quick scanner.
package analyzer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/drexon5/polymarket-trader-analyzer/internal/analysis"
	"github.com/drexon5/polymarket-trader-analyzer/internal/cache"
	"github.com/drexon5/polymarket-trader-analyzer/internal/config"
	"github.com/drexon5/polymarket-trader-analyzer/internal/dataapi"
	"github.com/drexon5/polymarket-trader-analyzer/internal/export"
	"github.com/drexon5/polymarket-trader-analyzer/internal/logging"
	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
	"github.com/drexon5/polymarket-trader-analyzer/internal/stats"
	"github.com/drexon5/polymarket-trader-analyzer/internal/store"
)

// DeepAnalyzer re-fetches each promising trader's activity and computes the
// richer heuristics. Fetches are serial with a fixed inter-trader delay; the
// cache is optional.
type DeepAnalyzer struct {
	cfg    *config.Config
	client *dataapi.Client
	quick  *store.TraderStore
	detail *store.DetailStore
	cache  cache.ActivityCache

	// mu guards the store maps: the kafka worker pool calls AnalyzeTrader
	// and Merge from several goroutines.
	mu sync.Mutex
}

// New builds a deep analyzer.
func New(cfg *config.Config, client *dataapi.Client, quick *store.TraderStore, detail *store.DetailStore, activityCache cache.ActivityCache) *DeepAnalyzer {
	return &DeepAnalyzer{
		cfg:    cfg,
		client: client,
		quick:  quick,
		detail: detail,
		cache:  activityCache,
	}
}

// Analyze processes up to maxAnalyze promising traders, merges the detail
// records, saves both stores, and writes the CSV reports. It returns the
// number of traders analyzed.
func (a *DeepAnalyzer) Analyze(ctx context.Context, maxAnalyze int) (int, error) {
	if maxAnalyze <= 0 {
		maxAnalyze = a.cfg.MaxAnalyze
	}

	promising := a.promisingTraders(maxAnalyze)
	if len(promising) == 0 {
		logging.Infof("no promising traders found; run the quick scan first")
		return 0, nil
	}
	logging.Infof("deep analysis: %d promising traders", len(promising))

	analyzed := 0
	for i, address := range promising {
		if i%10 == 0 {
			logging.Infof("progress: %d/%d", i, len(promising))
		}

		detail, err := a.AnalyzeTrader(ctx, address)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logging.Errorf("analyze %s: %v", shortAddr(address), err)
		} else if detail != nil {
			a.Merge(*detail)
			analyzed++
		} else {
			logging.Debugf("skip %s: no trades", shortAddr(address))
		}

		if err := sleep(ctx, a.cfg.TraderDelay); err != nil {
			break
		}
	}

	logging.Infof("analysis complete: %d/%d traders", analyzed, len(promising))

	if err := a.detail.Save(); err != nil {
		return analyzed, fmt.Errorf("save detail store: %w", err)
	}
	if err := a.quick.Save(); err != nil {
		return analyzed, fmt.Errorf("save quick store: %w", err)
	}
	if err := export.WriteReports(a.cfg.ExportDir, a.detail.Details()); err != nil {
		return analyzed, fmt.Errorf("write reports: %w", err)
	}
	return analyzed, ctx.Err()
}

// promisingTraders loads the exported address list, falling back to
// re-deriving it from the quick store when the file is absent.
func (a *DeepAnalyzer) promisingTraders(limit int) []string {
	addrs, ok := store.LoadPromising(a.cfg.PromisingFile)
	if !ok {
		a.mu.Lock()
		for addr, t := range a.quick.Traders {
			if !t.MeetsThresholds(a.cfg.MinPnL, a.cfg.MinWinRate, a.cfg.MinTrades) {
				continue
			}
			if _, done := a.detail.Traders[addr]; done {
				continue
			}
			addrs = append(addrs, addr)
		}
		a.mu.Unlock()
		sort.Strings(addrs)
	}
	if len(addrs) > limit {
		addrs = addrs[:limit]
	}
	return addrs
}

// AnalyzeTrader fetches one trader's activity and computes the detail record.
// A trader with no trades returns (nil, nil): a skip, not an error.
func (a *DeepAnalyzer) AnalyzeTrader(ctx context.Context, address string) (*models.TraderDetail, error) {
	trades, positions, err := a.fetchActivity(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	a.mu.Lock()
	prior, ok := a.quick.Traders[address]
	a.mu.Unlock()
	if !ok {
		prior = stats.Summarize(address, trades, positions, now)
	}

	both := analysis.BothSides(trades)
	odds := analysis.ExtremeOdds(trades)
	freq := analysis.TradingFrequency(trades)
	mainCategory, specialization := analysis.MainCategory(trades)

	detail := models.TraderDetail{
		TraderSummary: prior,

		Badges:            analysis.Badges(trades, positions),
		MainCategory:      mainCategory,
		SpecializationPct: stats.Round3(specialization),

		BothSidesMarkets: both.BothSidesMarkets,
		TotalMarkets:     both.TotalMarkets,
		BothSidesRatio:   stats.Round3(both.Ratio),
		TradesBothSides:  both.Flagged,

		ExtremeLowPct:      stats.Round3(odds.LowPct),
		ExtremeHighPct:     stats.Round3(odds.HighPct),
		ReasonableOddsPct:  stats.Round3(odds.ReasonablePct),
		AvgEntryPrice:      stats.Round3(odds.AvgPrice),
		AvgReasonablePrice: stats.Round3(odds.AvgReasonablePrice),

		MaxDrawdown:   stats.Round2(analysis.MaxDrawdown(positions)),
		UniqueMarkets: analysis.UniqueMarkets(trades),

		MaxTradesPerHour: freq.MaxTradesPerHour,
		AvgTradesPerHour: stats.Round2(freq.AvgTradesPerHour),
		ActiveHours:      freq.ActiveHours,
		HighFrequency:    freq.HighFrequency,

		IsCleanTrader: analysis.IsClean(both, freq, odds),
		AnalyzedAt:    now,
	}
	detail.DetailedAnalysis = true
	return &detail, nil
}

// Merge applies a detail record to the detail store and carries the
// detailed-analysis flag back into the quick store. Safe to call
// concurrently with AnalyzeTrader.
func (a *DeepAnalyzer) Merge(detail models.TraderDetail) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detail.Traders[detail.Address] = detail
	if summary, ok := a.quick.Traders[detail.Address]; ok {
		summary.DetailedAnalysis = true
		a.quick.Traders[detail.Address] = summary
	}
}

// fetchActivity returns the trader's trades and positions, consulting the
// cache first. A fetch failure degrades to empty lists; only context
// cancellation propagates.
func (a *DeepAnalyzer) fetchActivity(ctx context.Context, address string) ([]models.Trade, []models.Position, error) {
	if a.cache != nil {
		record, found, err := a.cache.Get(ctx, address)
		if err != nil {
			logging.Debugf("cache get %s: %v", shortAddr(address), err)
		} else if found {
			if record.PositionsLimit >= a.cfg.DeepPositionsLimit {
				return record.Trades, record.Positions, nil
			}
			// The quick scan cached a shallower positions window; keep its
			// trades but refetch positions at the deep limit.
			positions, err := a.client.UserPositions(ctx, address, a.cfg.DeepPositionsLimit)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				logging.Debugf("positions %s: %v", shortAddr(address), err)
				positions = record.Positions
			}
			return record.Trades, positions, nil
		}
	}

	trades, err := a.client.UserTrades(ctx, address, a.cfg.TradesLimit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		logging.Debugf("trades %s: %v", shortAddr(address), err)
		trades = nil
	}
	positions, err := a.client.UserPositions(ctx, address, a.cfg.DeepPositionsLimit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		logging.Debugf("positions %s: %v", shortAddr(address), err)
		positions = nil
	}
	return trades, positions, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func shortAddr(addr string) string {
	if len(addr) > 10 {
		return addr[:10]
	}
	return addr
}
