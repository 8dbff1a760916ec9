// Package scanner implements the phase-1 quick scan: discover recently
// active trader addresses and build basic per-trader stats in parallel.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/drexon5/polymarket-trader-analyzer/internal/cache"
	"github.com/drexon5/polymarket-trader-analyzer/internal/config"
	"github.com/drexon5/polymarket-trader-analyzer/internal/dataapi"
	"github.com/drexon5/polymarket-trader-analyzer/internal/logging"
	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
	"github.com/drexon5/polymarket-trader-analyzer/internal/queue"
	"github.com/drexon5/polymarket-trader-analyzer/internal/stats"
	"github.com/drexon5/polymarket-trader-analyzer/internal/storage/sqlite"
	"github.com/drexon5/polymarket-trader-analyzer/internal/store"
)

var errNoActivity = errors.New("no trade activity")

// QuickScanner fetches recent activity and upserts summary records into the
// quick store. The cache, kafka writer, and archive are optional; pass nil to
// run file-only.
type QuickScanner struct {
	cfg     *config.Config
	client  *dataapi.Client
	store   *store.TraderStore
	cache   cache.ActivityCache
	writer  *kafkago.Writer
	archive *sqlite.Archive
}

// New builds a quick scanner.
func New(cfg *config.Config, client *dataapi.Client, st *store.TraderStore, activityCache cache.ActivityCache, writer *kafkago.Writer, archive *sqlite.Archive) *QuickScanner {
	return &QuickScanner{
		cfg:     cfg,
		client:  client,
		store:   st,
		cache:   activityCache,
		writer:  writer,
		archive: archive,
	}
}

// Result summarizes one scan run.
type Result struct {
	Scanned int
	New     int
	Updated int
	Total   int
}

// Scan runs one quick-scan pass: collect candidate addresses from the recent
// activity feed, scan up to targetNew of them over a bounded worker pool,
// upsert the store, and export the promising-address list.
func (s *QuickScanner) Scan(ctx context.Context, targetNew, maxWorkers int) (Result, error) {
	if targetNew <= 0 {
		targetNew = s.cfg.TargetNew
	}
	if maxWorkers <= 0 {
		maxWorkers = s.cfg.MaxWorkers
	}

	logging.Infof("quick scan: target=%d workers=%d", targetNew, maxWorkers)

	recent, err := s.collectAddresses(ctx)
	if err != nil {
		return Result{}, err
	}
	logging.Infof("found %d unique active traders", len(recent))

	var fresh, known []string
	for _, addr := range recent {
		if _, ok := s.store.Traders[addr]; ok {
			known = append(known, addr)
		} else {
			fresh = append(fresh, addr)
		}
	}
	logging.Infof("new: %d, already scanned: %d", len(fresh), len(known))

	toScan := fresh
	if len(toScan) > targetNew {
		toScan = toScan[:targetNew]
	}
	if len(toScan) < targetNew && len(known) > 0 {
		fill := targetNew - len(toScan)
		if fill > len(known) {
			fill = len(known)
		}
		toScan = append(toScan, known[:fill]...)
	}

	logging.Infof("scanning %d traders", len(toScan))
	start := time.Now()
	summaries := s.parallelScan(ctx, toScan, maxWorkers)
	elapsed := time.Since(start)
	logging.Infof("scan complete in %.1fs, analyzed %d traders", elapsed.Seconds(), len(summaries))

	result := Result{Scanned: len(summaries)}
	for _, summary := range summaries {
		if _, ok := s.store.Traders[summary.Address]; ok {
			result.Updated++
		} else {
			result.New++
		}
		s.store.Traders[summary.Address] = summary
	}
	result.Total = len(s.store.Traders)

	if err := s.store.Save(); err != nil {
		return result, fmt.Errorf("save quick store: %w", err)
	}

	promising, err := s.ExportPromising()
	if err != nil {
		logging.Errorf("export promising: %v", err)
	}
	if err := queue.PublishPromising(ctx, s.writer, promising); err != nil {
		logging.Errorf("publish promising: %v", err)
	}
	if s.archive != nil {
		if err := s.archive.ArchiveRun(ctx, start.UTC(), summaries); err != nil {
			logging.Errorf("archive run: %v", err)
		}
	}

	return result, ctx.Err()
}

// collectAddresses pulls up to FeedPages pages of the recent activity feed
// and returns the deduplicated participant addresses in first-seen order.
func (s *QuickScanner) collectAddresses(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var addresses []string

	for page := 0; page < s.cfg.FeedPages; page++ {
		trades, err := s.client.RecentTrades(ctx, s.cfg.FeedLimit, page*s.cfg.FeedLimit)
		if err != nil {
			if ctx.Err() != nil {
				return addresses, ctx.Err()
			}
			logging.Warnf("fetch activity page %d: %v", page, err)
			break
		}
		for _, t := range trades {
			if t.ProxyWallet == "" {
				continue
			}
			if _, ok := seen[t.ProxyWallet]; ok {
				continue
			}
			seen[t.ProxyWallet] = struct{}{}
			addresses = append(addresses, t.ProxyWallet)
		}
		if len(trades) < s.cfg.FeedLimit {
			break
		}
		if err := sleep(ctx, s.cfg.PageDelay); err != nil {
			return addresses, err
		}
	}
	return addresses, nil
}

// parallelScan fetches and summarizes each address over a bounded worker
// pool. A failed address is a lost data point, never a batch failure; results
// are applied to the store by the caller in completion order.
func (s *QuickScanner) parallelScan(ctx context.Context, addresses []string, maxWorkers int) []models.TraderSummary {
	results := make(chan models.TraderSummary, len(addresses))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup
	var completed atomic.Int64

	for _, addr := range addresses {
		wg.Add(1)
		go func(address string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			summary, err := s.scanTrader(ctx, address)
			if done := completed.Add(1); done%10 == 0 {
				logging.Infof("completed: %d/%d", done, len(addresses))
			}
			if err != nil {
				logging.Debugf("skip %s: %v", shortAddr(address), err)
				return
			}
			results <- summary
		}(addr)
	}

	wg.Wait()
	close(results)

	summaries := make([]models.TraderSummary, 0, len(addresses))
	for summary := range results {
		summaries = append(summaries, summary)
	}
	return summaries
}

// scanTrader fetches one trader's activity and computes the summary record.
func (s *QuickScanner) scanTrader(ctx context.Context, address string) (models.TraderSummary, error) {
	trades, err := s.client.UserTrades(ctx, address, s.cfg.TradesLimit)
	if err != nil {
		return models.TraderSummary{}, err
	}
	if len(trades) == 0 {
		return models.TraderSummary{}, errNoActivity
	}

	positions, err := s.client.UserPositions(ctx, address, s.cfg.QuickPositionsLimit)
	if err != nil {
		logging.Debugf("positions %s: %v", shortAddr(address), err)
		positions = nil
	}

	now := time.Now().UTC()
	if s.cache != nil {
		record := cache.ActivityRecord{
			Trades:         trades,
			Positions:      positions,
			PositionsLimit: s.cfg.QuickPositionsLimit,
			FetchedAt:      now,
		}
		if err := s.cache.Set(ctx, address, record); err != nil {
			logging.Debugf("cache set %s: %v", shortAddr(address), err)
		}
	}

	return stats.Summarize(address, trades, positions, now), nil
}

// ExportPromising filters the store by the promising thresholds, writes the
// qualifying address list, and returns the matching summaries.
func (s *QuickScanner) ExportPromising() ([]models.TraderSummary, error) {
	var addrs []string
	for addr, t := range s.store.Traders {
		if t.MeetsThresholds(s.cfg.MinPnL, s.cfg.MinWinRate, s.cfg.MinTrades) && !t.DetailedAnalysis {
			addrs = append(addrs, addr)
		}
	}
	sort.Strings(addrs)

	if err := store.SavePromising(s.cfg.PromisingFile, addrs); err != nil {
		return nil, err
	}
	logging.Infof("exported %d promising traders for deep analysis", len(addrs))

	summaries := make([]models.TraderSummary, 0, len(addrs))
	for _, addr := range addrs {
		summaries = append(summaries, s.store.Traders[addr])
	}
	return summaries, nil
}

// Stats renders a short database summary for the console.
func (s *QuickScanner) Stats() string {
	total := len(s.store.Traders)
	if total == 0 {
		return "no traders scanned yet"
	}

	var pnlSum, wrSum float64
	var detailed, promising int
	for _, t := range s.store.Traders {
		pnlSum += t.PnL
		wrSum += t.WinRate
		if t.DetailedAnalysis {
			detailed++
		}
		if t.MeetsThresholds(s.cfg.MinPnL, s.cfg.MinWinRate, s.cfg.MinTrades) {
			promising++
		}
	}
	return fmt.Sprintf(
		"traders=%d avg_pnl=$%.2f avg_win_rate=%.1f%% detailed=%d promising=%d",
		total, pnlSum/float64(total), 100*wrSum/float64(total), detailed, promising,
	)
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
