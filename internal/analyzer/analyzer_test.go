package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drexon5/polymarket-trader-analyzer/internal/cache"
	"github.com/drexon5/polymarket-trader-analyzer/internal/config"
	"github.com/drexon5/polymarket-trader-analyzer/internal/dataapi"
	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
	"github.com/drexon5/polymarket-trader-analyzer/internal/store"
)

type fakeAPI struct {
	mu        sync.Mutex
	hits      map[string]int
	trades    map[string][]models.Trade
	positions map[string][]models.Position
}

func (f *fakeAPI) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		if f.hits == nil {
			f.hits = make(map[string]int)
		}
		f.hits[r.URL.Path]++
		f.mu.Unlock()

		user := r.URL.Query().Get("user")
		switch r.URL.Path {
		case "/trades":
			json.NewEncoder(w).Encode(f.trades[user])
		case "/positions":
			json.NewEncoder(w).Encode(f.positions[user])
		default:
			http.NotFound(w, r)
		}
	})
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		DataAPIURL:          baseURL,
		HTTPTimeout:         5 * time.Second,
		QuickFile:           filepath.Join(dir, "traders_quick.json"),
		DetailedFile:        filepath.Join(dir, "traders_detailed.json"),
		PromisingFile:       filepath.Join(dir, "promising_traders.json"),
		ExportDir:           dir,
		TradesLimit:         500,
		QuickPositionsLimit: 100,
		DeepPositionsLimit:  200,
		MaxAnalyze:          100,
		MinPnL:              200,
		MinWinRate:          0.5,
		MinTrades:           20,
	}
}

func bothSidesTrades() []models.Trade {
	return []models.Trade{
		{ConditionID: "m1", Side: "BUY", Price: 0.5, Size: 1, Timestamp: 1_700_000_000},
		{ConditionID: "m1", Side: "SELL", Price: 0.5, Size: 1, Timestamp: 1_700_000_100},
		{ConditionID: "m2", Side: "BUY", Price: 0.3, Size: 1, Timestamp: 1_700_003_700},
	}
}

func TestAnalyzeMarksBothSidesTraderUnclean(t *testing.T) {
	api := &fakeAPI{
		trades: map[string][]models.Trade{
			"0xaaa": bothSidesTrades(),
			// 0xbbb has no trades and is skipped.
		},
		positions: map[string][]models.Position{
			"0xaaa": {{CashPnL: 250}, {CashPnL: -20}},
		},
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	cfg := testConfig(t, server.URL)
	require.NoError(t, store.SavePromising(cfg.PromisingFile, []string{"0xaaa", "0xbbb"}))

	client := dataapi.NewClient(dataapi.Config{BaseURL: cfg.DataAPIURL, Timeout: cfg.HTTPTimeout})
	quick := store.LoadTraders(cfg.QuickFile)
	quick.Traders["0xaaa"] = models.TraderSummary{Address: "0xaaa", Username: "alice", PnL: 230, WinRate: 0.6, Trades: 30}
	detail := store.LoadDetails(cfg.DetailedFile)

	a := New(cfg, client, quick, detail, nil)
	analyzed, err := a.Analyze(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, analyzed)

	d, ok := detail.Traders["0xaaa"]
	require.True(t, ok)
	assert.Equal(t, "alice", d.Username)
	assert.Equal(t, 1, d.BothSidesMarkets)
	assert.Equal(t, 2, d.TotalMarkets)
	assert.Equal(t, 0.5, d.BothSidesRatio)
	assert.True(t, d.TradesBothSides)
	// All entry prices are reasonable, yet both-sides betting forces unclean.
	assert.Equal(t, 1.0, d.ReasonableOddsPct)
	assert.False(t, d.IsCleanTrader)
	assert.True(t, d.DetailedAnalysis)
	assert.Equal(t, 2, d.UniqueMarkets)

	// The flag is carried back into the quick store.
	assert.True(t, quick.Traders["0xaaa"].DetailedAnalysis)

	// No record for the zero-trade trader.
	_, ok = detail.Traders["0xbbb"]
	assert.False(t, ok)
}

func TestAnalyzeWritesReports(t *testing.T) {
	api := &fakeAPI{
		trades:    map[string][]models.Trade{"0xaaa": bothSidesTrades()},
		positions: map[string][]models.Position{},
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	cfg := testConfig(t, server.URL)
	require.NoError(t, store.SavePromising(cfg.PromisingFile, []string{"0xaaa"}))

	client := dataapi.NewClient(dataapi.Config{BaseURL: cfg.DataAPIURL, Timeout: cfg.HTTPTimeout})
	quick := store.LoadTraders(cfg.QuickFile)
	detail := store.LoadDetails(cfg.DetailedFile)

	a := New(cfg, client, quick, detail, nil)
	_, err := a.Analyze(context.Background(), 100)
	require.NoError(t, err)

	for _, name := range []string{"traders_detailed_all.csv", "traders_clean.csv", "traders_other.csv"} {
		_, err := os.Stat(filepath.Join(cfg.ExportDir, name))
		assert.NoError(t, err, name)
	}

	// Detail store persisted.
	reloaded := store.LoadDetails(cfg.DetailedFile)
	assert.Len(t, reloaded.Traders, 1)
}

func TestAnalyzeDerivesPromisingWhenFileMissing(t *testing.T) {
	api := &fakeAPI{
		trades:    map[string][]models.Trade{"0xaaa": bothSidesTrades()},
		positions: map[string][]models.Position{},
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	cfg := testConfig(t, server.URL)
	client := dataapi.NewClient(dataapi.Config{BaseURL: cfg.DataAPIURL, Timeout: cfg.HTTPTimeout})
	quick := store.LoadTraders(cfg.QuickFile)
	quick.Traders["0xaaa"] = models.TraderSummary{Address: "0xaaa", PnL: 500, WinRate: 0.7, Trades: 50}
	quick.Traders["0xlow"] = models.TraderSummary{Address: "0xlow", PnL: 10, WinRate: 0.2, Trades: 3}
	detail := store.LoadDetails(cfg.DetailedFile)

	a := New(cfg, client, quick, detail, nil)
	analyzed, err := a.Analyze(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, 1, analyzed)
	_, ok := detail.Traders["0xaaa"]
	assert.True(t, ok)
}

type memCache struct {
	records map[string]cache.ActivityRecord
}

func (m *memCache) Get(_ context.Context, address string) (*cache.ActivityRecord, bool, error) {
	record, ok := m.records[address]
	if !ok {
		return nil, false, nil
	}
	return &record, true, nil
}

func (m *memCache) Set(_ context.Context, address string, record cache.ActivityRecord) error {
	m.records[address] = record
	return nil
}

func (m *memCache) Close() error { return nil }

func TestAnalyzeTraderRefetchesShallowCachedPositions(t *testing.T) {
	api := &fakeAPI{
		positions: map[string][]models.Position{
			"0xaaa": {{CashPnL: 250}, {CashPnL: -40}, {CashPnL: 30}},
		},
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	cfg := testConfig(t, server.URL)
	client := dataapi.NewClient(dataapi.Config{BaseURL: cfg.DataAPIURL, Timeout: cfg.HTTPTimeout})
	c := &memCache{records: map[string]cache.ActivityRecord{
		"0xaaa": {
			Trades:         bothSidesTrades(),
			Positions:      []models.Position{{CashPnL: 250}},
			PositionsLimit: cfg.QuickPositionsLimit,
		},
	}}

	a := New(cfg, client, store.LoadTraders(cfg.QuickFile), store.LoadDetails(cfg.DetailedFile), c)
	d, err := a.AnalyzeTrader(context.Background(), "0xaaa")
	require.NoError(t, err)
	require.NotNil(t, d)

	// Trades come from the cache; positions were cached at the quick-scan
	// limit, so they are refetched at the deep limit.
	assert.Equal(t, 0, api.hitCount("/trades"))
	assert.Equal(t, 1, api.hitCount("/positions"))
	assert.Equal(t, 240.0, d.PnL)
	assert.Equal(t, 2, d.Wins)
	assert.Equal(t, 1, d.Losses)
}

func TestAnalyzeTraderUsesDeepCachedRecord(t *testing.T) {
	api := &fakeAPI{}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	cfg := testConfig(t, server.URL)
	client := dataapi.NewClient(dataapi.Config{BaseURL: cfg.DataAPIURL, Timeout: cfg.HTTPTimeout})
	c := &memCache{records: map[string]cache.ActivityRecord{
		"0xaaa": {
			Trades:         bothSidesTrades(),
			Positions:      []models.Position{{CashPnL: 100}},
			PositionsLimit: cfg.DeepPositionsLimit,
		},
	}}

	a := New(cfg, client, store.LoadTraders(cfg.QuickFile), store.LoadDetails(cfg.DetailedFile), c)
	d, err := a.AnalyzeTrader(context.Background(), "0xaaa")
	require.NoError(t, err)
	require.NotNil(t, d)

	// A record cached at the deep limit needs no HTTP at all.
	assert.Equal(t, 0, api.hitCount("/trades"))
	assert.Equal(t, 0, api.hitCount("/positions"))
	assert.Equal(t, 100.0, d.PnL)
}

func TestAnalyzeTraderConcurrentWithMerge(t *testing.T) {
	// The kafka worker pool calls AnalyzeTrader and Merge from separate
	// goroutines over the same stores.
	api := &fakeAPI{
		trades:    map[string][]models.Trade{"0xaaa": bothSidesTrades()},
		positions: map[string][]models.Position{"0xaaa": {{CashPnL: 50}}},
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	cfg := testConfig(t, server.URL)
	client := dataapi.NewClient(dataapi.Config{BaseURL: cfg.DataAPIURL, Timeout: cfg.HTTPTimeout})
	quick := store.LoadTraders(cfg.QuickFile)
	quick.Traders["0xaaa"] = models.TraderSummary{Address: "0xaaa", Username: "alice"}
	a := New(cfg, client, quick, store.LoadDetails(cfg.DetailedFile), nil)

	merged := models.TraderDetail{
		TraderSummary: models.TraderSummary{Address: "0xaaa", Username: "alice", DetailedAnalysis: true},
	}

	const rounds = 25
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := a.AnalyzeTrader(context.Background(), "0xaaa"); err != nil {
				t.Errorf("analyze: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			a.Merge(merged)
		}
	}()
	wg.Wait()

	assert.True(t, quick.Traders["0xaaa"].DetailedAnalysis)
}

func TestAnalyzeTraderBuildsSummaryWhenQuickRecordMissing(t *testing.T) {
	api := &fakeAPI{
		trades:    map[string][]models.Trade{"0xnew": bothSidesTrades()},
		positions: map[string][]models.Position{"0xnew": {{CashPnL: 100}}},
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	cfg := testConfig(t, server.URL)
	client := dataapi.NewClient(dataapi.Config{BaseURL: cfg.DataAPIURL, Timeout: cfg.HTTPTimeout})
	a := New(cfg, client, store.LoadTraders(cfg.QuickFile), store.LoadDetails(cfg.DetailedFile), nil)

	d, err := a.AnalyzeTrader(context.Background(), "0xnew")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "0xnew", d.Address)
	assert.Equal(t, 3, d.Trades)
	assert.Equal(t, 100.0, d.PnL)
}
