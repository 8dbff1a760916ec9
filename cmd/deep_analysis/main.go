package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/drexon5/polymarket-trader-analyzer/internal/analyzer"
	"github.com/drexon5/polymarket-trader-analyzer/internal/cache"
	"github.com/drexon5/polymarket-trader-analyzer/internal/config"
	"github.com/drexon5/polymarket-trader-analyzer/internal/dataapi"
	"github.com/drexon5/polymarket-trader-analyzer/internal/logging"
	"github.com/drexon5/polymarket-trader-analyzer/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logging.InitFromEnv()

	cfg := config.Load()
	client := dataapi.NewClient(dataapi.Config{BaseURL: cfg.DataAPIURL, Timeout: cfg.HTTPTimeout})
	quick := store.LoadTraders(cfg.QuickFile)
	detail := store.LoadDetails(cfg.DetailedFile)

	var activityCache cache.ActivityCache
	if cfg.RedisAddr != "" {
		c, err := cache.NewRedisActivityCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, "")
		if err != nil {
			logging.Warnf("[deep-analysis] redis cache unavailable: %v", err)
		} else {
			activityCache = c
			defer c.Close()
		}
	}

	a := analyzer.New(cfg, client, quick, detail, activityCache)
	analyzed, err := a.Analyze(ctx, cfg.MaxAnalyze)
	if err != nil {
		logging.Fatalf("[deep-analysis] analyze: %v", err)
	}
	logging.Infof("[deep-analysis] analyzed %d traders in detail", analyzed)
}
