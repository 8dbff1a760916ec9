package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	"github.com/drexon5/polymarket-trader-analyzer/internal/analyzer"
	"github.com/drexon5/polymarket-trader-analyzer/internal/cache"
	"github.com/drexon5/polymarket-trader-analyzer/internal/config"
	"github.com/drexon5/polymarket-trader-analyzer/internal/dataapi"
	kafkautil "github.com/drexon5/polymarket-trader-analyzer/internal/kafka"
	"github.com/drexon5/polymarket-trader-analyzer/internal/logging"
	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
	"github.com/drexon5/polymarket-trader-analyzer/internal/store"
	"github.com/drexon5/polymarket-trader-analyzer/internal/workers"
)

// Runs the deep analysis as a long-lived consumer over the promising-trader
// topic instead of the exported JSON list.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logging.InitFromEnv()

	cfg := config.Load()
	brokers := kafkautil.Brokers()
	topic := kafkautil.TopicFromEnv("PROMISING_KAFKA_TOPIC", kafkautil.DefaultPromisingTopic)
	group := envString("PROMISING_WORKER_GROUP", "promising-worker")
	workerCount := envInt("PROMISING_WORKER_COUNT", 1)

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafkautil.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[promising-worker] wait for broker: %v", err)
	}
	cancel()

	client := dataapi.NewClient(dataapi.Config{BaseURL: cfg.DataAPIURL, Timeout: cfg.HTTPTimeout})
	quick := store.LoadTraders(cfg.QuickFile)
	detail := store.LoadDetails(cfg.DetailedFile)

	var activityCache cache.ActivityCache
	if cfg.RedisAddr != "" {
		c, err := cache.NewRedisActivityCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, "")
		if err != nil {
			logging.Warnf("[promising-worker] redis cache unavailable: %v", err)
		} else {
			activityCache = c
			defer c.Close()
		}
	}

	a := analyzer.New(cfg, client, quick, detail, activityCache)

	// Merge is synchronized inside the analyzer; this mutex keeps each
	// merge-and-save step atomic so file writes never interleave.
	var mu sync.Mutex
	handler := func(ctx context.Context, summary models.TraderSummary) error {
		result, err := a.AnalyzeTrader(ctx, summary.Address)
		if err != nil {
			return err
		}
		if result == nil {
			logging.Debugf("[promising-worker] skip %s: no trades", summary.Address)
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		a.Merge(*result)
		if err := detail.Save(); err != nil {
			return err
		}
		if err := quick.Save(); err != nil {
			return err
		}
		logging.Infof("[promising-worker] analyzed %s (clean=%v)", result.Address, result.IsCleanTrader)
		return nil
	}

	logging.Infof("[promising-worker] consuming %s with group %s (%d workers)", topic, group, workerCount)
	workers.Run(ctx, brokers, topic, group, workerCount, handler)
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
