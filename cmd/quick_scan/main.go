package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/drexon5/polymarket-trader-analyzer/internal/cache"
	"github.com/drexon5/polymarket-trader-analyzer/internal/config"
	"github.com/drexon5/polymarket-trader-analyzer/internal/dataapi"
	kafkautil "github.com/drexon5/polymarket-trader-analyzer/internal/kafka"
	"github.com/drexon5/polymarket-trader-analyzer/internal/logging"
	"github.com/drexon5/polymarket-trader-analyzer/internal/scanner"
	sqlstore "github.com/drexon5/polymarket-trader-analyzer/internal/storage/sqlite"
	"github.com/drexon5/polymarket-trader-analyzer/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logging.InitFromEnv()

	cfg := config.Load()
	client := dataapi.NewClient(dataapi.Config{BaseURL: cfg.DataAPIURL, Timeout: cfg.HTTPTimeout})
	quick := store.LoadTraders(cfg.QuickFile)

	var activityCache cache.ActivityCache
	if cfg.RedisAddr != "" {
		c, err := cache.NewRedisActivityCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, "")
		if err != nil {
			logging.Warnf("[quick-scan] redis cache unavailable: %v", err)
		} else {
			activityCache = c
			defer c.Close()
		}
	}

	var writer *kafkago.Writer
	if cfg.KafkaEnabled {
		writer = setupWriter(ctx)
		defer func() {
			if writer != nil {
				writer.Close()
			}
		}()
	}

	var archive *sqlstore.Archive
	if cfg.SQLitePath != "" {
		a, err := sqlstore.Open(cfg.SQLitePath)
		if err != nil {
			logging.Warnf("[quick-scan] open archive: %v", err)
		} else {
			archive = a
			defer a.Close()
			if err := a.CreateTables(ctx); err != nil {
				logging.Warnf("[quick-scan] ensure archive schema: %v", err)
				archive = nil
			} else {
				logging.Infof("[quick-scan] archiving runs to %s", a.Path())
			}
		}
	}

	s := scanner.New(cfg, client, quick, activityCache, writer, archive)
	logging.Infof("[quick-scan] db stats: %s", s.Stats())

	result, err := s.Scan(ctx, cfg.TargetNew, cfg.MaxWorkers)
	if err != nil {
		logging.Fatalf("[quick-scan] scan: %v", err)
	}

	logging.Infof("[quick-scan] scanned=%d new=%d updated=%d total=%d",
		result.Scanned, result.New, result.Updated, result.Total)
	if archive != nil {
		if count, err := archive.SnapshotCount(ctx); err == nil {
			logging.Infof("[quick-scan] archive snapshots: %d", count)
		}
	}
}

func setupWriter(ctx context.Context) *kafkago.Writer {
	brokers := kafkautil.Brokers()
	topic := kafkautil.TopicFromEnv("PROMISING_KAFKA_TOPIC", kafkautil.DefaultPromisingTopic)
	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()
	if err := kafkautil.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Warnf("[quick-scan] kafka unavailable: %v", err)
		return nil
	}
	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafkautil.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		logging.Warnf("[quick-scan] ensure topic: %v", err)
	}
	cancelEnsure()
	return kafkautil.NewWriter(brokers, topic)
}
