package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

// ActivityRecord holds one trader's fetched trades and positions so a deep
// analysis shortly after a quick scan can skip the HTTP round trips.
// PositionsLimit is the fetch limit the positions were retrieved with, so a
// reader needing a deeper window knows to refetch.
type ActivityRecord struct {
	Trades         []models.Trade    `json:"trades"`
	Positions      []models.Position `json:"positions"`
	PositionsLimit int               `json:"positions_limit"`
	FetchedAt      time.Time         `json:"fetched_at"`
}

// ActivityCache stores recent fetch results per trader address.
type ActivityCache interface {
	Get(ctx context.Context, address string) (*ActivityRecord, bool, error)
	Set(ctx context.Context, address string, record ActivityRecord) error
	Close() error
}

type redisActivityCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisActivityCache builds a cache keyed by trader address.
func NewRedisActivityCache(addr, password string, db int, ttl time.Duration, prefix string) (ActivityCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if prefix == "" {
		prefix = "trader_activity"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisActivityCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisActivityCache) key(address string) string {
	return fmt.Sprintf("%s:%s", c.prefix, address)
}

func (c *redisActivityCache) Get(ctx context.Context, address string) (*ActivityRecord, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(address)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var record ActivityRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (c *redisActivityCache) Set(ctx context.Context, address string, record ActivityRecord) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(address), payload, c.ttl).Err()
}

func (c *redisActivityCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
