package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"op_trader/pricing/internal/logic"

	"github.com/redis/go-redis/v9"
)

const DefaultRatesTTL = 24 * time.Hour

// RateSnapshot is a rate table together with the time it was fetched.
type RateSnapshot struct {
	Table     logic.RateTable `json:"table"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// RateCache keeps the last fetched rate table in redis so a restarted
// service can quote before its first fetch completes.
type RateCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRateCache(addr, password string, db int, ttl time.Duration) *RateCache {
	return NewRateCacheFromClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), ttl)
}

func NewRateCacheFromClient(client *redis.Client, ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = DefaultRatesTTL
	}
	return &RateCache{client: client, ttl: ttl}
}

// Ping verifies connectivity and credentials.
func (c *RateCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func ratesKey(base string) string {
	return "rates:" + base
}

// SaveRates stores the snapshot under rates:<base>.
func (c *RateCache) SaveRates(ctx context.Context, snap RateSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode rates: %w", err)
	}
	if err := c.client.Set(ctx, ratesKey(snap.Table.Base), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save rates: %w", err)
	}
	return nil
}

// LoadRates returns false when no snapshot is cached for base.
func (c *RateCache) LoadRates(ctx context.Context, base string) (RateSnapshot, bool, error) {
	val, err := c.client.Get(ctx, ratesKey(base)).Bytes()
	if errors.Is(err, redis.Nil) {
		return RateSnapshot{}, false, nil
	} else if err != nil {
		return RateSnapshot{}, false, fmt.Errorf("failed to load rates: %w", err)
	}

	var snap RateSnapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return RateSnapshot{}, false, fmt.Errorf("failed to decode rates: %w", err)
	}
	snap.Table = logic.NewRateTable(snap.Table.Base, snap.Table.Rates)
	return snap, true, nil
}

func (c *RateCache) Close() error {
	return c.client.Close()
}
