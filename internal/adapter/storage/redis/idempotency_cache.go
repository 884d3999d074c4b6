package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eagle-bank-api/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// recordVersion tags cached entries. Entries with another version are
// ignored so a rolling deploy never replays a half-understood transaction.
// Version 1 carried no request fingerprint.
const recordVersion = 2

type idempotencyRecord struct {
	Version int `json:"v"`
	domain.IdempotencyEntry
}

// IdempotencyCache implements ports.IdempotencyCache using Redis.
type IdempotencyCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewIdempotencyCache creates a new Redis-backed idempotency cache.
func NewIdempotencyCache(client goredis.UniversalClient) *IdempotencyCache {
	return &IdempotencyCache{
		client: client,
		prefix: keyPrefix + "idempotency:",
	}
}

// Get returns the outcome recorded for key. Unknown keys and entries of
// another record version are a miss.
func (c *IdempotencyCache) Get(ctx context.Context, key string) (*domain.IdempotencyEntry, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis idempotency get: %w", err)
	}

	var rec idempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode idempotency entry: %w", err)
	}
	if rec.Version != recordVersion || rec.Transaction == nil || rec.Fingerprint == "" {
		return nil, nil
	}
	return &rec.IdempotencyEntry, nil
}

// Set records entry under key for ttl.
func (c *IdempotencyCache) Set(ctx context.Context, key string, entry *domain.IdempotencyEntry, ttl time.Duration) error {
	raw, err := json.Marshal(idempotencyRecord{Version: recordVersion, IdempotencyEntry: *entry})
	if err != nil {
		return fmt.Errorf("encode idempotency entry: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}
