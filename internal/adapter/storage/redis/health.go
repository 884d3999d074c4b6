package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// probeKey is written on every readiness check. The idempotency lock and
// cache both need a writable primary, so a successful PING alone is not
// enough: a replica answers PING but rejects SET with READONLY.
const (
	probeKey = keyPrefix + "health:probe"
	probeTTL = 5 * time.Second
)

// HealthCheck reports Redis as ready only when it accepts writes.
type HealthCheck struct {
	client goredis.UniversalClient
}

func NewHealthCheck(client goredis.UniversalClient) *HealthCheck {
	return &HealthCheck{client: client}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := h.client.Set(ctx, probeKey, time.Now().UTC().Unix(), probeTTL).Err(); err != nil {
		return fmt.Errorf("redis write probe: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "redis"
}
