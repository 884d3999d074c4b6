package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eagle-bank-api/internal/core/ports"

	"github.com/go-redsync/redsync/v4"
	redsyncgoredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// unlockTimeout bounds the release call, which runs after the request
// context may already be done.
const unlockTimeout = 2 * time.Second

// IdempotencyLocker implements ports.IdempotencyLocker with a redsync mutex
// per idempotency key. Acquisition is a single try: a held key means a
// request with the same key is in flight.
type IdempotencyLocker struct {
	rs     *redsync.Redsync
	prefix string
	log    zerolog.Logger
}

// NewIdempotencyLocker creates a locker on client.
func NewIdempotencyLocker(client goredis.UniversalClient, log zerolog.Logger) *IdempotencyLocker {
	return &IdempotencyLocker{
		rs:     redsync.New(redsyncgoredis.NewPool(client)),
		prefix: keyPrefix + "idempotency-lock:",
		log:    log,
	}
}

// Acquire takes the lock for key. It returns ports.ErrLockHeld if another
// holder has it. The returned release is safe to call once.
func (l *IdempotencyLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	mutex := l.rs.NewMutex(l.prefix+key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.As(err, &taken) || errors.Is(err, redsync.ErrFailed) {
			return nil, fmt.Errorf("idempotency key %s: %w", key, ports.ErrLockHeld)
		}
		return nil, fmt.Errorf("redis idempotency lock: %w", err)
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()
		if ok, err := mutex.UnlockContext(ctx); err != nil || !ok {
			// The lock expires on its own after ttl.
			l.log.Warn().Err(err).Str("key", key).Msg("failed to release idempotency lock")
		}
	}
	return release, nil
}
