package memory

import (
	"context"
	"fmt"

	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository over a Store.
type IdempotencyRepo struct {
	store *Store
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(store *Store) *IdempotencyRepo {
	return &IdempotencyRepo{store: store}
}

// Create stages the claim; it becomes visible when tx commits. Keys already
// committed fail immediately with ports.ErrDuplicateKey.
func (r *IdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if _, ok := r.store.getIdempotency(log.Key); ok {
		return fmt.Errorf("insert idempotency key %s: %w", log.Key, ports.ErrDuplicateKey)
	}
	if err := mtx.stageIdempotency(*log); err != nil {
		return fmt.Errorf("insert idempotency key: %w", err)
	}
	return nil
}

// Get returns the committed claim for key or (nil, nil).
func (r *IdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	l, ok := r.store.getIdempotency(key)
	if !ok {
		return nil, nil
	}
	return &l, nil
}
