package postgres

import (
	"context"
	"errors"

	"eagle-bank-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository.
type IdempotencyRepo struct {
	pool Pool
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// Create claims log.Key inside tx. A key claimed by a committed transaction
// fails with ports.ErrDuplicateKey.
func (r *IdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	query := `INSERT INTO idempotency_keys (key, fingerprint, account_number, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, log.Key, log.Fingerprint, log.AccountNumber, log.TransactionID, log.CreatedAt)
	if err != nil {
		return wrapErr("insert idempotency key", err)
	}
	return nil
}

// Get fetches the claim for key, or (nil, nil) if it was never used.
func (r *IdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	query := `SELECT key, fingerprint, account_number, transaction_id, created_at
		FROM idempotency_keys WHERE key = $1`

	log := &domain.IdempotencyLog{}
	err := r.pool.QueryRow(ctx, query, key).
		Scan(&log.Key, &log.Fingerprint, &log.AccountNumber, &log.TransactionID, &log.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get idempotency key", err)
	}
	return log, nil
}
