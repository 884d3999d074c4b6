package memory

import (
	"context"
	"fmt"

	"eagle-bank-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository over a Store.
type TransactionRepo struct {
	store *Store
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(store *Store) *TransactionRepo {
	return &TransactionRepo{store: store}
}

// Create stages t; it is appended to the ledger when tx commits.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := mtx.stageTransaction(*t); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByAccount returns a copy of the account history in commit order.
func (r *TransactionRepo) ListByAccount(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	history := r.store.transactions[accountNumber]
	out := make([]domain.Transaction, len(history))
	copy(out, history)
	return out, nil
}

// GetByID returns the transaction only if it was recorded against accountNumber.
func (r *TransactionRepo) GetByID(ctx context.Context, id string, accountNumber string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, t := range r.store.transactions[accountNumber] {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}
