package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

var errForeignTx = errors.New("memory: transaction was not started by this store")

// Tx is a unit of work over a Store. It satisfies pgx.Tx so it can travel
// through the same ports as a database transaction; only Commit and Rollback
// are meaningful, the embedded interface is nil.
type Tx struct {
	pgx.Tx

	store *Store

	mu       sync.Mutex
	held     map[string]struct{}
	accounts map[string]domain.Account
	txns     []domain.Transaction
	logs     []domain.IdempotencyLog
	closed   bool
}

// Transactor implements ports.DBTransactor for the in-memory store.
type Transactor struct {
	store *Store
}

// NewTransactor creates a Transactor over store.
func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// Begin starts a new unit of work.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:    t.store,
		held:     make(map[string]struct{}),
		accounts: make(map[string]domain.Account),
	}, nil
}

// Commit publishes staged writes and releases every held account lock.
func (tx *Tx) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	defer tx.releaseLocked()

	return tx.store.commit(tx.accounts, tx.txns, tx.logs)
}

// Rollback discards staged writes and releases every held account lock.
// Rolling back a closed transaction returns pgx.ErrTxClosed, as pgx does.
func (tx *Tx) Rollback(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	tx.releaseLocked()
	return nil
}

func (tx *Tx) releaseLocked() {
	for num := range tx.held {
		tx.store.unlock(num)
	}
	tx.held = nil
	tx.accounts = nil
	tx.txns = nil
	tx.logs = nil
}

func (tx *Tx) acquire(ctx context.Context, accountNumber string) error {
	tx.mu.Lock()
	if tx.closed {
		tx.mu.Unlock()
		return pgx.ErrTxClosed
	}
	if _, ok := tx.held[accountNumber]; ok {
		tx.mu.Unlock()
		return nil
	}
	tx.mu.Unlock()

	if err := tx.store.lock(ctx, accountNumber); err != nil {
		return err
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		tx.store.unlock(accountNumber)
		return pgx.ErrTxClosed
	}
	tx.held[accountNumber] = struct{}{}
	return nil
}

func (tx *Tx) release(accountNumber string) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if _, ok := tx.held[accountNumber]; ok && !tx.closed {
		delete(tx.held, accountNumber)
		tx.store.unlock(accountNumber)
	}
}

// view returns the account as this transaction sees it.
func (tx *Tx) view(accountNumber string) (domain.Account, bool) {
	tx.mu.Lock()
	staged, ok := tx.accounts[accountNumber]
	tx.mu.Unlock()
	if ok {
		return staged, true
	}
	return tx.store.getAccount(accountNumber)
}

func (tx *Tx) stageAccount(a domain.Account) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return pgx.ErrTxClosed
	}
	if _, ok := tx.held[a.AccountNumber]; !ok {
		return fmt.Errorf("account %s is not locked by this transaction", a.AccountNumber)
	}
	tx.accounts[a.AccountNumber] = a
	return nil
}

func (tx *Tx) stageTransaction(t domain.Transaction) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.txns = append(tx.txns, t)
	return nil
}

func (tx *Tx) stageIdempotency(l domain.IdempotencyLog) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return pgx.ErrTxClosed
	}
	for _, staged := range tx.logs {
		if staged.Key == l.Key {
			return fmt.Errorf("idempotency key %s: %w", l.Key, ports.ErrDuplicateKey)
		}
	}
	tx.logs = append(tx.logs, l)
	return nil
}

func asTx(tx pgx.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx == nil {
		return nil, errForeignTx
	}
	return mtx, nil
}
