package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository over a Store.
type AccountRepo struct {
	store *Store
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(store *Store) *AccountRepo {
	return &AccountRepo{store: store}
}

// Create inserts an account, failing with ports.ErrDuplicateKey if the number is taken.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[a.AccountNumber]; ok {
		return fmt.Errorf("insert account %s: %w", a.AccountNumber, ports.ErrDuplicateKey)
	}
	r.store.accounts[a.AccountNumber] = *a
	r.store.locks[a.AccountNumber] = make(chan struct{}, 1)
	return nil
}

// GetByNumber returns the committed account or (nil, nil).
func (r *AccountRepo) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	a, ok := r.store.getAccount(accountNumber)
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// GetByNumberForUpdate takes the account slot for the lifetime of tx.
func (r *AccountRepo) GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, accountNumber string) (*domain.Account, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	// No row, no lock: matches SELECT ... FOR UPDATE on a missing key.
	if err := mtx.acquire(ctx, accountNumber); err != nil {
		if errors.Is(err, errNoAccount) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account for update: %w", err)
	}

	a, ok := mtx.view(accountNumber)
	if !ok {
		mtx.release(accountNumber)
		return nil, nil
	}
	return &a, nil
}

// ListByOwner returns committed accounts of ownerID, oldest first.
func (r *AccountRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	r.store.mu.RLock()
	accounts := make([]domain.Account, 0)
	for _, a := range r.store.accounts {
		if a.OwnerID == ownerID {
			accounts = append(accounts, a)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].AccountNumber < accounts[j].AccountNumber
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

// Exists reports whether accountNumber is taken.
func (r *AccountRepo) Exists(ctx context.Context, accountNumber string) (bool, error) {
	_, ok := r.store.getAccount(accountNumber)
	return ok, nil
}

// Update stages the account for commit. The caller must hold its lock.
func (r *AccountRepo) Update(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if _, ok := mtx.view(a.AccountNumber); !ok {
		return fmt.Errorf("account not found: %s", a.AccountNumber)
	}
	if err := mtx.stageAccount(*a); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}
