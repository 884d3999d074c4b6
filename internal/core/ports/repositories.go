package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"errors"

	"eagle-bank-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// Storage adapters wrap these sentinels so services can translate them
// without knowing the driver.
var (
	// ErrDuplicateKey signals a unique constraint violation on insert.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrLockTimeout signals that a row lock could not be acquired in time.
	ErrLockTimeout = errors.New("lock wait timeout")
	// ErrLockHeld signals that an advisory lock is owned by someone else.
	ErrLockHeld = errors.New("lock held by another request")
)

// AccountRepository defines persistence operations for bank accounts.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
// Lookups return (nil, nil) when the account does not exist.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, accountNumber string) (*domain.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)
	Exists(ctx context.Context, accountNumber string) (bool, error)
	Update(ctx context.Context, tx pgx.Tx, account *domain.Account) error
}

// TransactionRepository is the append-only ledger of applied transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	// ListByAccount returns the account history in creation order.
	ListByAccount(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
	// GetByID only matches a transaction recorded against accountNumber.
	GetByID(ctx context.Context, id string, accountNumber string) (*domain.Transaction, error)
}

// IdempotencyRepository is the durable log of claimed idempotency keys.
type IdempotencyRepository interface {
	// Create fails with ErrDuplicateKey when the key is already claimed.
	Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error
	// Get returns (nil, nil) for an unclaimed key.
	Get(ctx context.Context, key string) (*domain.IdempotencyLog, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
