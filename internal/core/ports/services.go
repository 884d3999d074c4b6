package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"eagle-bank-api/internal/core/domain"

	"github.com/shopspring/decimal"
)

// RandomSource draws uniformly distributed integers in [0, n).
type RandomSource interface {
	Intn(n int) (int, error)
}

// AccountNumberGenerator allocates account numbers that are not yet in use.
type AccountNumberGenerator interface {
	// Generate returns a candidate that was free when checked.
	Generate(ctx context.Context) (string, error)
	// Reserve draws candidates and hands each to insert until one is stored.
	// A ErrDuplicateKey from insert counts as a collision.
	Reserve(ctx context.Context, insert func(ctx context.Context, accountNumber string) error) (string, error)
}

// TransactionIDGenerator issues transaction identifiers.
type TransactionIDGenerator interface {
	NewID() string
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID string
}

// IdempotencyCache remembers the outcome recorded for an idempotency key.
type IdempotencyCache interface {
	// Get returns nil, nil when nothing usable is cached for key.
	Get(ctx context.Context, key string) (*domain.IdempotencyEntry, error)
	Set(ctx context.Context, key string, entry *domain.IdempotencyEntry, ttl time.Duration) error
}

// IdempotencyLocker guards an idempotency key while its request is in flight.
// Acquire returns ErrLockHeld when another request owns the key.
type IdempotencyLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// --- Service Ports (Business Logic) ---

// OwnershipGuard checks that the acting user may operate on an account.
type OwnershipGuard interface {
	Authorize(ctx context.Context, userID, accountNumber string) (*domain.Account, error)
}

// BalanceEngine applies a single deposit or withdrawal atomically under the
// account row lock.
type BalanceEngine interface {
	Apply(ctx context.Context, req MutationRequest) (*domain.Transaction, error)
}

// MutationRequest holds validated input for one balance mutation.
type MutationRequest struct {
	AccountNumber string
	UserID        string
	Type          domain.TransactionType
	Amount        decimal.Decimal
	Currency      domain.Currency
	Reference     *string
	// Idempotency, when set, is logged in the same unit of work as the
	// transaction. A key already logged fails Apply with ErrDuplicateKey.
	Idempotency *domain.IdempotencyLog
}

// AccountService defines bank account business logic.
type AccountService interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.Account, error)
	GetAccount(ctx context.Context, accountNumber, userID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, req UpdateAccountRequest) (*domain.Account, error)
}

// CreateAccountRequest holds validated input for account creation.
type CreateAccountRequest struct {
	OwnerID     string
	Name        string
	AccountType domain.AccountType
	Currency    domain.Currency
}

// UpdateAccountRequest holds a partial update. Nil fields are left unchanged.
type UpdateAccountRequest struct {
	AccountNumber string
	UserID        string
	Name          *string
	AccountType   *domain.AccountType
}

// TransactionService defines transaction business logic.
type TransactionService interface {
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, accountNumber, userID string) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, accountNumber, transactionID, userID string) (*domain.Transaction, error)
}

// CreateTransactionRequest holds validated input for a deposit or withdrawal.
type CreateTransactionRequest struct {
	MutationRequest
	IdempotencyKey string // optional
}
