package postgres

import (
	"context"
	"errors"
	"fmt"

	"eagle-bank-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// balance is read as text and written as a fixed two-place string so the
// NUMERIC(15,2) column round-trips without float conversion.
const accountColumns = `account_number, owner_id, sort_code, name, account_type, balance::text, currency, created_at, updated_at`

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account. A taken account number surfaces as
// ports.ErrDuplicateKey.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (account_number, owner_id, sort_code, name, account_type, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		a.AccountNumber, a.OwnerID, a.SortCode, a.Name, string(a.AccountType),
		a.Balance.StringFixed(domain.MaxScale), string(a.Currency), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert account", err)
	}
	return nil
}

// GetByNumber fetches an account without locking.
func (r *AccountRepo) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, accountNumber))
	if err != nil {
		return nil, wrapErr("get account", err)
	}
	return a, nil
}

// GetByNumberForUpdate fetches an account with pessimistic locking.
// This MUST be called within a transaction; the row stays locked until it ends.
func (r *AccountRepo) GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 FOR UPDATE`

	a, err := scanAccount(tx.QueryRow(ctx, query, accountNumber))
	if err != nil {
		return nil, wrapErr("get account for update", err)
	}
	return a, nil
}

// ListByOwner returns every account owned by ownerID, oldest first.
func (r *AccountRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at, account_number`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, wrapErr("list accounts", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}
	return accounts, nil
}

// Exists reports whether accountNumber is taken.
func (r *AccountRepo) Exists(ctx context.Context, accountNumber string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_number = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, accountNumber).Scan(&exists); err != nil {
		return false, wrapErr("check account exists", err)
	}
	return exists, nil
}

// Update persists name, type and balance within a transaction.
func (r *AccountRepo) Update(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	query := `UPDATE accounts SET name = $2, account_type = $3, balance = $4::numeric, updated_at = $5
		WHERE account_number = $1`

	tag, err := tx.Exec(ctx, query,
		a.AccountNumber, a.Name, string(a.AccountType), a.Balance.StringFixed(domain.MaxScale), a.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update account", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", a.AccountNumber)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAccount returns (nil, nil) on pgx.ErrNoRows.
func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a           domain.Account
		accountType string
		balance     string
		currency    string
	)
	err := row.Scan(
		&a.AccountNumber, &a.OwnerID, &a.SortCode, &a.Name, &accountType,
		&balance, &currency, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	a.AccountType = domain.AccountType(accountType)
	a.Currency = domain.Currency(currency)
	return &a, nil
}
