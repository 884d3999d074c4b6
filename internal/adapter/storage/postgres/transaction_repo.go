package postgres

import (
	"context"
	"errors"
	"fmt"

	"eagle-bank-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, account_number, amount::text, currency, type, reference, user_id, created_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create appends a transaction within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, account_number, amount, currency, type, reference, user_id, created_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.AccountNumber, t.Amount.StringFixed(domain.MaxScale), string(t.Currency),
		string(t.Type), t.Reference, t.UserID, t.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert transaction", err)
	}
	return nil
}

// ListByAccount returns the full history of an account in commit order. seq
// is assigned under the account row lock, so application clocks never reorder it.
func (r *TransactionRepo) ListByAccount(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE account_number = $1 ORDER BY seq`

	rows, err := r.pool.Query(ctx, query, accountNumber)
	if err != nil {
		return nil, wrapErr("list transactions", err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// GetByID fetches a transaction only if it belongs to accountNumber.
func (r *TransactionRepo) GetByID(ctx context.Context, id string, accountNumber string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND account_number = $2`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id, accountNumber))
	if err != nil {
		return nil, wrapErr("get transaction", err)
	}
	return t, nil
}

// scanTransaction returns (nil, nil) on pgx.ErrNoRows.
func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t        domain.Transaction
		amount   string
		currency string
		typ      string
	)
	err := row.Scan(&t.ID, &t.AccountNumber, &amount, &currency, &typ, &t.Reference, &t.UserID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	t.Currency = domain.Currency(currency)
	t.Type = domain.TransactionType(typ)
	return &t, nil
}
