package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/core/ports"
	"eagle-bank-api/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BalanceEngineImpl implements ports.BalanceEngine.
type BalanceEngineImpl struct {
	accounts   ports.AccountRepository
	txRepo     ports.TransactionRepository
	idempRepo  ports.IdempotencyRepository
	transactor ports.DBTransactor
	ids        ports.TransactionIDGenerator
	maxAmount  decimal.Decimal
	log        zerolog.Logger
}

// NewBalanceEngine creates a new BalanceEngineImpl. maxAmount is the
// per-transaction ceiling.
func NewBalanceEngine(
	accounts ports.AccountRepository,
	txRepo ports.TransactionRepository,
	idempRepo ports.IdempotencyRepository,
	transactor ports.DBTransactor,
	ids ports.TransactionIDGenerator,
	maxAmount decimal.Decimal,
	log zerolog.Logger,
) *BalanceEngineImpl {
	return &BalanceEngineImpl{
		accounts:   accounts,
		txRepo:     txRepo,
		idempRepo:  idempRepo,
		transactor: transactor,
		ids:        ids,
		maxAmount:  maxAmount,
		log:        log,
	}
}

// Apply locks the account row, checks the resulting balance, writes the new
// balance and appends the ledger entry in one database transaction, together
// with the idempotency claim when the request carries one. Any failure after
// Begin rolls everything back. A claim that is already taken returns an error
// wrapping ports.ErrDuplicateKey.
func (e *BalanceEngineImpl) Apply(ctx context.Context, req ports.MutationRequest) (*domain.Transaction, error) {
	if !req.Type.Valid() {
		return nil, apperror.Validation("type must be deposit or withdrawal")
	}
	if !domain.AmountInRange(req.Amount, e.maxAmount) {
		return nil, apperror.ErrAmountOutOfRange(e.maxAmount.StringFixed(domain.MaxScale))
	}

	dbTx, err := e.transactor.Begin(ctx)
	if err != nil {
		return nil, storeError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := e.accounts.GetByNumberForUpdate(ctx, dbTx, req.AccountNumber)
	if err != nil {
		return nil, storeError("lock account", err)
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}

	if req.Currency != "" && req.Currency != account.Currency {
		return nil, apperror.ErrCurrencyMismatch(string(account.Currency))
	}

	newBalance := account.BalanceAfter(req.Type, req.Amount)
	if newBalance.IsNegative() {
		return nil, apperror.ErrInsufficientFunds()
	}

	now := time.Now().UTC()
	account.Balance = newBalance
	account.UpdatedAt = now

	if err := e.accounts.Update(ctx, dbTx, account); err != nil {
		return nil, storeError("update balance", err)
	}

	txn := &domain.Transaction{
		ID:            e.ids.NewID(),
		AccountNumber: account.AccountNumber,
		Amount:        req.Amount,
		Currency:      account.Currency,
		Type:          req.Type,
		Reference:     req.Reference,
		UserID:        req.UserID,
		CreatedAt:     now,
	}
	if err := e.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeError("create transaction", err)
	}

	if req.Idempotency != nil {
		claim := *req.Idempotency
		claim.AccountNumber = txn.AccountNumber
		claim.TransactionID = txn.ID
		claim.CreatedAt = now
		if err := e.idempRepo.Create(ctx, dbTx, &claim); err != nil {
			if errors.Is(err, ports.ErrDuplicateKey) {
				return nil, fmt.Errorf("record idempotency key: %w", err)
			}
			return nil, storeError("record idempotency key", err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, fmt.Errorf("commit tx: %w", err)
		}
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	e.log.Info().
		Str("tx_id", txn.ID).
		Str("account_number", txn.AccountNumber).
		Str("type", string(txn.Type)).
		Str("amount", txn.Amount.StringFixed(domain.MaxScale)).
		Str("balance", newBalance.StringFixed(domain.MaxScale)).
		Msg("transaction applied")

	return txn, nil
}
