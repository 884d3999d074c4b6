package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/core/ports"
	"eagle-bank-api/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	accounts   ports.AccountRepository
	generator  ports.AccountNumberGenerator
	guard      ports.OwnershipGuard
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(
	accounts ports.AccountRepository,
	generator ports.AccountNumberGenerator,
	guard ports.OwnershipGuard,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		accounts:   accounts,
		generator:  generator,
		guard:      guard,
		transactor: transactor,
		log:        log,
	}
}

// CreateAccount allocates a fresh account number and stores a zero-balance account.
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, req ports.CreateAccountRequest) (*domain.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	if !req.AccountType.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unsupported account type %q", req.AccountType))
	}
	if !req.Currency.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unsupported currency %q", req.Currency))
	}

	var created *domain.Account
	_, err := s.generator.Reserve(ctx, func(ctx context.Context, accountNumber string) error {
		now := time.Now().UTC()
		a := &domain.Account{
			AccountNumber: accountNumber,
			OwnerID:       req.OwnerID,
			SortCode:      domain.SortCode,
			Name:          name,
			AccountType:   req.AccountType,
			Balance:       decimal.Zero,
			Currency:      req.Currency,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.accounts.Create(ctx, a); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_number", created.AccountNumber).
		Str("owner_id", created.OwnerID).
		Msg("account created")

	return created, nil
}

// GetAccount returns the account if userID owns it.
func (s *AccountServiceImpl) GetAccount(ctx context.Context, accountNumber, userID string) (*domain.Account, error) {
	return s.guard.Authorize(ctx, userID, accountNumber)
}

// ListAccounts returns all accounts owned by userID.
func (s *AccountServiceImpl) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	accounts, err := s.accounts.ListByOwner(ctx, userID)
	if err != nil {
		return nil, storeError("list accounts", err)
	}
	return accounts, nil
}

// UpdateAccount changes name and/or type under the same row lock the
// balance engine uses, so it never overwrites a concurrent balance change.
func (s *AccountServiceImpl) UpdateAccount(ctx context.Context, req ports.UpdateAccountRequest) (*domain.Account, error) {
	current, err := s.guard.Authorize(ctx, req.UserID, req.AccountNumber)
	if err != nil {
		return nil, err
	}

	var name string
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation("name must not be empty")
		}
	}
	if req.AccountType != nil && !req.AccountType.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unsupported account type %q", *req.AccountType))
	}
	if req.Name == nil && req.AccountType == nil {
		return current, nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.accounts.GetByNumberForUpdate(ctx, dbTx, req.AccountNumber)
	if err != nil {
		return nil, storeError("lock account", err)
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}

	if req.Name != nil {
		account.Name = name
	}
	if req.AccountType != nil {
		account.AccountType = *req.AccountType
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.Update(ctx, dbTx, account); err != nil {
		return nil, storeError("update account", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("account_number", account.AccountNumber).Msg("account updated")
	return account, nil
}
