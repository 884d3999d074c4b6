package service

import (
	"context"

	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/core/ports"
	"eagle-bank-api/pkg/apperror"
)

// OwnershipGuardImpl implements ports.OwnershipGuard with a non-locking read.
// The returned account is for authorization only; mutations re-read it
// under lock.
type OwnershipGuardImpl struct {
	accounts ports.AccountRepository
	// concealExistence answers Forbidden for unknown accounts so non-owners
	// cannot probe which account numbers exist.
	concealExistence bool
}

// NewOwnershipGuard creates a new OwnershipGuardImpl.
func NewOwnershipGuard(accounts ports.AccountRepository, concealExistence bool) *OwnershipGuardImpl {
	return &OwnershipGuardImpl{accounts: accounts, concealExistence: concealExistence}
}

// Authorize returns the account if userID owns it.
func (g *OwnershipGuardImpl) Authorize(ctx context.Context, userID, accountNumber string) (*domain.Account, error) {
	account, err := g.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, storeError("get account", err)
	}
	if account == nil {
		if g.concealExistence {
			return nil, apperror.ErrForbidden()
		}
		return nil, apperror.ErrAccountNotFound()
	}
	if !account.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden()
	}
	return account, nil
}
