package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a bank account. The set is closed.
type AccountType string

const (
	AccountTypePersonal AccountType = "personal"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == AccountTypePersonal
}

// Currency is an ISO 4217 code from the closed set the bank operates in.
type Currency string

const (
	CurrencyGBP Currency = "GBP"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == CurrencyGBP
}

// SortCode is the branch identifier shared by every account.
const SortCode = "10-10-10"

// Account is a customer bank account. Balance is never negative after a
// committed mutation and only changes through the balance engine.
type Account struct {
	AccountNumber string          `json:"account_number"`
	OwnerID       string          `json:"owner_id"`
	SortCode      string          `json:"sort_code"`
	Name          string          `json:"name"`
	AccountType   AccountType     `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      Currency        `json:"currency"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsOwnedBy returns true if userID owns the account.
func (a *Account) IsOwnedBy(userID string) bool {
	return a.OwnerID != "" && a.OwnerID == userID
}

// BalanceAfter returns the balance that applying amount in the given
// direction would produce. The result may be negative; callers decide.
func (a *Account) BalanceAfter(typ TransactionType, amount decimal.Decimal) decimal.Decimal {
	if typ == TransactionTypeWithdrawal {
		return a.Balance.Sub(amount)
	}
	return a.Balance.Add(amount)
}
