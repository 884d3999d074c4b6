package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a balance mutation.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// Valid reports whether t is deposit or withdrawal.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

// TransactionIDPrefix starts every transaction identifier.
const TransactionIDPrefix = "tan-"

var transactionIDPattern = regexp.MustCompile(`^tan-[A-Za-z0-9]+$`)

// IsTransactionID reports whether s is a well-formed transaction identifier.
func IsTransactionID(s string) bool {
	return transactionIDPattern.MatchString(s)
}

// Transaction is an immutable ledger entry. It is written exactly once, in the
// same unit of work as the balance change it records.
type Transaction struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      Currency        `json:"currency"`
	Type          TransactionType `json:"type"`
	Reference     *string         `json:"reference,omitempty"`
	UserID        string          `json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Signed returns the amount as it affects the balance: negative for withdrawals.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeWithdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}

// MaxScale is the number of decimal places money is held to.
const MaxScale = 2

// AmountInRange returns true if amount is strictly positive, has at most two
// decimal places and does not exceed max.
func AmountInRange(amount, max decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}
	if !amount.Equal(amount.Truncate(MaxScale)) {
		return false
	}
	return amount.LessThanOrEqual(max)
}

// NetBalance sums a transaction history into the balance it implies.
func NetBalance(txs []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for i := range txs {
		sum = sum.Add(txs[i].Signed())
	}
	return sum
}
