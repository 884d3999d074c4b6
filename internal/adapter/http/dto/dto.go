package dto

import (
	"encoding/json"
	"time"

	"eagle-bank-api/internal/core/domain"

	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the request body for POST /v1/accounts.
type CreateAccountRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	AccountType string `json:"accountType" binding:"required,oneof=personal"`
	Currency    string `json:"currency,omitempty" binding:"omitempty,len=3,uppercase"`
}

// UpdateAccountRequest is the request body for PATCH /v1/accounts/:accountNumber.
// Absent fields are left unchanged.
type UpdateAccountRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	AccountType *string `json:"accountType,omitempty" binding:"omitempty,oneof=personal"`
}

// CreateTransactionRequest is the request body for POST /v1/accounts/:accountNumber/transactions.
// Amount accepts a JSON number or a numeric string.
type CreateTransactionRequest struct {
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
	Currency  string           `json:"currency" binding:"required,len=3,uppercase"`
	Type      string           `json:"type" binding:"required,oneof=deposit withdrawal"`
	Reference *string          `json:"reference,omitempty" binding:"omitempty,max=140"`
}

// AccountURI binds the account number path parameter.
type AccountURI struct {
	AccountNumber string `uri:"accountNumber" binding:"required,account_number"`
}

// TransactionURI binds the account number and transaction id path parameters.
type TransactionURI struct {
	AccountNumber string `uri:"accountNumber" binding:"required,account_number"`
	TransactionID string `uri:"transactionId" binding:"required,transaction_id"`
}

// AccountResponse is the public view of a bank account.
type AccountResponse struct {
	AccountNumber    string      `json:"accountNumber"`
	SortCode         string      `json:"sortCode"`
	Name             string      `json:"name"`
	AccountType      string      `json:"accountType"`
	Balance          json.Number `json:"balance"`
	Currency         string      `json:"currency"`
	CreatedTimestamp string      `json:"createdTimestamp"`
	UpdatedTimestamp string      `json:"updatedTimestamp"`
}

// ListAccountsResponse wraps the accounts of the caller.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// TransactionResponse is the public view of a ledger entry.
type TransactionResponse struct {
	ID               string      `json:"id"`
	Amount           json.Number `json:"amount"`
	Currency         string      `json:"currency"`
	Type             string      `json:"type"`
	Reference        *string     `json:"reference,omitempty"`
	UserID           string      `json:"userId"`
	CreatedTimestamp string      `json:"createdTimestamp"`
}

// ListTransactionsResponse wraps the history of one account.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// money renders a decimal as a JSON number with two decimal places.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(domain.MaxScale))
}

// NewAccountResponse converts a domain account.
func NewAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountNumber:    a.AccountNumber,
		SortCode:         a.SortCode,
		Name:             a.Name,
		AccountType:      string(a.AccountType),
		Balance:          money(a.Balance),
		Currency:         string(a.Currency),
		CreatedTimestamp: a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedTimestamp: a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// NewTransactionResponse converts a domain transaction.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:               t.ID,
		Amount:           money(t.Amount),
		Currency:         string(t.Currency),
		Type:             string(t.Type),
		Reference:        t.Reference,
		UserID:           t.UserID,
		CreatedTimestamp: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
