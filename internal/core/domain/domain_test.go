package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccount_IsOwnedBy(t *testing.T) {
	a := &Account{OwnerID: "usr-abc123"}

	assert.True(t, a.IsOwnedBy("usr-abc123"))
	assert.False(t, a.IsOwnedBy("usr-other"))
	assert.False(t, (&Account{}).IsOwnedBy(""))
}

func TestAccount_BalanceAfter(t *testing.T) {
	a := &Account{Balance: decimal.RequireFromString("100.00")}

	tests := []struct {
		name   string
		typ    TransactionType
		amount string
		want   string
	}{
		{"deposit", TransactionTypeDeposit, "25.50", "125.50"},
		{"withdrawal", TransactionTypeWithdrawal, "80.00", "20.00"},
		{"overdraw", TransactionTypeWithdrawal, "100.01", "-0.01"},
		{"exact", TransactionTypeWithdrawal, "100.00", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.BalanceAfter(tt.typ, decimal.RequireFromString(tt.amount))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestAmountInRange(t *testing.T) {
	max := decimal.RequireFromString("10000.00")

	tests := []struct {
		amount string
		want   bool
	}{
		{"0.01", true},
		{"10000.00", true},
		{"10000", true},
		{"10000.01", false},
		{"0", false},
		{"-5.00", false},
		{"1.001", false},
		{"1.10", true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, AmountInRange(decimal.RequireFromString(tt.amount), max))
		})
	}
}

func TestTransaction_SignedAndNetBalance(t *testing.T) {
	txs := []Transaction{
		{Type: TransactionTypeDeposit, Amount: decimal.RequireFromString("100.00")},
		{Type: TransactionTypeWithdrawal, Amount: decimal.RequireFromString("30.25")},
		{Type: TransactionTypeDeposit, Amount: decimal.RequireFromString("0.25")},
	}

	assert.True(t, decimal.RequireFromString("-30.25").Equal(txs[1].Signed()))
	assert.True(t, decimal.RequireFromString("70.00").Equal(NetBalance(txs)))
	assert.True(t, decimal.Zero.Equal(NetBalance(nil)))
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, AccountTypePersonal.Valid())
	assert.False(t, AccountType("business").Valid())
	assert.True(t, CurrencyGBP.Valid())
	assert.False(t, Currency("USD").Valid())
	assert.True(t, TransactionTypeDeposit.Valid())
	assert.True(t, TransactionTypeWithdrawal.Valid())
	assert.False(t, TransactionType("transfer").Valid())
}

func TestIdentifierFormats(t *testing.T) {
	assert.True(t, IsTransactionID("tan-3kTMd9Qq"))
	assert.False(t, IsTransactionID("tan-"))
	assert.False(t, IsTransactionID("txn-123"))
	assert.True(t, IsUserID("usr-abc123"))
	assert.False(t, IsUserID("abc123"))
}

func TestBuildIdempotencyKey(t *testing.T) {
	assert.Equal(t, "usr-1:01234567:key-1", BuildIdempotencyKey("usr-1", "01234567", "key-1"))
}

func TestRequestFingerprint(t *testing.T) {
	ref := "rent"
	other := "food"
	base := RequestFingerprint(TransactionTypeDeposit, decimal.RequireFromString("10.00"), CurrencyGBP, &ref)

	assert.Len(t, base, 64)
	assert.Equal(t, base, RequestFingerprint(TransactionTypeDeposit, decimal.RequireFromString("10"), CurrencyGBP, &ref),
		"amount scale must not matter")

	assert.NotEqual(t, base, RequestFingerprint(TransactionTypeWithdrawal, decimal.RequireFromString("10.00"), CurrencyGBP, &ref))
	assert.NotEqual(t, base, RequestFingerprint(TransactionTypeDeposit, decimal.RequireFromString("90.00"), CurrencyGBP, &ref))
	assert.NotEqual(t, base, RequestFingerprint(TransactionTypeDeposit, decimal.RequireFromString("10.00"), Currency("EUR"), &ref))
	assert.NotEqual(t, base, RequestFingerprint(TransactionTypeDeposit, decimal.RequireFromString("10.00"), CurrencyGBP, &other))

	empty := ""
	assert.NotEqual(t,
		RequestFingerprint(TransactionTypeDeposit, decimal.RequireFromString("10.00"), CurrencyGBP, nil),
		RequestFingerprint(TransactionTypeDeposit, decimal.RequireFromString("10.00"), CurrencyGBP, &empty),
		"absent and empty reference differ")
}
