package domain

import (
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"
)

// IdempotencyLog is the durable record of a claimed idempotency key. It is
// written in the same unit of work as the transaction it points at.
type IdempotencyLog struct {
	Key           string    `json:"key"` // Format: "user_id:account_number:client_key"
	Fingerprint   string    `json:"fingerprint"`
	AccountNumber string    `json:"account_number"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// IdempotencyEntry is the cached outcome of a keyed request.
type IdempotencyEntry struct {
	Fingerprint string       `json:"fingerprint"`
	Transaction *Transaction `json:"transaction"`
}

// BuildIdempotencyKey scopes a client supplied Idempotency-Key to the acting
// user and target account so keys never collide across principals.
func BuildIdempotencyKey(userID, accountNumber, key string) string {
	return userID + ":" + accountNumber + ":" + key
}

// RequestFingerprint identifies the payload a key was first used with. Two
// requests share a fingerprint only if they would move the same money.
func RequestFingerprint(typ TransactionType, amount decimal.Decimal, currency Currency, reference *string) string {
	const sep = "\x1f"
	payload := string(typ) + sep + amount.StringFixed(MaxScale) + sep + string(currency) + sep
	if reference != nil {
		payload += "+" + *reference
	} else {
		payload += "-"
	}
	sum := blake2b.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
