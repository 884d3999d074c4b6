package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code so callers can test errors.Is(err, apperror.ErrForbidden()).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Authorization (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_002", "The user is not allowed to access this account", http.StatusForbidden)
}

// ---- Accounts (ACC) ----

func ErrAccountNotFound() *AppError {
	return New("ACC_001", "Bank account was not found", http.StatusNotFound)
}

// ErrExhaustedKeyspace is returned when no free account number was found within
// the attempt bound. The whole creation request may be retried later.
func ErrExhaustedKeyspace(attempts int) *AppError {
	return New("ACC_002",
		fmt.Sprintf("Could not allocate an account number after %d attempts", attempts),
		http.StatusServiceUnavailable)
}

// ---- Transactions (TXN) ----

func ErrAmountOutOfRange(max string) *AppError {
	return New("TXN_001",
		fmt.Sprintf("Amount must be greater than 0.00 and at most %s with two decimal places", max),
		http.StatusUnprocessableEntity)
}

func ErrInsufficientFunds() *AppError {
	return New("TXN_002", "Insufficient funds to process transaction", http.StatusUnprocessableEntity)
}

func ErrCurrencyMismatch(accountCurrency string) *AppError {
	return New("TXN_003",
		fmt.Sprintf("Transaction currency must match account currency %s", accountCurrency),
		http.StatusUnprocessableEntity)
}

func ErrTransactionNotFound() *AppError {
	return New("TXN_004", "Transaction was not found", http.StatusNotFound)
}

func ErrIdempotencyConflict() *AppError {
	return New("TXN_005", "A request with the same idempotency key is still in progress", http.StatusConflict)
}

// ErrIdempotencyKeyMismatch is returned when a key is reused with a
// different type, amount, currency or reference. Nothing was applied.
func ErrIdempotencyKeyMismatch() *AppError {
	return New("TXN_006", "Idempotency key was already used with a different request", http.StatusUnprocessableEntity)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Account is busy, retry the request", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a VAL_001 request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrPayloadTooLarge() *AppError {
	return New("VAL_002", "Request body too large", http.StatusRequestEntityTooLarge)
}
