package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eagle-bank-api/docs"
	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/core/ports"
	"eagle-bank-api/internal/core/ports/mocks"
	"eagle-bank-api/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testToken = "valid-token"

type routerMocks struct {
	accountSvc *mocks.MockAccountService
	txSvc      *mocks.MockTransactionService
}

func setupTestRouter(t *testing.T) (*gin.Engine, *routerMocks) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate(testToken).Return(&ports.TokenClaims{UserID: "usr-abc123"}, nil).AnyTimes()
	tokenSvc.EXPECT().Validate(gomock.Not(testToken)).Return(nil, errors.New("invalid token")).AnyTimes()

	m := &routerMocks{
		accountSvc: mocks.NewMockAccountService(ctrl),
		txSvc:      mocks.NewMockTransactionService(ctrl),
	}
	r := SetupRouter(RouterDeps{
		AccountSvc:     m.accountSvc,
		TransactionSvc: m.txSvc,
		TokenSvc:       tokenSvc,
		Logger:         zerolog.Nop(),
	})
	return r, m
}

func doRequest(r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "body: %s", w.Body.String())
	return data
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

func sampleAccount() *domain.Account {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Account{
		AccountNumber: "01234567",
		OwnerID:       "usr-abc123",
		SortCode:      domain.SortCode,
		Name:          "Personal",
		AccountType:   domain.AccountTypePersonal,
		Balance:       decimal.RequireFromString("120.5"),
		Currency:      domain.CurrencyGBP,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
}

func sampleTransaction() *domain.Transaction {
	return &domain.Transaction{
		ID:            "tan-3kTMd9Qq",
		AccountNumber: "01234567",
		Amount:        decimal.RequireFromString("20"),
		Currency:      domain.CurrencyGBP,
		Type:          domain.TransactionTypeWithdrawal,
		UserID:        "usr-abc123",
		CreatedAt:     time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
	}
}

// --- Auth ---

func TestRoutes_RequireBearerToken(t *testing.T) {
	r, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/v1/accounts", nil, map[string]string{"Authorization": "Bearer forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_001", decodeErrorCode(t, w))
}

// --- Accounts ---

func TestCreateAccount_Success(t *testing.T) {
	r, m := setupTestRouter(t)

	m.accountSvc.EXPECT().CreateAccount(gomock.Any(), ports.CreateAccountRequest{
		OwnerID:     "usr-abc123",
		Name:        "Personal",
		AccountType: domain.AccountTypePersonal,
		Currency:    domain.CurrencyGBP,
	}).Return(sampleAccount(), nil)

	w := doRequest(r, http.MethodPost, "/v1/accounts", map[string]string{
		"name":        " Personal ",
		"accountType": "personal",
	}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "01234567", data["accountNumber"])
	assert.Equal(t, "10-10-10", data["sortCode"])
	assert.Equal(t, "GBP", data["currency"])
	assert.Equal(t, 120.5, data["balance"])
	assert.Contains(t, w.Body.String(), `"balance":120.50`)
	assert.Equal(t, "2026-03-01T12:00:00Z", data["createdTimestamp"])
	assert.Equal(t, "/v1/accounts/01234567", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreateAccount_ValidationError(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(r, http.MethodPost, "/v1/accounts", map[string]string{"name": "x", "accountType": "business"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", decodeErrorCode(t, w))

	w = doRequest(r, http.MethodPost, "/v1/accounts", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAccount_KeyspaceExhausted(t *testing.T) {
	r, m := setupTestRouter(t)

	m.accountSvc.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrExhaustedKeyspace(10))

	w := doRequest(r, http.MethodPost, "/v1/accounts", map[string]string{"name": "n", "accountType": "personal"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "ACC_002", decodeErrorCode(t, w))
}

func TestListAccounts(t *testing.T) {
	r, m := setupTestRouter(t)

	m.accountSvc.EXPECT().ListAccounts(gomock.Any(), "usr-abc123").Return([]domain.Account{*sampleAccount()}, nil)

	w := doRequest(r, http.MethodGet, "/v1/accounts", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	accounts := decodeData(t, w)["accounts"].([]interface{})
	assert.Len(t, accounts, 1)
}

func TestListAccounts_EmptyIsArray(t *testing.T) {
	r, m := setupTestRouter(t)

	m.accountSvc.EXPECT().ListAccounts(gomock.Any(), "usr-abc123").Return(nil, nil)

	w := doRequest(r, http.MethodGet, "/v1/accounts", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accounts":[]`)
}

func TestGetAccount(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"owner", nil, http.StatusOK},
		{"forbidden", apperror.ErrForbidden(), http.StatusForbidden},
		{"not found", apperror.ErrAccountNotFound(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := setupTestRouter(t)

			if tt.err != nil {
				m.accountSvc.EXPECT().GetAccount(gomock.Any(), "01234567", "usr-abc123").Return(nil, tt.err)
			} else {
				m.accountSvc.EXPECT().GetAccount(gomock.Any(), "01234567", "usr-abc123").Return(sampleAccount(), nil)
			}

			w := doRequest(r, http.MethodGet, "/v1/accounts/01234567", nil, nil)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestGetAccount_MalformedNumber(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/v1/accounts/12345678", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAccount(t *testing.T) {
	r, m := setupTestRouter(t)

	updated := sampleAccount()
	updated.Name = "Savings"
	m.accountSvc.EXPECT().UpdateAccount(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req ports.UpdateAccountRequest) (*domain.Account, error) {
			assert.Equal(t, "01234567", req.AccountNumber)
			assert.Equal(t, "usr-abc123", req.UserID)
			require.NotNil(t, req.Name)
			assert.Equal(t, "Savings", *req.Name)
			assert.Nil(t, req.AccountType)
			return updated, nil
		})

	w := doRequest(r, http.MethodPatch, "/v1/accounts/01234567", map[string]string{"name": "Savings"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Savings", decodeData(t, w)["name"])
}

// --- Transactions ---

func TestCreateTransaction_Success(t *testing.T) {
	r, m := setupTestRouter(t)

	m.txSvc.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req ports.CreateTransactionRequest) (*domain.Transaction, error) {
			assert.Equal(t, "01234567", req.AccountNumber)
			assert.Equal(t, "usr-abc123", req.UserID)
			assert.Equal(t, domain.TransactionTypeWithdrawal, req.Type)
			assert.Equal(t, "20.00", req.Amount.StringFixed(2))
			assert.Equal(t, domain.CurrencyGBP, req.Currency)
			assert.Equal(t, "key-1", req.IdempotencyKey)
			return sampleTransaction(), nil
		})

	w := doRequest(r, http.MethodPost, "/v1/accounts/01234567/transactions",
		`{"amount": 20.00, "currency": "GBP", "type": "withdrawal"}`,
		map[string]string{HeaderIdempotencyKey: "key-1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "tan-3kTMd9Qq", data["id"])
	assert.Equal(t, "withdrawal", data["type"])
	assert.Equal(t, "usr-abc123", data["userId"])
	assert.Contains(t, w.Body.String(), `"amount":20.00`)
	assert.Equal(t, "/v1/accounts/01234567/transactions/tan-3kTMd9Qq", w.Header().Get("Location"))
}

func TestCreateTransaction_AmountAsString(t *testing.T) {
	r, m := setupTestRouter(t)

	m.txSvc.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req ports.CreateTransactionRequest) (*domain.Transaction, error) {
			assert.Equal(t, "0.10", req.Amount.StringFixed(2))
			assert.Empty(t, req.IdempotencyKey)
			return sampleTransaction(), nil
		})

	w := doRequest(r, http.MethodPost, "/v1/accounts/01234567/transactions",
		`{"amount": "0.10", "currency": "GBP", "type": "deposit"}`, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateTransaction_DomainErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"insufficient funds", apperror.ErrInsufficientFunds(), http.StatusUnprocessableEntity, "TXN_002"},
		{"amount out of range", apperror.ErrAmountOutOfRange("10000.00"), http.StatusUnprocessableEntity, "TXN_001"},
		{"currency mismatch", apperror.ErrCurrencyMismatch("GBP"), http.StatusUnprocessableEntity, "TXN_003"},
		{"forbidden", apperror.ErrForbidden(), http.StatusForbidden, "AUTH_002"},
		{"lock timeout", apperror.ErrLockTimeout(errors.New("55P03")), http.StatusServiceUnavailable, "SYS_002"},
		{"in flight", apperror.ErrIdempotencyConflict(), http.StatusConflict, "TXN_005"},
		{"key reused", apperror.ErrIdempotencyKeyMismatch(), http.StatusUnprocessableEntity, "TXN_006"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := setupTestRouter(t)
			m.txSvc.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := doRequest(r, http.MethodPost, "/v1/accounts/01234567/transactions",
				`{"amount": 20.00, "currency": "GBP", "type": "withdrawal"}`, nil)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decodeErrorCode(t, w))
		})
	}
}

func TestCreateTransaction_BindingErrors(t *testing.T) {
	bodies := []string{
		`{"currency": "GBP", "type": "deposit"}`,
		`{"amount": 1, "currency": "GBP", "type": "transfer"}`,
		`{"amount": "abc", "currency": "GBP", "type": "deposit"}`,
		`{"amount": 1, "type": "deposit"}`,
	}

	for _, body := range bodies {
		r, _ := setupTestRouter(t)
		w := doRequest(r, http.MethodPost, "/v1/accounts/01234567/transactions", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestCreateTransaction_IdempotencyKeyTooLong(t *testing.T) {
	r, _ := setupTestRouter(t)

	long := make([]byte, maxIdempotencyKeyLen+1)
	for i := range long {
		long[i] = 'k'
	}
	w := doRequest(r, http.MethodPost, "/v1/accounts/01234567/transactions",
		`{"amount": 1, "currency": "GBP", "type": "deposit"}`,
		map[string]string{HeaderIdempotencyKey: string(long)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTransactions(t *testing.T) {
	r, m := setupTestRouter(t)

	m.txSvc.EXPECT().ListTransactions(gomock.Any(), "01234567", "usr-abc123").
		Return([]domain.Transaction{*sampleTransaction(), *sampleTransaction()}, nil)

	w := doRequest(r, http.MethodGet, "/v1/accounts/01234567/transactions", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	txns := decodeData(t, w)["transactions"].([]interface{})
	assert.Len(t, txns, 2)
}

func TestGetTransaction(t *testing.T) {
	r, m := setupTestRouter(t)

	m.txSvc.EXPECT().GetTransaction(gomock.Any(), "01234567", "tan-3kTMd9Qq", "usr-abc123").Return(sampleTransaction(), nil)
	m.txSvc.EXPECT().GetTransaction(gomock.Any(), "01234567", "tan-missing1", "usr-abc123").Return(nil, apperror.ErrTransactionNotFound())

	w := doRequest(r, http.MethodGet, "/v1/accounts/01234567/transactions/tan-3kTMd9Qq", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/v1/accounts/01234567/transactions/tan-missing1", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TXN_004", decodeErrorCode(t, w))

	w = doRequest(r, http.MethodGet, "/v1/accounts/01234567/transactions/bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	pg := mocks.NewMockHealthChecker(ctrl)
	rd := mocks.NewMockHealthChecker(ctrl)

	pg.EXPECT().Name().Return("postgres").AnyTimes()
	rd.EXPECT().Name().Return("redis").AnyTimes()
	pg.EXPECT().Ping(gomock.Any()).Return(nil).Times(2)
	rd.EXPECT().Ping(gomock.Any()).Return(nil)
	rd.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	r := gin.New()
	r.GET("/health", HealthCheck(pg, rd))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestSwagger(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/spec", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	r = SetupRouter(RouterDeps{Logger: zerolog.Nop(), OpenAPI: docs.OpenAPI})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/spec", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/v1/accounts/{accountNumber}/transactions")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger", nil))
	assert.Contains(t, w.Body.String(), "swagger-ui")
}
