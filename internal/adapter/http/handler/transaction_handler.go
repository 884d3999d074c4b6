package handler

import (
	"strings"

	"eagle-bank-api/internal/adapter/http/dto"
	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/core/ports"
	"eagle-bank-api/pkg/apperror"
	"eagle-bank-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey makes transaction creation safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// TransactionHandler handles transaction endpoints of an account.
type TransactionHandler struct {
	txSvc ports.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txSvc ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{txSvc: txSvc}
}

// CreateTransaction handles POST /v1/accounts/:accountNumber/transactions.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri dto.AccountURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	idempKey := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if len(idempKey) > maxIdempotencyKeyLen {
		response.Error(c, apperror.Validation("Idempotency-Key must be at most 128 characters"))
		return
	}

	txn, err := h.txSvc.CreateTransaction(c.Request.Context(), ports.CreateTransactionRequest{
		MutationRequest: ports.MutationRequest{
			AccountNumber: uri.AccountNumber,
			UserID:        userID,
			Type:          domain.TransactionType(req.Type),
			Amount:        *req.Amount,
			Currency:      domain.Currency(req.Currency),
			Reference:     req.Reference,
		},
		IdempotencyKey: idempKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "/v1/accounts/"+uri.AccountNumber+"/transactions/"+txn.ID, dto.NewTransactionResponse(txn))
}

// ListTransactions handles GET /v1/accounts/:accountNumber/transactions.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri dto.AccountURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}

	txns, err := h.txSvc.ListTransactions(c.Request.Context(), uri.AccountNumber, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.ListTransactionsResponse{Transactions: make([]dto.TransactionResponse, 0, len(txns))}
	for i := range txns {
		resp.Transactions = append(resp.Transactions, dto.NewTransactionResponse(&txns[i]))
	}
	response.OK(c, resp)
}

// GetTransaction handles GET /v1/accounts/:accountNumber/transactions/:transactionId.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri dto.TransactionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}

	txn, err := h.txSvc.GetTransaction(c.Request.Context(), uri.AccountNumber, uri.TransactionID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponse(txn))
}
