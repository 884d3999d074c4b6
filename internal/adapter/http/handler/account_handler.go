package handler

import (
	"eagle-bank-api/internal/adapter/http/dto"
	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/core/ports"
	"eagle-bank-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles bank account endpoints.
type AccountHandler struct {
	accountSvc ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// CreateAccount handles POST /v1/accounts.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	currency := domain.CurrencyGBP
	if req.Currency != "" {
		currency = domain.Currency(req.Currency)
	}

	account, err := h.accountSvc.CreateAccount(c.Request.Context(), ports.CreateAccountRequest{
		OwnerID:     userID,
		Name:        req.Name,
		AccountType: domain.AccountType(req.AccountType),
		Currency:    currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "/v1/accounts/"+account.AccountNumber, dto.NewAccountResponse(account))
}

// ListAccounts handles GET /v1/accounts.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	accounts, err := h.accountSvc.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.ListAccountsResponse{Accounts: make([]dto.AccountResponse, 0, len(accounts))}
	for i := range accounts {
		resp.Accounts = append(resp.Accounts, dto.NewAccountResponse(&accounts[i]))
	}
	response.OK(c, resp)
}

// GetAccount handles GET /v1/accounts/:accountNumber.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri dto.AccountURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}

	account, err := h.accountSvc.GetAccount(c.Request.Context(), uri.AccountNumber, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewAccountResponse(account))
}

// UpdateAccount handles PATCH /v1/accounts/:accountNumber.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri dto.AccountURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, bindError(err))
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	update := ports.UpdateAccountRequest{
		AccountNumber: uri.AccountNumber,
		UserID:        userID,
		Name:          req.Name,
	}
	if req.AccountType != nil {
		t := domain.AccountType(*req.AccountType)
		update.AccountType = &t
	}

	account, err := h.accountSvc.UpdateAccount(c.Request.Context(), update)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewAccountResponse(account))
}
