package handler

import (
	"eagle-bank-api/internal/adapter/http/dto"
	"eagle-bank-api/internal/adapter/http/middleware"
	redisStore "eagle-bank-api/internal/adapter/storage/redis"
	"eagle-bank-api/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AccountSvc     ports.AccountService
	TransactionSvc ports.TransactionService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
	OpenAPI        []byte // nil = no /swagger routes
	// AccountNumberPrefix and AccountNumberDigits shape path validation.
	// Zero values keep the default 01 + 6 digits.
	AccountNumberPrefix string
	AccountNumberDigits int
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.AccountNumberPrefix != "" && deps.AccountNumberDigits > 0 {
		dto.SetAccountNumberFormat(deps.AccountNumberPrefix, deps.AccountNumberDigits)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))
	r.Use(middleware.AuditLog(deps.Logger))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	if deps.OpenAPI != nil {
		swagger := r.Group("/swagger")
		{
			swagger.GET("", SwaggerUI)
			swagger.GET("/spec", SwaggerSpec(deps.OpenAPI))
		}
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	accountHandler := NewAccountHandler(deps.AccountSvc)
	txHandler := NewTransactionHandler(deps.TransactionSvc)

	accounts := r.Group("/v1/accounts", jwtAuth)
	{
		accounts.POST("", rl("accounts_write"), accountHandler.CreateAccount)
		accounts.GET("", rl("reads"), accountHandler.ListAccounts)
		accounts.GET("/:accountNumber", rl("reads"), accountHandler.GetAccount)
		accounts.PATCH("/:accountNumber", rl("accounts_write"), accountHandler.UpdateAccount)

		accounts.POST("/:accountNumber/transactions", rl("transactions_create"), txHandler.CreateTransaction)
		accounts.GET("/:accountNumber/transactions", rl("reads"), txHandler.ListTransactions)
		accounts.GET("/:accountNumber/transactions/:transactionId", rl("reads"), txHandler.GetTransaction)
	}

	return r
}
