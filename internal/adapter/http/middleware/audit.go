package middleware

import (
	"net/http"

	"eagle-bank-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// auditActions maps write routes to the action recorded for them.
var auditActions = map[string]string{
	http.MethodPost + " /v1/accounts":                             "account.create",
	http.MethodPatch + " /v1/accounts/:accountNumber":             "account.update",
	http.MethodPost + " /v1/accounts/:accountNumber/transactions": "transaction.create",
}

// AuditLog writes one audit event per successful write operation. Events go
// to log with an "audit" marker so they can be routed separately.
func AuditLog(log zerolog.Logger) gin.HandlerFunc {
	audit := log.With().Bool("audit", true).Logger()

	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		action, ok := auditActions[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		userID, _ := UserID(c)
		audit.Info().
			Str("action", action).
			Str("user_id", userID).
			Str("account_number", c.Param("accountNumber")).
			Str("request_id", c.GetString(response.RequestIDKey)).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Msg("audit")
	}
}
