package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
}

// auditRoutes is keyed by method and gin route pattern.
var auditRoutes = map[string]auditRoute{
	"POST /api/v1/auth/register":               {domain.AuditActionRegister, "user"},
	"POST /api/v1/auth/login":                  {domain.AuditActionLogin, "session"},
	"POST /api/v1/deposits":                    {domain.AuditActionDepositCreate, "deposit"},
	"POST /api/v1/withdrawals":                 {domain.AuditActionWithdrawalCreate, "withdrawal"},
	"POST /api/v1/conversions":                 {domain.AuditActionConvert, "conversion"},
	"POST /api/v1/stakes":                      {domain.AuditActionStake, "stake"},
	"POST /api/v1/stakes/:id/unstake":          {domain.AuditActionUnstake, "stake"},
	"POST /api/v1/subscriptions":               {domain.AuditActionSubscribe, "subscription"},
	"POST /api/v1/signals/purchase":            {domain.AuditActionSignalPurchase, "signal"},
	"POST /api/v1/referrals/withdraw":          {domain.AuditActionReferralWithdrawal, "wallet"},
	"PUT /api/v1/admin/deposits/:id/status":    {domain.AuditActionDepositStatus, "deposit"},
	"DELETE /api/v1/admin/deposits/:id":        {domain.AuditActionDepositDelete, "deposit"},
	"PUT /api/v1/admin/withdrawals/:id/status": {domain.AuditActionWithdrawalStatus, "withdrawal"},
	"DELETE /api/v1/admin/withdrawals/:id":     {domain.AuditActionWithdrawalDelete, "withdrawal"},
	"PUT /api/v1/admin/users/:id/verification": {domain.AuditActionUserVerification, "user"},
	"POST /api/v1/payout-wallets":              {domain.AuditActionPayoutWalletSave, "payout_wallet"},
	"PUT /api/v1/payout-wallets/:id":           {domain.AuditActionPayoutWalletSave, "payout_wallet"},
	"DELETE /api/v1/payout-wallets/:id":        {domain.AuditActionPayoutWalletDelete, "payout_wallet"},
}

// AuditLog records every audited mutating call after the handler ran,
// whatever its outcome. The response status goes into the details.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		route, ok := auditRoutes[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		entry := &domain.AuditLog{
			ID:           uuid.New(),
			Actor:        "user",
			Action:       route.action,
			ResourceType: route.resourceType,
			ResourceID:   c.Param("id"),
			IPAddress:    c.ClientIP(),
			CreatedAt:    time.Now().UTC(),
		}
		if id, ok := UserID(c); ok {
			entry.UserID = &id
		}
		if op := c.GetString(CtxOperator); op != "" {
			entry.Actor = op
		}
		if entry.ResourceID == "" {
			entry.ResourceID = c.GetString(CtxResourceID)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"user_agent": c.Request.UserAgent(),
			"request_id": c.GetString(CtxRequestID),
		})
		entry.Details = string(details)

		auditSvc.Log(c.Request.Context(), entry)
	}
}
