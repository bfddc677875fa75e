package handler

import (
	"investment-ledger/internal/adapter/http/dto"
	"investment-ledger/internal/adapter/http/middleware"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler serves conversions between wallets and referral payouts.
type WalletHandler struct {
	conversionSvc ports.ConversionService
	referralSvc   ports.ReferralService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(conversionSvc ports.ConversionService, referralSvc ports.ReferralService) *WalletHandler {
	return &WalletHandler{conversionSvc: conversionSvc, referralSvc: referralSvc}
}

// Convert handles POST /api/v1/conversions.
func (h *WalletHandler) Convert(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.ConvertRequest
	if !bindJSON(c, &req) {
		return
	}

	conversion, err := h.conversionSvc.Convert(c.Request.Context(), ports.ConvertRequest{
		UserID:     userID,
		FromAsset:  req.FromAsset,
		ToAsset:    req.ToAsset,
		FromAmount: *req.FromAmount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, conversion.ID.String())
	response.Created(c, conversion)
}

// ListConversions handles GET /api/v1/conversions.
func (h *WalletHandler) ListConversions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	conversions, err := h.conversionSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, conversions)
}

// WithdrawReferralEarnings handles POST /api/v1/referrals/withdraw.
func (h *WalletHandler) WithdrawReferralEarnings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	payout, err := h.referralSvc.WithdrawEarnings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payout)
}
