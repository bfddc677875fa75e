package handler

import (
	"time"

	"investment-ledger/internal/adapter/http/dto"
	"investment-ledger/internal/adapter/http/middleware"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// PayoutWalletHandler serves the withdrawal addresses a user keeps on file.
type PayoutWalletHandler struct {
	svc ports.PayoutWalletService
}

func NewPayoutWalletHandler(svc ports.PayoutWalletService) *PayoutWalletHandler {
	return &PayoutWalletHandler{svc: svc}
}

// Add handles POST /api/v1/payout-wallets.
func (h *PayoutWalletHandler) Add(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.PayoutWalletRequest
	if !bindJSON(c, &req) {
		return
	}

	w, err := h.svc.Add(c.Request.Context(), userID, ports.PayoutWalletInput{Name: req.Name, Address: req.Address})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Set(middleware.CtxResourceID, w.ID.String())
	response.Created(c, w)
}

// List handles GET /api/v1/payout-wallets.
func (h *PayoutWalletHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Update handles PUT /api/v1/payout-wallets/:id.
func (h *PayoutWalletHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PayoutWalletRequest
	if !bindJSON(c, &req) {
		return
	}

	w, err := h.svc.Update(c.Request.Context(), userID, id, ports.PayoutWalletInput{Name: req.Name, Address: req.Address})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, w)
}

// Delete handles DELETE /api/v1/payout-wallets/:id.
func (h *PayoutWalletHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.DeletedResponse{ID: id.String(), DeletedAt: time.Now().UTC()})
}
