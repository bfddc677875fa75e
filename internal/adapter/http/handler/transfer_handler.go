package handler

import (
	"time"

	"investment-ledger/internal/adapter/http/dto"
	"investment-ledger/internal/adapter/http/middleware"
	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"
	"investment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransferHandler serves deposits and withdrawals, for users and for the operator.
type TransferHandler struct {
	depositSvc    ports.DepositService
	withdrawalSvc ports.WithdrawalService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(depositSvc ports.DepositService, withdrawalSvc ports.WithdrawalService) *TransferHandler {
	return &TransferHandler{depositSvc: depositSvc, withdrawalSvc: withdrawalSvc}
}

// CreateDeposit handles POST /api/v1/deposits.
func (h *TransferHandler) CreateDeposit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateDepositRequest
	if !bindJSON(c, &req) {
		return
	}

	deposit, err := h.depositSvc.Create(c.Request.Context(), ports.CreateDepositRequest{
		UserID:     userID,
		Method:     req.Method,
		Type:       req.Type,
		Amount:     *req.Amount,
		TotalLocal: req.TotalLocal,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, deposit.ID.String())
	response.Created(c, deposit)
}

// ListDeposits handles GET /api/v1/deposits.
func (h *TransferHandler) ListDeposits(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	deposits, err := h.depositSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, deposits)
}

// CreateWithdrawal handles POST /api/v1/withdrawals.
func (h *TransferHandler) CreateWithdrawal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateWithdrawalRequest
	if !bindJSON(c, &req) {
		return
	}
	kind, valid := domain.ParseWithdrawalType(req.Type)
	if !valid {
		response.Error(c, apperror.Validation("type must be crypto or bank"))
		return
	}

	withdrawal, err := h.withdrawalSvc.Create(c.Request.Context(), ports.CreateWithdrawalRequest{
		UserID: userID,
		Method: req.Method,
		Type:   kind,
		Amount: *req.Amount,
		Total:  *req.Total,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, withdrawal.ID.String())
	response.Created(c, withdrawal)
}

// ListWithdrawals handles GET /api/v1/withdrawals.
func (h *TransferHandler) ListWithdrawals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	withdrawals, err := h.withdrawalSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, withdrawals)
}

// --- Operator ---

// SetDepositStatus handles PUT /api/v1/admin/deposits/:id/status.
func (h *TransferHandler) SetDepositStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.SetDepositStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := domain.ParseDepositStatus(req.Status)
	if err != nil {
		response.Error(c, apperror.Validation("unknown deposit status"))
		return
	}

	deposit, err := h.depositSvc.SetStatus(c.Request.Context(), ports.SetDepositStatusRequest{
		DepositID:  id,
		Status:     status,
		Amount:     req.Amount,
		TotalLocal: req.TotalLocal,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, deposit)
}

// DeleteDeposit handles DELETE /api/v1/admin/deposits/:id.
func (h *TransferHandler) DeleteDeposit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.depositSvc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.DeletedResponse{ID: id.String(), DeletedAt: time.Now().UTC()})
}

// ListDepositsByStatus handles GET /api/v1/admin/deposits?status=pending.
func (h *TransferHandler) ListDepositsByStatus(c *gin.Context) {
	status, err := domain.ParseDepositStatus(c.DefaultQuery("status", string(domain.DepositStatusPending)))
	if err != nil {
		response.Error(c, apperror.Validation("unknown deposit status"))
		return
	}
	deposits, err := h.depositSvc.ListByStatus(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, deposits)
}

// SetWithdrawalStatus handles PUT /api/v1/admin/withdrawals/:id/status.
func (h *TransferHandler) SetWithdrawalStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.SetWithdrawalStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := domain.ParseWithdrawalStatus(req.Status)
	if err != nil {
		response.Error(c, apperror.Validation("unknown withdrawal status"))
		return
	}

	withdrawal, err := h.withdrawalSvc.SetStatus(c.Request.Context(), ports.SetWithdrawalStatusRequest{
		WithdrawalID: id,
		Status:       status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, withdrawal)
}

// DeleteWithdrawal handles DELETE /api/v1/admin/withdrawals/:id.
func (h *TransferHandler) DeleteWithdrawal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.withdrawalSvc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.DeletedResponse{ID: id.String(), DeletedAt: time.Now().UTC()})
}

// ListWithdrawalsByStatus handles GET /api/v1/admin/withdrawals?status=pending.
func (h *TransferHandler) ListWithdrawalsByStatus(c *gin.Context) {
	status, err := domain.ParseWithdrawalStatus(c.DefaultQuery("status", string(domain.WithdrawalStatusPending)))
	if err != nil {
		response.Error(c, apperror.Validation("unknown withdrawal status"))
		return
	}
	withdrawals, err := h.withdrawalSvc.ListByStatus(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, withdrawals)
}
