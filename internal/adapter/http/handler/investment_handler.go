package handler

import (
	"investment-ledger/internal/adapter/http/dto"
	"investment-ledger/internal/adapter/http/middleware"
	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// InvestmentHandler serves stakes, plan subscriptions, signal packages and the catalog.
type InvestmentHandler struct {
	stakingSvc  ports.StakingService
	purchaseSvc ports.PurchaseService
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(stakingSvc ports.StakingService, purchaseSvc ports.PurchaseService) *InvestmentHandler {
	return &InvestmentHandler{stakingSvc: stakingSvc, purchaseSvc: purchaseSvc}
}

// Stake handles POST /api/v1/stakes.
func (h *InvestmentHandler) Stake(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.StakeRequest
	if !bindJSON(c, &req) {
		return
	}

	stake, err := h.stakingSvc.Stake(c.Request.Context(), ports.StakeRequest{
		UserID:        userID,
		CoinSymbol:    req.CoinSymbol,
		Amount:        *req.Amount,
		DurationDays:  req.DurationDays,
		ROIPercentage: *req.ROIPercentage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, stake.ID.String())
	response.Created(c, stake)
}

// Unstake handles POST /api/v1/stakes/:id/unstake. Before maturity only the
// principal is returned.
func (h *InvestmentHandler) Unstake(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.stakingSvc.Unstake(c.Request.Context(), ports.UnstakeRequest{StakeID: id, UserID: &userID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ListStakes handles GET /api/v1/stakes.
func (h *InvestmentHandler) ListStakes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stakes, err := h.stakingSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stakes)
}

// Subscribe handles POST /api/v1/subscriptions.
func (h *InvestmentHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.SubscribeRequest
	if !bindJSON(c, &req) {
		return
	}

	sub, err := h.purchaseSvc.Subscribe(c.Request.Context(), ports.SubscribeRequest{
		UserID: userID,
		PlanID: req.PlanID,
		Amount: *req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, sub.ID.String())
	response.Created(c, sub)
}

// ListSubscriptions handles GET /api/v1/subscriptions.
func (h *InvestmentHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	subs, err := h.purchaseSvc.ListSubscriptions(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, subs)
}

// PurchaseSignal handles POST /api/v1/signals/purchase.
func (h *InvestmentHandler) PurchaseSignal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.SignalPurchaseRequest
	if !bindJSON(c, &req) {
		return
	}

	signal, err := h.purchaseSvc.PurchaseSignal(c.Request.Context(), ports.SignalPurchaseRequest{
		UserID:    userID,
		PackageID: req.PackageID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, signal.ID.String())
	response.Created(c, signal)
}

// ListSignals handles GET /api/v1/signals.
func (h *InvestmentHandler) ListSignals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	signals, err := h.purchaseSvc.ListSignals(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, signals)
}

// Catalog handles GET /api/v1/catalog.
func (h *InvestmentHandler) Catalog(c *gin.Context) {
	plans, err := h.purchaseSvc.Plans(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	pkgs, err := h.purchaseSvc.SignalPackages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.CatalogResponse{
		Currencies:     domain.MajorCurrencies,
		StakingPools:   domain.StakingPools,
		Plans:          plans,
		SignalPackages: pkgs,
	})
}

func (h *InvestmentHandler) Currencies(c *gin.Context) {
	response.OK(c, domain.MajorCurrencies)
}

func (h *InvestmentHandler) StakingPools(c *gin.Context) {
	response.OK(c, domain.StakingPools)
}

func (h *InvestmentHandler) Plans(c *gin.Context) {
	plans, err := h.purchaseSvc.Plans(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plans)
}

func (h *InvestmentHandler) SignalPackages(c *gin.Context) {
	pkgs, err := h.purchaseSvc.SignalPackages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pkgs)
}
