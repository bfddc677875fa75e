package handler

import (
	"strconv"

	"investment-ledger/internal/adapter/http/dto"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the portfolio overviews and notifications.
type DashboardHandler struct {
	portfolioSvc    ports.PortfolioService
	notificationSvc ports.NotificationService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(portfolioSvc ports.PortfolioService, notificationSvc ports.NotificationService) *DashboardHandler {
	return &DashboardHandler{portfolioSvc: portfolioSvc, notificationSvc: notificationSvc}
}

// Dashboard handles GET /api/v1/overview/dashboard.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	summary, err := h.portfolioSvc.Dashboard(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// Staking handles GET /api/v1/overview/staking.
func (h *DashboardHandler) Staking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	overview, err := h.portfolioSvc.StakingOverview(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, overview)
}

// Positions handles GET /api/v1/overview/subscriptions.
func (h *DashboardHandler) Positions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	overview, err := h.portfolioSvc.PositionsOverview(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, overview)
}

// ListNotifications handles GET /api/v1/notifications?limit=N, newest first.
func (h *DashboardHandler) ListNotifications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit")) // the service clamps and defaults
	notifications, err := h.notificationSvc.List(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notifications)
}

// SetNotificationRead handles PATCH /api/v1/notifications/:id.
func (h *DashboardHandler) SetNotificationRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.SetNotificationReadRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.notificationSvc.SetRead(c.Request.Context(), userID, id, *req.IsRead); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkAllNotificationsRead handles POST /api/v1/notifications/read-all.
func (h *DashboardHandler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.notificationSvc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.MarkAllReadResponse{Updated: n})
}
