package handler

import (
	"net/http"

	"investment-ledger/internal/adapter/http/dto"
	"investment-ledger/internal/adapter/http/middleware"
	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles signup, sign-in and the account profile.
type AuthHandler struct {
	accountSvc ports.AccountService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accountSvc ports.AccountService) *AuthHandler {
	return &AuthHandler{accountSvc: accountSvc}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.accountSvc.Register(c.Request.Context(), ports.RegisterRequest{
		Email:           req.Email,
		Password:        req.Password,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Country:         req.Country,
		AccountCurrency: req.AccountCurrency,
		ReferralCode:    req.ReferralCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, result.User.ID.String())
	response.Created(c, dto.RegisterResponse{User: result.User, Wallets: result.Wallets})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, expiry, err := h.accountSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Token:  token,
		Expiry: expiry.Unix(),
	})
}

// Me handles GET /api/v1/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.accountSvc.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// Wallets handles GET /api/v1/wallets.
func (h *AuthHandler) Wallets(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	wallets, err := h.accountSvc.Wallets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wallets)
}

// HealthCheck handles GET /health: a deep check of every dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

// SetVerification handles PUT /api/v1/admin/users/:id/verification.
func (h *AuthHandler) SetVerification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.SetVerificationRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.accountSvc.SetVerification(c.Request.Context(), id, domain.VerificationStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}
