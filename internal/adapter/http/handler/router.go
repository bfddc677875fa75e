package handler

import (
	"investment-ledger/internal/adapter/http/middleware"
	redisStore "investment-ledger/internal/adapter/storage/redis"
	"investment-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AccountSvc      ports.AccountService
	DepositSvc      ports.DepositService
	WithdrawalSvc   ports.WithdrawalService
	ConversionSvc   ports.ConversionService
	StakingSvc      ports.StakingService
	PurchaseSvc     ports.PurchaseService
	ReferralSvc     ports.ReferralService
	NotificationSvc ports.NotificationService
	PortfolioSvc    ports.PortfolioService
	PayoutSvc       ports.PayoutWalletService
	PriceBoard      ports.PriceBoard
	AuditSvc        ports.AuditService // nil = audit logging disabled

	TokenSvc       ports.TokenService
	SigSvc         ports.SignatureService
	NonceStore     ports.NonceStore              // nil = no replay protection
	RateLimitStore *redisStore.RateLimitStore    // nil = rate limiting disabled
	Operator       middleware.OperatorAuthConfig // empty secret = operator routes refuse everything
	LedgerLimit    middleware.RateLimitRule
	MaxBodyBytes   int64
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = 1 << 20
	}

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(deps.MaxBodyBytes))
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rules := middleware.DefaultRateLimitRules(deps.LedgerLimit)
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rules[group], deps.Logger)
	}

	authHandler := NewAuthHandler(deps.AccountSvc)
	transferHandler := NewTransferHandler(deps.DepositSvc, deps.WithdrawalSvc)
	walletHandler := NewWalletHandler(deps.ConversionSvc, deps.ReferralSvc)
	investHandler := NewInvestmentHandler(deps.StakingSvc, deps.PurchaseSvc)
	dashboardHandler := NewDashboardHandler(deps.PortfolioSvc, deps.NotificationSvc)
	payoutHandler := NewPayoutWalletHandler(deps.PayoutSvc)
	priceHandler := NewPriceHandler(deps.PriceBoard)

	v1 := r.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}
	catalog := v1.Group("/catalog", rl("read"))
	{
		catalog.GET("", investHandler.Catalog)
		catalog.GET("/currencies", investHandler.Currencies)
		catalog.GET("/staking-pools", investHandler.StakingPools)
		catalog.GET("/plans", investHandler.Plans)
		catalog.GET("/signal-packages", investHandler.SignalPackages)
	}
	prices := v1.Group("/prices", rl("read"))
	{
		prices.GET("/coins", priceHandler.CoinPrices)
		prices.GET("/exchange-rates", priceHandler.ExchangeRates)
	}

	// --- JWT-authenticated user routes ---
	user := v1.Group("", middleware.JWTAuth(deps.TokenSvc, deps.Logger))
	read, write := rl("read"), rl("ledger")
	{
		user.GET("/me", read, authHandler.Me)
		user.GET("/wallets", read, authHandler.Wallets)

		user.POST("/deposits", write, transferHandler.CreateDeposit)
		user.GET("/deposits", read, transferHandler.ListDeposits)
		user.POST("/withdrawals", write, transferHandler.CreateWithdrawal)
		user.GET("/withdrawals", read, transferHandler.ListWithdrawals)

		user.POST("/conversions", write, walletHandler.Convert)
		user.GET("/conversions", read, walletHandler.ListConversions)
		user.POST("/referrals/withdraw", write, walletHandler.WithdrawReferralEarnings)

		user.GET("/payout-wallets", read, payoutHandler.List)
		user.POST("/payout-wallets", write, payoutHandler.Add)
		user.PUT("/payout-wallets/:id", write, payoutHandler.Update)
		user.DELETE("/payout-wallets/:id", write, payoutHandler.Delete)

		user.POST("/stakes", write, investHandler.Stake)
		user.GET("/stakes", read, investHandler.ListStakes)
		user.POST("/stakes/:id/unstake", write, investHandler.Unstake)
		user.POST("/subscriptions", write, investHandler.Subscribe)
		user.GET("/subscriptions", read, investHandler.ListSubscriptions)
		user.POST("/signals/purchase", write, investHandler.PurchaseSignal)
		user.GET("/signals", read, investHandler.ListSignals)

		user.GET("/notifications", read, dashboardHandler.ListNotifications)
		user.PATCH("/notifications/:id", write, dashboardHandler.SetNotificationRead)
		user.POST("/notifications/read-all", write, dashboardHandler.MarkAllNotificationsRead)

		user.GET("/overview/dashboard", read, dashboardHandler.Dashboard)
		user.GET("/overview/staking", read, dashboardHandler.Staking)
		user.GET("/overview/subscriptions", read, dashboardHandler.Positions)
	}

	// --- HMAC-authenticated operator routes ---
	admin := v1.Group("/admin",
		rl("operator"),
		middleware.OperatorAuth(deps.Operator, deps.SigSvc, deps.NonceStore, deps.Logger),
	)
	{
		admin.GET("/deposits", transferHandler.ListDepositsByStatus)
		admin.PUT("/deposits/:id/status", transferHandler.SetDepositStatus)
		admin.DELETE("/deposits/:id", transferHandler.DeleteDeposit)
		admin.GET("/withdrawals", transferHandler.ListWithdrawalsByStatus)
		admin.PUT("/withdrawals/:id/status", transferHandler.SetWithdrawalStatus)
		admin.DELETE("/withdrawals/:id", transferHandler.DeleteWithdrawal)
		admin.PUT("/users/:id/verification", authHandler.SetVerification)
	}

	return r
}
