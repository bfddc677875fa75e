package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"investment-ledger/config"
	httpHandler "investment-ledger/internal/adapter/http/handler"
	"investment-ledger/internal/adapter/http/middleware"
	"investment-ledger/internal/adapter/pricing"
	"investment-ledger/internal/adapter/storage/memory"
	pgStorage "investment-ledger/internal/adapter/storage/postgres"
	redisStorage "investment-ledger/internal/adapter/storage/redis"
	"investment-ledger/internal/adapter/walletgen"
	"investment-ledger/internal/core/ports"
	"investment-ledger/internal/jobs"
	"investment-ledger/internal/service"
	"investment-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Database.Driver).
		Msg("Starting investment ledger")

	ctx := context.Background()

	referralRate, err := decimal.NewFromString(cfg.Security.ReferralRewardRate)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid security.referral_reward_rate")
	}
	startingFiat, err := decimal.NewFromString(cfg.Signup.StartingFiatBalance)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid signup.starting_fiat_balance")
	}

	// Ledger store
	var (
		store    ports.Store
		checkers []ports.HealthChecker
	)
	switch cfg.Database.Driver {
	case "memory":
		mem := memory.New()
		store = mem.Ports()
		checkers = append(checkers, mem)
		log.Warn().Msg("Using the in-memory ledger store; data is lost on exit")
	default:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		if cfg.Database.Migrate {
			if err := pgStorage.Migrate(ctx, pool, log); err != nil {
				log.Fatal().Err(err).Msg("Failed to apply migrations")
			}
		}
		store = pgStorage.NewStore(pool)
		checkers = append(checkers, pgStorage.NewHealthCheck(pool))
	}

	// Redis-backed stores are optional; without them operator nonces are not
	// tracked, prices are cached per process and sweeps run unlocked.
	var (
		snapshotCache  ports.SnapshotCache
		nonceStore     ports.NonceStore
		runLock        ports.RunLock
		rateLimitStore *redisStorage.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		snapshotCache = redisStorage.NewSnapshotCache(rdb)
		nonceStore = redisStorage.NewNonceStore(rdb)
		runLock = redisStorage.NewRunLock(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled: no rate limiting or operator replay protection")
	}

	// Core services
	encSvc, err := service.NewAESEncryptionService(cfg.Security.AESKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	hashSvc := service.NewArgon2HashService()
	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	prices := pricing.NewGateway(cfg.Pricing, snapshotCache, log)

	// Ledger services
	accountSvc := service.NewAccountService(store, walletgen.NewProvisioner(), hashSvc, encSvc, tokenSvc,
		service.AccountOptions{
			PasswordMinLength:   cfg.Security.PasswordMinLength,
			StartingFiatBalance: startingFiat,
		}, log)
	depositSvc := service.NewDepositService(store, prices, referralRate, log)
	withdrawalSvc := service.NewWithdrawalService(store, log)
	conversionSvc := service.NewConversionService(store, prices, log)
	stakingSvc := service.NewStakingService(store, log)
	purchaseSvc := service.NewPurchaseService(store, log)
	referralSvc := service.NewReferralService(store, log)
	notificationSvc := service.NewNotificationService(store.Notifications)
	payoutSvc := service.NewPayoutWalletService(store.PayoutWallets, log)
	portfolioSvc := service.NewPortfolioService(store, prices)
	auditSvc := service.NewAuditService(store.Audit, log)

	var sweeper *jobs.Sweeper
	if cfg.Sweeper.Enabled {
		sweeper = jobs.NewSweeper(cfg.Sweeper, depositSvc, stakingSvc, runLock, log)
		if err := sweeper.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule sweepers")
		}
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AccountSvc:      accountSvc,
		DepositSvc:      depositSvc,
		WithdrawalSvc:   withdrawalSvc,
		ConversionSvc:   conversionSvc,
		StakingSvc:      stakingSvc,
		PurchaseSvc:     purchaseSvc,
		ReferralSvc:     referralSvc,
		NotificationSvc: notificationSvc,
		PortfolioSvc:    portfolioSvc,
		PayoutSvc:       payoutSvc,
		PriceBoard:      prices,
		AuditSvc:        auditSvc,
		TokenSvc:        tokenSvc,
		SigSvc:          sigSvc,
		NonceStore:      nonceStore,
		RateLimitStore:  rateLimitStore,
		Operator: middleware.OperatorAuthConfig{
			KeyID:    cfg.Security.OperatorKeyID,
			Secret:   cfg.Security.OperatorSecret,
			MaxAge:   cfg.Security.SignatureMaxAge,
			NonceTTL: cfg.Security.NonceTTL,
		},
		LedgerLimit:    middleware.RateLimitRule{Limit: int64(cfg.RateLimit.Requests), Window: cfg.RateLimit.Window},
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		HealthCheckers: checkers,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      withCORS(cfg.Server.CORSOrigins, router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if sweeper != nil {
		sweeper.Stop(shutdownCtx)
	}

	log.Info().Msg("Server exited")
}

// withCORS lets the dashboard front end call the API with credentials.
func withCORS(origins []string, h http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization", "Content-Type",
			middleware.HeaderRequestID, middleware.HeaderOperatorKey,
			middleware.HeaderSignature, middleware.HeaderTimestamp, middleware.HeaderNonce,
		},
		ExposedHeaders:   []string{middleware.HeaderRequestID, "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})(h)
}
