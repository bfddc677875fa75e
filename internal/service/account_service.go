package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const referralCodeAttempts = 5

var validate = validator.New()

// AccountOptions tunes signup.
type AccountOptions struct {
	PasswordMinLength   int
	StartingFiatBalance decimal.Decimal
}

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	ledger
	provisioner ports.WalletProvisioner
	hashSvc     ports.HashService
	encSvc      ports.EncryptionService
	tokenSvc    ports.TokenService
	opts        AccountOptions
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(
	store ports.Store,
	provisioner ports.WalletProvisioner,
	hashSvc ports.HashService,
	encSvc ports.EncryptionService,
	tokenSvc ports.TokenService,
	opts AccountOptions,
	log zerolog.Logger,
) *AccountServiceImpl {
	if opts.PasswordMinLength <= 0 {
		opts.PasswordMinLength = 8
	}
	return &AccountServiceImpl{
		ledger:      newLedger(store, log, "account"),
		provisioner: provisioner,
		hashSvc:     hashSvc,
		encSvc:      encSvc,
		tokenSvc:    tokenSvc,
		opts:        opts,
	}
}

// Register creates a user with one fiat wallet in the account currency and
// one crypto wallet per provisioned asset. A referral code, when given, must
// belong to an existing user.
func (s *AccountServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Var(email, "required,email,max=255"); err != nil {
		return nil, apperror.Validation("Invalid email address")
	}
	if len(req.Password) < s.opts.PasswordMinLength {
		return nil, apperror.Validation(fmt.Sprintf("Password must be at least %d characters", s.opts.PasswordMinLength))
	}
	currency := domain.NormalizeSymbol(req.AccountCurrency)
	if !domain.IsMajorCurrency(currency) {
		return nil, apperror.ErrUnsupportedCurrency(req.AccountCurrency)
	}

	existing, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	generated, err := s.provisioner.Generate(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("provision wallets: %w", err))
	}

	dbTx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := s.now()
	user := &domain.User{
		ID:                 uuid.New(),
		Email:              email,
		PasswordHash:       passwordHash,
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Phone:              strings.TrimSpace(req.Phone),
		Country:            strings.TrimSpace(req.Country),
		AccountCurrency:    currency,
		VerificationStatus: domain.VerificationNotVerified,
		PlanAmount:         decimal.Zero,
		ReferrerEarnings:   decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if code := strings.ToUpper(strings.TrimSpace(req.ReferralCode)); code != "" {
		referrer, err := s.store.Users.GetByReferralCode(ctx, dbTx, code)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get referrer: %w", err))
		}
		if referrer == nil {
			return nil, apperror.Validation("Invalid referral code")
		}
		if err := s.store.Users.IncrementReferrerCount(ctx, dbTx, referrer.ID); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("increment referrer count: %w", err))
		}
		user.ReferrerUsed = &code
	}

	if err := s.createUser(ctx, dbTx, user); err != nil {
		return nil, err
	}

	wallets := make([]domain.Wallet, 0, len(generated)+1)
	for _, g := range generated {
		keyEnc, err := s.encSvc.Encrypt(g.PrivateKey)
		if err != nil {
			return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt %s key: %w", g.ShortName, err))
		}
		w := domain.NewCryptoWallet(user.ID, g.CoinName, g.ShortName, domain.CryptoKeys{
			Address:       g.Address,
			PrivateKeyEnc: keyEnc,
		}, now)
		if err := s.store.Wallets.Create(ctx, dbTx, w); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create %s wallet: %w", g.ShortName, err))
		}
		wallets = append(wallets, *w)
	}

	fiat := domain.NewFiatWallet(user.ID, currency, s.opts.StartingFiatBalance, now)
	if err := s.store.Wallets.Create(ctx, dbTx, fiat); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create fiat wallet: %w", err))
	}
	wallets = append(wallets, *fiat)

	for _, pool := range domain.StakingPools {
		if err := s.store.Aggregates.Add(ctx, dbTx, user.ID, domain.AggregateStake, pool.Symbol, decimal.Zero); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("seed stake aggregate: %w", err))
		}
	}

	if err := s.commit(ctx, dbTx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("currency", currency).
		Int("wallets", len(wallets)).
		Bool("referred", user.WasReferred()).
		Msg("user registered")

	return &ports.RegisterResult{User: user, Wallets: wallets}, nil
}

// createUser assigns a fresh referral code, retrying on a collision.
func (s *AccountServiceImpl) createUser(ctx context.Context, dbTx pgx.Tx, user *domain.User) error {
	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		code, err := domain.NewReferralCode()
		if err != nil {
			return apperror.InternalError(fmt.Errorf("generate referral code: %w", err))
		}
		taken, err := s.store.Users.GetByReferralCode(ctx, dbTx, code)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("check referral code: %w", err))
		}
		if taken != nil {
			continue
		}
		user.MyReferrerCode = code
		if err := s.store.Users.Create(ctx, dbTx, user); err != nil {
			if errors.Is(err, ports.ErrConflict) {
				return apperror.ErrEmailExists()
			}
			return apperror.InternalError(fmt.Errorf("create user: %w", err))
		}
		return nil
	}
	return apperror.InternalError(errors.New("could not allocate a unique referral code"))
}

// Login validates credentials and returns a JWT token.
func (s *AccountServiceImpl) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := s.store.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(user.ID, user.Email)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, nil
}

func (s *AccountServiceImpl) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	return user, nil
}

func (s *AccountServiceImpl) Wallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.store.Wallets.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}

// SetVerification records the operator's KYC decision and tells the user.
func (s *AccountServiceImpl) SetVerification(ctx context.Context, userID uuid.UUID, status domain.VerificationStatus) (*domain.User, error) {
	if parsed, err := domain.ParseVerificationStatus(string(status)); err != nil || parsed != status {
		return nil, apperror.Validation("Unknown verification status")
	}

	dbTx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	user, err := s.lockUser(ctx, dbTx, userID)
	if err != nil {
		return nil, err
	}
	previous := user.VerificationStatus
	if previous != status {
		if err := s.store.Users.SetVerificationStatus(ctx, dbTx, userID, status); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("set verification status: %w", err))
		}
		if err := s.notify(ctx, dbTx, userID, msgVerificationStatus(status)); err != nil {
			return nil, err
		}
	}

	if err := s.commit(ctx, dbTx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("verification status set")

	user.VerificationStatus = status
	user.UpdatedAt = s.now()
	return user, nil
}
