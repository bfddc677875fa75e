package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"investment-ledger/internal/adapter/http/middleware"
	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/internal/core/ports/mocks"
	"investment-ledger/internal/service"
	"investment-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	userToken = "user-token"
	opKey     = "ops"
	opSecret  = "ops-secret"
)

type testAPI struct {
	router        *gin.Engine
	userID        uuid.UUID
	accounts      *mocks.MockAccountService
	deposits      *mocks.MockDepositService
	withdrawals   *mocks.MockWithdrawalService
	conversions   *mocks.MockConversionService
	staking       *mocks.MockStakingService
	purchases     *mocks.MockPurchaseService
	referrals     *mocks.MockReferralService
	notifications *mocks.MockNotificationService
	portfolio     *mocks.MockPortfolioService
	payouts       *mocks.MockPayoutWalletService
	prices        *mocks.MockPriceBoard
	health        *mocks.MockHealthChecker
}

func newTestAPI(t *testing.T) *testAPI {
	ctrl := gomock.NewController(t)
	api := &testAPI{
		userID:        uuid.New(),
		accounts:      mocks.NewMockAccountService(ctrl),
		deposits:      mocks.NewMockDepositService(ctrl),
		withdrawals:   mocks.NewMockWithdrawalService(ctrl),
		conversions:   mocks.NewMockConversionService(ctrl),
		staking:       mocks.NewMockStakingService(ctrl),
		purchases:     mocks.NewMockPurchaseService(ctrl),
		referrals:     mocks.NewMockReferralService(ctrl),
		notifications: mocks.NewMockNotificationService(ctrl),
		portfolio:     mocks.NewMockPortfolioService(ctrl),
		payouts:       mocks.NewMockPayoutWalletService(ctrl),
		prices:        mocks.NewMockPriceBoard(ctrl),
		health:        mocks.NewMockHealthChecker(ctrl),
	}

	tokens := mocks.NewMockTokenService(ctrl)
	tokens.EXPECT().Validate(userToken).Return(&ports.TokenClaims{UserID: api.userID, Email: "u@example.com"}, nil).AnyTimes()
	tokens.EXPECT().Validate(gomock.Not(userToken)).Return(nil, errors.New("invalid token")).AnyTimes()

	api.router = SetupRouter(RouterDeps{
		AccountSvc:      api.accounts,
		DepositSvc:      api.deposits,
		WithdrawalSvc:   api.withdrawals,
		ConversionSvc:   api.conversions,
		StakingSvc:      api.staking,
		PurchaseSvc:     api.purchases,
		ReferralSvc:     api.referrals,
		NotificationSvc: api.notifications,
		PortfolioSvc:    api.portfolio,
		PayoutSvc:       api.payouts,
		PriceBoard:      api.prices,
		TokenSvc:        tokens,
		SigSvc:          service.NewHMACSignatureService(),
		Operator:        middleware.OperatorAuthConfig{KeyID: opKey, Secret: opSecret, MaxAge: time.Minute},
		HealthCheckers:  []ports.HealthChecker{api.health},
		Logger:          zerolog.Nop(),
	})
	return api
}

func (a *testAPI) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+userToken)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) operator(method, path, body string) *httptest.ResponseRecorder {
	sig := service.NewHMACSignatureService()
	ts := time.Now().Unix()
	nonce := uuid.NewString()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderOperatorKey, opKey)
	req.Header.Set(middleware.HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(middleware.HeaderNonce, nonce)
	signedPath := strings.SplitN(path, "?", 2)[0]
	req.Header.Set(middleware.HeaderSignature, sig.Sign(opSecret, sig.BuildCanonicalString(method, signedPath, ts, nonce, body)))
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- Auth ---

func TestRegister_Success(t *testing.T) {
	api := newTestAPI(t)
	user := &domain.User{ID: uuid.New(), Email: "alice@example.com", AccountCurrency: "EUR"}
	api.accounts.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Email:           "alice@example.com",
		Password:        "password123",
		FirstName:       "Alice",
		LastName:        "Doe",
		AccountCurrency: "EUR",
		ReferralCode:    "AB12CD34",
	}).Return(&ports.RegisterResult{User: user, Wallets: []domain.Wallet{}}, nil)

	w := api.do(http.MethodPost, "/api/v1/auth/register", `{
		"email":"alice@example.com","password":"password123","first_name":" Alice ",
		"last_name":"Doe","account_currency":"EUR","referral_code":"AB12CD34"}`, false)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, user.ID.String(), data["user"].(map[string]interface{})["id"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_ValidationError(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/auth/register", `{}`, false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", decodeEnvelope(t, w)["error_code"])
}

func TestRegister_EmailTaken(t *testing.T) {
	api := newTestAPI(t)
	api.accounts.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrEmailExists())

	w := api.do(http.MethodPost, "/api/v1/auth/register", `{
		"email":"taken@example.com","password":"password123","first_name":"A",
		"last_name":"B","account_currency":"USD"}`, false)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	api := newTestAPI(t)
	expiry := time.Now().Add(time.Hour)
	api.accounts.EXPECT().Login(gomock.Any(), "alice@example.com", "password123").Return("jwt", expiry, nil)

	w := api.do(http.MethodPost, "/api/v1/auth/login", `{"email":"alice@example.com","password":"password123"}`, false)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "jwt", data["token"])
	assert.EqualValues(t, expiry.Unix(), data["expiry"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	api.accounts.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return("", time.Time{}, apperror.ErrInvalidCredentials())

	w := api.do(http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.co","password":"nope"}`, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserRoutes_RequireToken(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/wallets", "", false).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/api/v1/deposits", `{}`, false).Code)
}

// --- Ledger operations ---

func TestCreateDeposit_PassesUserAndAmount(t *testing.T) {
	api := newTestAPI(t)
	api.deposits.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CreateDepositRequest) (*domain.Deposit, error) {
			assert.Equal(t, api.userID, req.UserID)
			assert.Equal(t, "BTC", req.Method)
			assert.True(t, req.Amount.Equal(dec("0.015")))
			assert.Nil(t, req.TotalLocal)
			return &domain.Deposit{ID: uuid.New(), UserID: req.UserID, Amount: req.Amount, Status: domain.DepositStatusPending}, nil
		})

	w := api.do(http.MethodPost, "/api/v1/deposits", `{"method":"BTC","amount":"0.015"}`, true)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "0.015", data["amount"])
}

func TestCreateDeposit_MissingAmount(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/deposits", `{"method":"BTC"}`, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateWithdrawal_RejectsUnknownType(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/withdrawals", `{"method":"bank","type":"paypal","amount":"10","total":"10"}`, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConvert_InsufficientBalanceCarriesDetails(t *testing.T) {
	api := newTestAPI(t)
	api.conversions.EXPECT().Convert(gomock.Any(), ports.ConvertRequest{
		UserID:     api.userID,
		FromAsset:  "BTC",
		ToAsset:    "USD",
		FromAmount: dec("2"),
	}).Return(nil, apperror.ErrInsufficientBalance("BTC", "0.5", "2"))

	w := api.do(http.MethodPost, "/api/v1/conversions", `{"from_asset":"BTC","to_asset":"USD","from_amount":"2"}`, true)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "BAL_001", resp["error_code"])
	details := resp["details"].(map[string]interface{})
	assert.Equal(t, "0.5", details["available"])
	assert.Equal(t, "2", details["required"])
}

func TestConvert_PriceUnavailable(t *testing.T) {
	api := newTestAPI(t)
	api.conversions.EXPECT().Convert(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrPriceUnavailable("XYZ"))

	w := api.do(http.MethodPost, "/api/v1/conversions", `{"from_asset":"XYZ","to_asset":"USD","from_amount":"1"}`, true)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStake_DuplicateIsConflict(t *testing.T) {
	api := newTestAPI(t)
	api.staking.EXPECT().Stake(gomock.Any(), ports.StakeRequest{
		UserID:        api.userID,
		CoinSymbol:    "USDT",
		Amount:        dec("1000"),
		DurationDays:  10,
		ROIPercentage: dec("58"),
	}).Return(nil, apperror.ErrActiveStakeExists("USDT"))

	w := api.do(http.MethodPost, "/api/v1/stakes", `{"coin_symbol":"USDT","amount":"1000","duration":10,"roi_percentage":"58"}`, true)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUnstake_ScopesToCaller(t *testing.T) {
	api := newTestAPI(t)
	stakeID := uuid.New()
	api.staking.EXPECT().Unstake(gomock.Any(), ports.UnstakeRequest{StakeID: stakeID, UserID: &api.userID}).
		Return(&ports.UnstakeResult{Matured: false, TotalReturn: dec("1000"), Reward: decimal.Zero}, nil)

	w := api.do(http.MethodPost, "/api/v1/stakes/"+stakeID.String()+"/unstake", "", true)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "1000", data["total_return"])
	assert.Equal(t, false, data["matured"])
}

func TestUnstake_BadID(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/stakes/not-a-uuid/unstake", "", true)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribe(t *testing.T) {
	api := newTestAPI(t)
	api.purchases.EXPECT().Subscribe(gomock.Any(), ports.SubscribeRequest{UserID: api.userID, PlanID: 2, Amount: dec("500")}).
		Return(&domain.ActiveSubscription{ID: uuid.New(), PlanName: "Standard"}, nil)

	w := api.do(http.MethodPost, "/api/v1/subscriptions", `{"plan_id":2,"amount":500}`, true)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPurchaseSignal(t *testing.T) {
	api := newTestAPI(t)
	api.purchases.EXPECT().PurchaseSignal(gomock.Any(), ports.SignalPurchaseRequest{UserID: api.userID, PackageID: 1}).
		Return(&domain.ActiveSignal{ID: uuid.New(), PackageName: "Basic"}, nil)

	w := api.do(http.MethodPost, "/api/v1/signals/purchase", `{"package_id":1}`, true)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestWithdrawReferralEarnings_Nothing(t *testing.T) {
	api := newTestAPI(t)
	api.referrals.EXPECT().WithdrawEarnings(gomock.Any(), api.userID).Return(nil, apperror.ErrNoReferralEarnings())

	w := api.do(http.MethodPost, "/api/v1/referrals/withdraw", "", true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAL_002", decodeEnvelope(t, w)["error_code"])
}

// --- Notifications & overviews ---

func TestListNotifications_PassesLimit(t *testing.T) {
	api := newTestAPI(t)
	api.notifications.EXPECT().List(gomock.Any(), api.userID, 5).Return([]domain.Notification{}, nil)

	w := api.do(http.MethodGet, "/api/v1/notifications?limit=5", "", true)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetNotificationRead(t *testing.T) {
	api := newTestAPI(t)
	id := uuid.New()
	api.notifications.EXPECT().SetRead(gomock.Any(), api.userID, id, true).Return(nil)

	w := api.do(http.MethodPatch, "/api/v1/notifications/"+id.String(), `{"is_read":true}`, true)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSetNotificationRead_OtherUsersNotification(t *testing.T) {
	api := newTestAPI(t)
	api.notifications.EXPECT().SetRead(gomock.Any(), api.userID, gomock.Any(), false).Return(apperror.ErrNotFound("Notification"))

	w := api.do(http.MethodPatch, "/api/v1/notifications/"+uuid.NewString(), `{"is_read":false}`, true)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkAllRead(t *testing.T) {
	api := newTestAPI(t)
	api.notifications.EXPECT().MarkAllRead(gomock.Any(), api.userID).Return(int64(3), nil)

	w := api.do(http.MethodPost, "/api/v1/notifications/read-all", "", true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decodeEnvelope(t, w)["data"].(map[string]interface{})["updated"])
}

func TestDashboard(t *testing.T) {
	api := newTestAPI(t)
	api.portfolio.EXPECT().Dashboard(gomock.Any(), api.userID).Return(&ports.DashboardSummary{
		Currency:   "USD",
		TotalValue: dec("1234.5"),
	}, nil)

	w := api.do(http.MethodGet, "/api/v1/overview/dashboard", "", true)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "1234.5", data["total_value"])
}

func TestCatalog_IsPublic(t *testing.T) {
	api := newTestAPI(t)
	api.purchases.EXPECT().Plans(gomock.Any()).Return(domain.DefaultSubscriptionPlans, nil)
	api.purchases.EXPECT().SignalPackages(gomock.Any()).Return(domain.DefaultSignalPackages, nil)

	w := api.do(http.MethodGet, "/api/v1/catalog", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Len(t, data["currencies"], len(domain.MajorCurrencies))
	assert.Len(t, data["staking_pools"], len(domain.StakingPools))
}

func TestCoinPrices_IsPublic(t *testing.T) {
	api := newTestAPI(t)
	api.prices.EXPECT().CoinPrices(gomock.Any()).Return(map[string]decimal.Decimal{"BTC": dec("50000")}, nil)

	w := api.do(http.MethodGet, "/api/v1/prices/coins", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "USD", data["base"])
	assert.Equal(t, "50000", data["quotes"].(map[string]interface{})["BTC"])
}

func TestExchangeRates_UpstreamDown(t *testing.T) {
	api := newTestAPI(t)
	api.prices.EXPECT().ExchangeRates(gomock.Any()).Return(nil, ports.ErrPriceUnknown)

	w := api.do(http.MethodGet, "/api/v1/prices/exchange-rates", "", false)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "PRC_001", decodeEnvelope(t, w)["error_code"])
}

// --- Payout wallets ---

func TestAddPayoutWallet(t *testing.T) {
	api := newTestAPI(t)
	w := &domain.PayoutWallet{ID: uuid.New(), UserID: api.userID, Name: "Cold", Address: "bc1qcold"}
	api.payouts.EXPECT().Add(gomock.Any(), api.userID, ports.PayoutWalletInput{Name: "Cold", Address: "bc1qcold"}).Return(w, nil)

	resp := api.do(http.MethodPost, "/api/v1/payout-wallets", `{"name":"Cold","address":"bc1qcold"}`, true)

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, w.ID.String(), decodeEnvelope(t, resp)["data"].(map[string]interface{})["id"])
}

func TestAddPayoutWallet_MissingAddress(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodPost, "/api/v1/payout-wallets", `{"name":"Cold"}`, true)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDeletePayoutWallet_OtherUsersWallet(t *testing.T) {
	api := newTestAPI(t)
	id := uuid.New()
	api.payouts.EXPECT().Delete(gomock.Any(), api.userID, id).Return(apperror.ErrNotFound("Payout wallet"))

	resp := api.do(http.MethodDelete, "/api/v1/payout-wallets/"+id.String(), "", true)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

// --- Operator ---

func TestOperator_SetDepositStatus(t *testing.T) {
	api := newTestAPI(t)
	id := uuid.New()
	amount := dec("0.02")
	api.deposits.EXPECT().SetStatus(gomock.Any(), ports.SetDepositStatusRequest{
		DepositID: id,
		Status:    domain.DepositStatusPending,
		Amount:    &amount,
	}).Return(&domain.Deposit{ID: id, Status: domain.DepositStatusPending, Amount: amount}, nil)

	w := api.operator(http.MethodPut, "/api/v1/admin/deposits/"+id.String()+"/status", `{"status":"pending","amount":"0.02"}`)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOperator_TerminalStatusConflict(t *testing.T) {
	api := newTestAPI(t)
	api.withdrawals.EXPECT().SetStatus(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrStatusTransition("confirmed", "canceled"))

	w := api.operator(http.MethodPut, "/api/v1/admin/withdrawals/"+uuid.NewString()+"/status", `{"status":"canceled"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CNF_003", decodeEnvelope(t, w)["error_code"])
}

func TestOperator_SetVerification(t *testing.T) {
	api := newTestAPI(t)
	id := uuid.New()
	api.accounts.EXPECT().SetVerification(gomock.Any(), id, domain.VerificationVerified).
		Return(&domain.User{ID: id, VerificationStatus: domain.VerificationVerified}, nil)

	w := api.operator(http.MethodPut, "/api/v1/admin/users/"+id.String()+"/verification", `{"status":"verified"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "verified", decodeEnvelope(t, w)["data"].(map[string]interface{})["verification_status"])
}

func TestOperator_SetVerification_UnknownStatus(t *testing.T) {
	api := newTestAPI(t)

	w := api.operator(http.MethodPut, "/api/v1/admin/users/"+uuid.NewString()+"/verification", `{"status":"approved"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", decodeEnvelope(t, w)["error_code"])
}

func TestOperator_RejectsUserToken(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodDelete, "/api/v1/admin/deposits/"+uuid.NewString(), "", true)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOperator_DeleteDeposit(t *testing.T) {
	api := newTestAPI(t)
	id := uuid.New()
	api.deposits.EXPECT().Delete(gomock.Any(), id).Return(nil)

	w := api.operator(http.MethodDelete, "/api/v1/admin/deposits/"+id.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOperator_ListPendingWithdrawals(t *testing.T) {
	api := newTestAPI(t)
	api.withdrawals.EXPECT().ListByStatus(gomock.Any(), domain.WithdrawalStatusPending).Return([]domain.Withdrawal{}, nil)

	w := api.operator(http.MethodGet, "/api/v1/admin/withdrawals", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOperator_ListUnknownStatus(t *testing.T) {
	api := newTestAPI(t)

	w := api.operator(http.MethodGet, "/api/v1/admin/deposits?status=lost", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	api := newTestAPI(t)
	api.health.EXPECT().Name().Return("postgresql").AnyTimes()
	api.health.EXPECT().Ping(gomock.Any()).Return(nil)

	w := api.do(http.MethodGet, "/health", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthCheck_Degraded(t *testing.T) {
	api := newTestAPI(t)
	api.health.EXPECT().Name().Return("redis").AnyTimes()
	api.health.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	w := api.do(http.MethodGet, "/health", "", false)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}
