package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "payflow/internal/adapter/http/handler"
	"payflow/internal/service"
	"payflow/internal/service/webhookdispatch"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp wires the real services and HTTP router over in-memory fakes for
// every repository port, so the whole request path — middleware, handlers,
// services, the state machine, the fraud engine, the dispatcher — runs for
// real. Postgres, Redis and asynq are absent, so the idempotency cache and
// rate limiting are not wired.
type testApp struct {
	server       *httptest.Server
	webhookRepo  *inMemoryWebhookEventRepo
	webhookLog   *inMemoryWebhookLogRepo
	merchantRepo *inMemoryMerchantRepo
	dispatcher   *webhookdispatch.Dispatcher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	log := zerolog.Nop()

	idSvc := service.NewIdentifierService()
	sigSvc := service.NewSigningService()
	hashSvc := service.NewHashService()
	tokenSvc := service.NewTokenService("test-jwt-secret-at-least-32-bytes!!", time.Hour, "payflow-test")
	fraudEngine := service.NewFraudEngine()
	authorizer := service.NewAuthorizationSimulator()

	userRepo := newInMemoryUserRepo()
	merchantRepo := newInMemoryMerchantRepo()
	apiKeyRepo := newInMemoryApiKeyRepo()
	orderRepo := newInMemoryOrderRepo()
	paymentRepo := newInMemoryPaymentRepo()
	refundRepo := newInMemoryRefundRepo()
	webhookRepo := newInMemoryWebhookEventRepo()
	webhookLogRepo := newInMemoryWebhookLogRepo()
	adminRepo := newInMemoryAdminRepo(orderRepo, paymentRepo, refundRepo)
	transactor := newInMemoryTransactor()

	keyStoreSvc := service.NewKeyStoreService(apiKeyRepo, merchantRepo, idSvc, nil)
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, log)
	merchantSvc := service.NewMerchantService(merchantRepo, keyStoreSvc)
	orderSvc := service.NewOrderService(transactor, orderRepo, paymentRepo, idSvc, nil)
	paymentSvc := service.NewPaymentService(transactor, orderRepo, paymentRepo, webhookRepo, idSvc, fraudEngine, authorizer, nil)
	refundSvc := service.NewRefundService(transactor, orderRepo, paymentRepo, refundRepo, webhookRepo, idSvc, authorizer, nil)
	webhookSvc := service.NewWebhookService(webhookRepo)
	adminSvc := service.NewAdminService(adminRepo, paymentRepo)

	dispatcher := webhookdispatch.NewDispatcher(webhookRepo, webhookLogRepo, merchantRepo, sigSvc, nil, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:     authSvc,
		MerchantSvc: merchantSvc,
		OrderSvc:    orderSvc,
		PaymentSvc:  paymentSvc,
		RefundSvc:   refundSvc,
		WebhookSvc:  webhookSvc,
		AdminSvc:    adminSvc,
		KeyStoreSvc: keyStoreSvc,
		TokenSvc:    tokenSvc,
		Logger:      log,
	})

	server := httptest.NewServer(router)
	return &testApp{
		server:       server,
		webhookRepo:  webhookRepo,
		webhookLog:   webhookLogRepo,
		merchantRepo: merchantRepo,
		dispatcher:   dispatcher,
	}
}

func (a *testApp) close() { a.server.Close() }

// --- request helpers ---

type reqOpts struct {
	bearer      string
	basicID     string
	basicSecret string
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, opts reqOpts) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if opts.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+opts.bearer)
	}
	if opts.basicID != "" {
		req.SetBasicAuth(opts.basicID, opts.basicSecret)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", string(raw))
	}
	return resp.StatusCode, parsed
}

func (a *testApp) data(t *testing.T, parsed map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := parsed["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", parsed)
	return d
}

// registerMerchant registers a merchant-role user, logs in, creates the
// merchant profile, and issues one API key. It returns the bearer token and
// the issued key_id/key_secret pair.
func (a *testApp) registerMerchant(t *testing.T, email string) (token, keyID, keySecret string, merchant map[string]interface{}) {
	t.Helper()

	status, _ := a.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name":     "Merchant Owner",
		"email":    email,
		"password": "correct horse battery staple",
		"role":     "merchant",
	}, reqOpts{})
	require.Equal(t, http.StatusCreated, status)

	status, parsed := a.do(t, http.MethodPost, "/auth/login-json", map[string]string{
		"email":    email,
		"password": "correct horse battery staple",
	}, reqOpts{})
	require.Equal(t, http.StatusOK, status)
	token = a.data(t, parsed)["access_token"].(string)

	status, parsed = a.do(t, http.MethodPost, "/merchants/", map[string]interface{}{
		"business_name":  "Acme Traders",
		"business_email": "billing+" + email,
	}, reqOpts{bearer: token})
	require.Equal(t, http.StatusCreated, status, "%v", parsed)
	merchant = a.data(t, parsed)

	status, parsed = a.do(t, http.MethodPost, "/merchants/me/keys", map[string]string{
		"label": "integration-test-key",
	}, reqOpts{bearer: token})
	require.Equal(t, http.StatusCreated, status, "%v", parsed)
	keyData := a.data(t, parsed)
	keyID = keyData["key_id"].(string)
	keySecret = keyData["key_secret"].(string)
	return token, keyID, keySecret, merchant
}

func (a *testApp) createOrder(t *testing.T, keyID, keySecret string, amount int64, autoCapture *bool, idempotencyKey *string) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{"amount": amount, "currency": "INR", "receipt": "receipt-1"}
	if autoCapture != nil {
		body["auto_capture"] = *autoCapture
	}
	if idempotencyKey != nil {
		body["idempotency_key"] = *idempotencyKey
	}
	status, parsed := a.do(t, http.MethodPost, "/v1/orders", body, reqOpts{basicID: keyID, basicSecret: keySecret})
	require.Equal(t, http.StatusCreated, status, "%v", parsed)
	return a.data(t, parsed)
}

func (a *testApp) submitPayment(t *testing.T, orderRef string, method, vpa string) (int, map[string]interface{}) {
	t.Helper()
	status, parsed := a.do(t, http.MethodPost, "/pay/"+orderRef, map[string]string{
		"method": method,
		"vpa":    vpa,
	}, reqOpts{})
	if status >= 200 && status < 300 {
		return status, a.data(t, parsed)
	}
	return status, parsed
}

// --- tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_DuplicateEmailRegistration(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	body := map[string]string{
		"name": "Dup", "email": "dup@example.com", "password": "correct horse battery staple", "role": "user",
	}
	status, _ := app.do(t, http.MethodPost, "/auth/register", body, reqOpts{})
	require.Equal(t, http.StatusCreated, status)

	status, parsed := app.do(t, http.MethodPost, "/auth/register", body, reqOpts{})
	assert.Equal(t, http.StatusConflict, status, "%v", parsed)
}

func TestIntegration_LoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name": "X", "email": "x@example.com", "password": "correct horse battery staple", "role": "user",
	}, reqOpts{})

	status, _ := app.do(t, http.MethodPost, "/auth/login-json", map[string]string{
		"email": "x@example.com", "password": "wrong password entirely",
	}, reqOpts{})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestIntegration_MerchantRoutesRequireMerchantRole(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name": "Plain", "email": "plain@example.com", "password": "correct horse battery staple", "role": "user",
	}, reqOpts{})
	status, parsed := app.do(t, http.MethodPost, "/auth/login-json", map[string]string{
		"email": "plain@example.com", "password": "correct horse battery staple",
	}, reqOpts{})
	require.Equal(t, http.StatusOK, status)
	token := app.data(t, parsed)["access_token"].(string)

	status, _ = app.do(t, http.MethodGet, "/merchants/me", nil, reqOpts{bearer: token})
	assert.Equal(t, http.StatusForbidden, status)
}

// E1: happy path UPI payment, auto-captured, order transitions to paid.
func TestIntegration_E1_HappyPathUPI(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, keyID, keySecret, _ := app.registerMerchant(t, "e1@example.com")
	order := app.createOrder(t, keyID, keySecret, 1_000, nil, nil)
	orderRef := order["order_ref"].(string)

	status, payment := app.submitPayment(t, orderRef, "upi", "alice@upi")
	require.Equal(t, http.StatusCreated, status, "%v", payment)
	assert.Equal(t, "captured", payment["status"])
	assert.Equal(t, false, payment["is_flagged"])

	status, parsed := app.do(t, http.MethodGet, "/v1/orders/"+orderRef, nil, reqOpts{basicID: keyID, basicSecret: keySecret})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paid", app.data(t, parsed)["status"])
}

// E2: an amount over the high-value threshold is flagged but still
// authorized by the simulator (only a fail@ VPA declines).
func TestIntegration_E2_HighValueFlag(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, keyID, keySecret, _ := app.registerMerchant(t, "e2@example.com")
	order := app.createOrder(t, keyID, keySecret, 75_000, nil, nil)

	status, payment := app.submitPayment(t, order["order_ref"].(string), "upi", "bob@upi")
	require.Equal(t, http.StatusCreated, status, "%v", payment)
	assert.Equal(t, true, payment["is_flagged"])
	assert.Contains(t, payment["rule_hits"], "high_value")
	assert.Equal(t, "captured", payment["status"])
}

// E3: a second payment for the same payer identity and amount within the
// fraud engine's lookback window is flagged duplicate_amount.
func TestIntegration_E3_DuplicateAmountFlag(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, keyID, keySecret, _ := app.registerMerchant(t, "e3@example.com")

	order1 := app.createOrder(t, keyID, keySecret, 1_000, nil, nil)
	status, first := app.submitPayment(t, order1["order_ref"].(string), "upi", "carol@upi")
	require.Equal(t, http.StatusCreated, status, "%v", first)
	assert.Equal(t, false, first["is_flagged"])

	order2 := app.createOrder(t, keyID, keySecret, 1_000, nil, nil)
	status, second := app.submitPayment(t, order2["order_ref"].(string), "upi", "carol@upi")
	require.Equal(t, http.StatusCreated, status, "%v", second)
	assert.Equal(t, true, second["is_flagged"])
	assert.Contains(t, second["rule_hits"], "duplicate_amount")
}

// E4: a captured payment can be partially refunded, then refunded again up
// to its original amount; a refund past that remainder conflicts.
func TestIntegration_E4_PartialThenOverRefund(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, keyID, keySecret, _ := app.registerMerchant(t, "e4@example.com")
	order := app.createOrder(t, keyID, keySecret, 10_000, nil, nil)
	status, payment := app.submitPayment(t, order["order_ref"].(string), "upi", "dave@upi")
	require.Equal(t, http.StatusCreated, status, "%v", payment)
	paymentRef := payment["payment_ref"].(string)

	status, parsed := app.do(t, http.MethodPost, "/v1/payments/"+paymentRef+"/refund",
		map[string]interface{}{"amount": int64(4_000), "reason": "requested_by_customer"},
		reqOpts{basicID: keyID, basicSecret: keySecret})
	require.Equal(t, http.StatusCreated, status, "%v", parsed)
	assert.Equal(t, "processed", app.data(t, parsed)["status"])

	status, parsed = app.do(t, http.MethodGet, "/v1/payments/"+paymentRef, nil, reqOpts{basicID: keyID, basicSecret: keySecret})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "partially_refunded", app.data(t, parsed)["status"])

	// Remainder is 6,000; refunding it fully should succeed.
	status, parsed = app.do(t, http.MethodPost, "/v1/payments/"+paymentRef+"/refund",
		map[string]interface{}{"amount": int64(6_000), "reason": "requested_by_customer"},
		reqOpts{basicID: keyID, basicSecret: keySecret})
	require.Equal(t, http.StatusCreated, status, "%v", parsed)

	// Anything further now conflicts: nothing left to refund.
	status, parsed = app.do(t, http.MethodPost, "/v1/payments/"+paymentRef+"/refund",
		map[string]interface{}{"amount": int64(1), "reason": "requested_by_customer"},
		reqOpts{basicID: keyID, basicSecret: keySecret})
	assert.Equal(t, http.StatusConflict, status, "%v", parsed)
}

// E5: replaying an order create with the same idempotency key and the same
// body returns the original order rather than creating a second one.
func TestIntegration_E5_IdempotentOrderReplay(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, keyID, keySecret, _ := app.registerMerchant(t, "e5@example.com")
	key := "checkout-session-123"

	first := app.createOrder(t, keyID, keySecret, 2_500, nil, &key)
	second := app.createOrder(t, keyID, keySecret, 2_500, nil, &key)
	assert.Equal(t, first["order_ref"], second["order_ref"])

	status, parsed := app.do(t, http.MethodGet, "/v1/orders", nil, reqOpts{basicID: keyID, basicSecret: keySecret})
	require.Equal(t, http.StatusOK, status)
	orders, ok := parsed["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, orders, 1)
}

// E6: a webhook delivery that fails once is retried and then succeeds on
// the dispatcher's next drain, with a valid signature on every attempt.
func TestIntegration_E6_WebhookRetryThenSucceed(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, keyID, keySecret, merchant := app.registerMerchant(t, "e6@example.com")

	var calls int
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		sig := r.Header.Get("X-Payflow-Signature")
		assert.NotEmpty(t, sig)
		assert.Equal(t, "payment.captured", r.Header.Get("X-Payflow-Event"))
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer endpoint.Close()

	status, parsed := app.do(t, http.MethodPut, "/merchants/me/webhook",
		map[string]string{"webhook_url": endpoint.URL},
		reqOpts{bearer: mustToken(t, app, "e6@example.com")})
	require.Equal(t, http.StatusOK, status, "%v", parsed)

	order := app.createOrder(t, keyID, keySecret, 1_200, nil, nil)
	status, payment := app.submitPayment(t, order["order_ref"].(string), "upi", "erin@upi")
	require.Equal(t, http.StatusCreated, status, "%v", payment)

	ctx := context.Background()
	n, err := app.dispatcher.DrainOnce(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
	assert.Equal(t, 1, calls)

	// The fake ClaimPending ignores next_attempt_at, so a second drain
	// delivers the retried event immediately instead of waiting out backoff.
	n, err = app.dispatcher.DrainOnce(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
	assert.Equal(t, 2, calls)

	merchantID, err := uuid.Parse(merchant["id"].(string))
	require.NoError(t, err)
	events, err := app.webhookRepo.ListByMerchant(ctx, merchantID, 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	var captured bool
	for _, e := range events {
		if e.Event == "payment.captured" {
			captured = true
			assert.Equal(t, "delivered", string(e.Status))
		}
	}
	assert.True(t, captured)
}

func TestIntegration_AdminStatsAndFlagged(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, keyID, keySecret, _ := app.registerMerchant(t, "admin-seed@example.com")
	order := app.createOrder(t, keyID, keySecret, 60_000, nil, nil)
	status, payment := app.submitPayment(t, order["order_ref"].(string), "upi", "flagged@upi")
	require.Equal(t, http.StatusCreated, status, "%v", payment)

	status, parsed := app.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name": "Root", "email": "admin@example.com", "password": "correct horse battery staple", "role": "admin",
	}, reqOpts{})
	require.Equal(t, http.StatusCreated, status, "%v", parsed)
	status, parsed = app.do(t, http.MethodPost, "/auth/login-json", map[string]string{
		"email": "admin@example.com", "password": "correct horse battery staple",
	}, reqOpts{})
	require.Equal(t, http.StatusOK, status)
	token := app.data(t, parsed)["access_token"].(string)

	status, parsed = app.do(t, http.MethodGet, "/admin/stats", nil, reqOpts{bearer: token})
	require.Equal(t, http.StatusOK, status, "%v", parsed)
	stats := app.data(t, parsed)
	assert.EqualValues(t, 1, stats["total_orders"])
	assert.EqualValues(t, 1, stats["flagged_payments"])

	status, parsed = app.do(t, http.MethodGet, "/admin/flagged", nil, reqOpts{bearer: token})
	require.Equal(t, http.StatusOK, status)
	flagged, ok := parsed["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, flagged, 1)
}

// mustToken re-logs-in an already-registered merchant owner to get a fresh
// bearer token without threading one through every helper signature.
func mustToken(t *testing.T, app *testApp, email string) string {
	t.Helper()
	status, parsed := app.do(t, http.MethodPost, "/auth/login-json", map[string]string{
		"email": email, "password": "correct horse battery staple",
	}, reqOpts{})
	require.Equal(t, http.StatusOK, status)
	return app.data(t, parsed)["access_token"].(string)
}
