package handler

import (
	"payflow/internal/adapter/http/middleware"
	redisStore "payflow/internal/adapter/storage/redis"
	"payflow/internal/core/domain"
	"payflow/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds every dependency SetupRouter needs to wire the HTTP
// surface. Fields that are nil disable the feature they back (rate
// limiting, health checks) rather than panicking.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	MerchantSvc    ports.MerchantService
	OrderSvc       ports.OrderService
	PaymentSvc     ports.PaymentService
	RefundSvc      ports.RefundService
	WebhookSvc     ports.WebhookService
	AdminSvc       ports.AdminService
	KeyStoreSvc    ports.KeyStoreService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with every route in the external
// interface: /auth, /merchants, /v1 (Basic auth), /pay (public), /admin
// (JWT, admin role).
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc)
	basicAuth := middleware.BasicAuth(deps.KeyStoreSvc, deps.Logger)

	// --- /auth: public registration/login, JWT for password change ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := r.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login-json", rl("auth_login"), authHandler.LoginJSON)
		auth.POST("/change-password", jwtAuth, authHandler.ChangePassword)
	}

	// --- /merchants: JWT, role=merchant ---
	merchantHandler := NewMerchantHandler(deps.MerchantSvc)
	merchants := r.Group("/merchants", jwtAuth, middleware.RequireRole(domain.RoleMerchant))
	{
		merchants.POST("/", merchantHandler.Create)
		merchants.GET("/me", merchantHandler.Me)
		merchants.PUT("/me/webhook", merchantHandler.UpdateWebhookURL)
		merchants.POST("/me/keys", merchantHandler.IssueKey)
		merchants.DELETE("/me/keys/:key_id", merchantHandler.RevokeKey)
		merchants.GET("/me/qr-code", merchantHandler.QRCode)
	}

	// --- /v1: Basic auth (merchant API key) ---
	orderHandler := NewOrderHandler(deps.OrderSvc)
	paymentHandler := NewPaymentHandler(deps.PaymentSvc, deps.RefundSvc)
	webhookHandler := NewWebhookHandler(deps.WebhookSvc)

	v1 := r.Group("/v1", basicAuth)
	{
		v1.POST("/orders", rl("orders"), orderHandler.Create)
		v1.GET("/orders", orderHandler.List)
		v1.GET("/orders/:order_ref", orderHandler.Get)
		v1.GET("/orders/:order_ref/payments", orderHandler.Payments)

		v1.GET("/payments/:payment_ref", paymentHandler.Get)
		v1.POST("/payments/:payment_ref/capture", rl("payments"), paymentHandler.Capture)
		v1.POST("/payments/:payment_ref/refund", rl("payments_refund"), paymentHandler.Refund)
		v1.GET("/payments/:payment_ref/refunds", paymentHandler.Refunds)

		v1.GET("/webhooks/logs", webhookHandler.Logs)
	}

	// --- /pay: public hosted checkout, no auth, order_ref is the capability ---
	checkoutHandler := NewCheckoutHandler(deps.OrderSvc, deps.MerchantSvc, deps.PaymentSvc)
	pay := r.Group("/pay")
	{
		pay.GET("/:order_ref/merchant", checkoutHandler.MerchantInfo)
		pay.POST("/:order_ref", rl("checkout"), checkoutHandler.Submit)
	}

	// --- /admin: JWT, role=admin, read-only analytics ---
	adminHandler := NewAdminHandler(deps.AdminSvc)
	admin := r.Group("/admin", jwtAuth, middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/flagged", adminHandler.Flagged)
	}

	return r
}
