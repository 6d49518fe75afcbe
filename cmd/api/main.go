package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payflow/config"
	"payflow/internal/adapter/cache"
	httpHandler "payflow/internal/adapter/http/handler"
	"payflow/internal/adapter/queue"
	pgStorage "payflow/internal/adapter/storage/postgres"
	redisStorage "payflow/internal/adapter/storage/redis"
	"payflow/internal/core/ports"
	"payflow/internal/service"
	"payflow/internal/service/webhookdispatch"
	"payflow/pkg/logger"

	"github.com/hibiken/asynq"
)

const merchantKeyCacheTTL = 30 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting PayFlow")

	ctx := context.Background()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB}

	// Repositories
	userRepo := pgStorage.NewUserRepo(pool)
	merchantRepo := pgStorage.NewMerchantRepo(pool)
	apiKeyRepo := pgStorage.NewApiKeyRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	refundRepo := pgStorage.NewRefundRepo(pool)
	webhookEventRepo := pgStorage.NewWebhookEventRepo(pool)
	webhookLogRepo := pgStorage.NewWebhookLogRepo(pool)
	adminRepo := pgStorage.NewAdminRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Merchant API key lookups sit behind a short TTL cache: Basic auth runs
	// on every /v1 request, so this is the hottest repository read in the
	// gateway.
	keyCache := cache.NewMerchantKeyCache(apiKeyRepo, merchantKeyCacheTTL)

	idemCache := redisStorage.NewIdempotencyCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Core services
	idSvc := service.NewIdentifierService()
	signer := service.NewSigningService()
	hashSvc := service.NewHashService()
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	fraud := service.NewFraudEngine()
	authorizer := service.NewAuthorizationSimulator()

	// Webhook notification channel: asynq wakes the dispatcher the instant a
	// new outbox row commits, instead of waiting out the next poll tick.
	notifier := queue.NewNotifier(redisOpt, log)
	defer notifier.Close()

	keyStoreSvc := service.NewKeyStoreService(keyCache, merchantRepo, idSvc, keyCache)

	// Business services
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, log)
	merchantSvc := service.NewMerchantService(merchantRepo, keyStoreSvc)
	orderSvc := service.NewOrderService(transactor, orderRepo, paymentRepo, idSvc, idemCache)
	paymentSvc := service.NewPaymentService(transactor, orderRepo, paymentRepo, webhookEventRepo, idSvc, fraud, authorizer, notifier)
	refundSvc := service.NewRefundService(transactor, orderRepo, paymentRepo, refundRepo, webhookEventRepo, idSvc, authorizer, notifier)
	webhookSvc := service.NewWebhookService(webhookEventRepo)
	adminSvc := service.NewAdminService(adminRepo, paymentRepo)

	// Webhook dispatcher: claims outbox rows under SELECT ... FOR UPDATE SKIP
	// LOCKED and delivers them, signing each body with the merchant's secret.
	dispatcher := webhookdispatch.NewDispatcher(webhookEventRepo, webhookLogRepo, merchantRepo, signer, nil, log)
	dispatchCtx, cancelDispatch := context.WithCancel(ctx)
	wake := make(chan struct{}, 1)
	go dispatcher.Run(dispatchCtx, wake)

	// Outbox inserts are announced through an asynq wake task whose handler
	// drains the outbox directly. Nothing sends on wake, so rows not drained
	// by a task are picked up on the dispatcher's next poll tick.
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskWebhookWake, func(taskCtx context.Context, _ *asynq.Task) error {
		_, err := dispatcher.DrainOnce(taskCtx)
		return err
	})
	asynqSrv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"default": 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("task", task.Type()).Msg("webhook wake task failed")
		}),
	})
	go func() {
		if err := asynqSrv.Run(mux); err != nil {
			log.Error().Err(err).Msg("asynq server stopped")
		}
	}()

	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		MerchantSvc:    merchantSvc,
		OrderSvc:       orderSvc,
		PaymentSvc:     paymentSvc,
		RefundSvc:      refundSvc,
		WebhookSvc:     webhookSvc,
		AdminSvc:       adminSvc,
		KeyStoreSvc:    keyStoreSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	cancelDispatch()
	asynqSrv.Shutdown()

	log.Info().Msg("Server exited")
}
