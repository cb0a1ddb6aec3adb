package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"ridepay/internal/app"
	"ridepay/internal/config"
	"ridepay/internal/handler"
	"ridepay/internal/provider"
	internalRedis "ridepay/internal/redis"
	"ridepay/internal/repository/postgres"
	"ridepay/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	methodRepo := postgres.NewPaymentMethodRepository(db)
	txnRepo := postgres.NewTransactionRepository(db)

	// Initialize provider adapters.
	dispatcher := provider.NewDispatcher(
		provider.DispatcherConfig{
			Timeout:      cfg.Providers.Timeout,
			MaxRetries:   cfg.Providers.MaxRetries,
			RetryBackoff: cfg.Providers.RetryBackoff,
		},
		[]provider.Provider{
			provider.NewMoMoAdapter(providerConfig(cfg.Providers.MTN, cfg.Providers.Mock)),
			provider.NewVodafoneAdapter(providerConfig(cfg.Providers.Vodafone, cfg.Providers.Mock)),
		},
		provider.NewCardAdapter(providerConfig(cfg.Providers.Card, cfg.Providers.Mock)),
	)

	// Initialize services.
	fareService := service.NewFareService()
	methodService := service.NewMethodService(db, methodRepo, lockStore, cacheStore)
	ledgerService := service.NewLedgerService(txnRepo)
	receiptService := service.NewReceiptService()
	paymentService := service.NewPaymentService(methodRepo, ledgerService, dispatcher)

	// Initialize handlers.
	fareHandler := handler.NewFareHandler(fareService)
	methodHandler := handler.NewPaymentMethodHandler(methodService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	transactionHandler := handler.NewTransactionHandler(ledgerService, receiptService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		FareHandler:        fareHandler,
		MethodHandler:      methodHandler,
		PaymentHandler:     paymentHandler,
		TransactionHandler: transactionHandler,
		RedisClient:        redisClient,
		NewRelicApp:        nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

func providerConfig(pc config.ProviderConfig, mock bool) provider.Config {
	return provider.Config{
		BaseURL: pc.BaseURL,
		APIKey:  pc.APIKey,
		Mock:    mock,
		Latency: pc.Latency,
	}
}
