package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"ridepay/internal/handler"
	"ridepay/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	FareHandler        *handler.FareHandler
	MethodHandler      *handler.PaymentMethodHandler
	PaymentHandler     *handler.PaymentHandler
	TransactionHandler *handler.TransactionHandler
	RedisClient        *redis.Client
	NewRelicApp        *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Fare routes.
		fare := v1.Group("/fare")
		{
			fare.GET("/estimate", deps.FareHandler.Estimate)
		}

		// Payment method routes.
		methods := v1.Group("/payment-methods")
		{
			methods.POST("", deps.MethodHandler.Add)
			methods.GET("", deps.MethodHandler.List)
			methods.POST("/:id/default", deps.MethodHandler.SetDefault)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("/ride", deps.PaymentHandler.ProcessRidePayment)
		}

		// Transaction routes.
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", deps.TransactionHandler.History)
			transactions.GET("/analytics", deps.TransactionHandler.Analytics)
			transactions.GET("/:id/receipt", deps.TransactionHandler.Receipt)
		}
	}

	return router
}
