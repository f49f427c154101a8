package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kenlin2709/va/clients"
	"github.com/kenlin2709/va/config"
	"github.com/kenlin2709/va/controllers"
	"github.com/kenlin2709/va/database"
	"github.com/kenlin2709/va/repository"
	"github.com/kenlin2709/va/routes"
	"github.com/kenlin2709/va/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg := config.Load()

	redisClient, err := database.NewRedisClient(cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal("session store unavailable", zap.Error(err))
	}

	// --- Collaborator clients ---
	api := clients.NewAPIClient(cfg.APIBaseURL, cfg.ClientTimeout)
	authAPI := clients.NewAuthClient(api)
	ordersAPI := clients.NewOrdersClient(api)
	couponsAPI := clients.NewCouponsClient(api)
	referralsAPI := clients.NewReferralsClient(api)
	productsAPI := clients.NewProductsClient(api)

	// --- Dependency injection ---
	cartRepo := repository.NewRedisCartRepository(redisClient, cfg.CartTTL)
	tokenRepo := repository.NewRedisTokenRepository(redisClient, cfg.TokenTTL)

	cartService := services.NewCartService(cartRepo, logger)
	sessionService := services.NewSessionService(tokenRepo, authAPI, logger)
	checkoutService := services.NewCheckoutService(cartService, sessionService, authAPI, ordersAPI, couponsAPI, logger)

	cartController := controllers.NewCartController(cartService)
	sessionController := controllers.NewSessionController(sessionService)
	checkoutController := controllers.NewCheckoutController(checkoutService, referralsAPI)
	catalogController := controllers.NewCatalogController(productsAPI, ordersAPI, sessionService)

	// --- HTTP router ---
	r := gin.New()
	r.Use(gin.Recovery())

	// Structured HTTP request logging
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	})

	// Request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.Register(r, cartController, sessionController, checkoutController, catalogController)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "storefront"})
	})

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Storefront service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	checkoutService.Shutdown()

	if err := redisClient.Close(); err != nil {
		logger.Error("Redis close error", zap.Error(err))
	}

	logger.Info("Storefront service stopped gracefully")
}
