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

	"tienda-api/internal/config"
	"tienda-api/internal/coupon"
	"tienda-api/internal/database"
	"tienda-api/internal/handler"
	"tienda-api/internal/mercadopago"
	"tienda-api/internal/middleware"
	"tienda-api/internal/repository"
	"tienda-api/internal/router"
	"tienda-api/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting tienda API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize coupon validator
	validator, err := coupon.NewValidator(ctx, &coupon.ValidatorConfig{FilePath: cfg.Coupons.File}, newCouponLoader(ctx, cfg, logger), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize coupon validator: %w", err)
	}
	defer validator.Close()

	// Initialize payment provider
	gateway, err := mercadopago.NewGateway(mercadopago.Config{
		AccessToken:         cfg.MercadoPago.AccessToken,
		BaseURL:             cfg.Server.BaseURL,
		Timeout:             cfg.MercadoPago.Timeout,
		MaxInstallments:     cfg.MercadoPago.MaxInstallments,
		StatementDescriptor: cfg.MercadoPago.StatementDescriptor,
		Currency:            cfg.MercadoPago.Currency,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mercadopago gateway: %w", err)
	}
	verifier := mercadopago.NewSignatureVerifier(cfg.MercadoPago.WebhookSecret, logger)

	logger.Info().
		Str("notification_url", gateway.NotificationURL()).
		Bool("signature_verification", verifier.Enabled()).
		Msg("mercadopago configured")

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, validator, service.OrderOptions{
		NumberMaxAttempts: cfg.Orders.NumberMaxAttempts,
	}, logger)
	checkoutService := service.NewCheckoutService(orderRepo, gateway, logger)
	reconciliationService := service.NewReconciliationService(orderRepo, gateway, verifier, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Health:   handler.NewHealthHandler(pool, logger),
		Product:  handler.NewProductHandler(productService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Webhook:  handler.NewWebhookHandler(reconciliationService, logger),
	}, router.Options{
		AdminAPIKey:  cfg.Auth.AdminAPIKey,
		Auth:         middleware.NewJWTAuth(cfg.Auth.JWTSecret, logger),
		WebhookRPS:   cfg.Webhook.RatePerSecond,
		WebhookBurst: cfg.Webhook.Burst,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCouponLoader prefers S3 when enabled and falls back to the local file.
func newCouponLoader(ctx context.Context, cfg *config.Config, logger zerolog.Logger) coupon.Loader {
	fileLoader := coupon.NewFileLoader(logger)
	if !cfg.S3.Enabled {
		logger.Info().Msg("using local file system for coupon catalog (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}

	return coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
}
