package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kopahq/kopa-backend/internal/config"
	"github.com/kopahq/kopa-backend/internal/handler"
	"github.com/kopahq/kopa-backend/internal/middleware"
	"github.com/kopahq/kopa-backend/internal/notify"
	"github.com/kopahq/kopa-backend/internal/repository/postgres"
	"github.com/kopahq/kopa-backend/internal/repository/storage"
	"github.com/kopahq/kopa-backend/internal/service"
	"github.com/kopahq/kopa-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	borrowerRepo := postgres.NewBorrowerRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	installmentRepo := postgres.NewInstallmentRepository(pool)
	repaymentRepo := postgres.NewRepaymentRepository(pool)
	unmatchedRepo := postgres.NewUnmatchedPaymentRepository(pool)

	// Raw callback archive (S3 or MinIO); optional, the pipeline runs without it
	var archiveRepo storage.ArchiveRepository
	if cfg.S3.Bucket != "" {
		s3Repo, err := storage.NewS3ArchiveRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("Callback archive unavailable, continuing without it")
		} else {
			archiveRepo = s3Repo
			log.Info().Str("bucket", cfg.S3.Bucket).Msg("Callback archive ready")
		}
	}

	// WebSocket hub for back-office real-time updates
	hub := websocket.NewHub()

	// Initialize services
	borrowerService := service.NewBorrowerService(borrowerRepo)
	loanService := service.NewLoanService(loanRepo, borrowerRepo, installmentRepo, repaymentRepo)
	loanService.SetEventPublisher(hub)
	scheduleService := service.NewScheduleService(pool, loanRepo, installmentRepo)
	scheduleService.SetEventPublisher(hub)
	matcherService := service.NewMatcherService(loanRepo, borrowerRepo)
	allocationService := service.NewAllocationService(pool, loanRepo, installmentRepo, repaymentRepo)
	unmatchedService := service.NewUnmatchedService(unmatchedRepo)
	notifier := notify.NewSMSNotifier(cfg.SMS, nil)
	callbackService := service.NewCallbackService(matcherService, allocationService, repaymentRepo, unmatchedRepo, archiveRepo, notifier)
	callbackService.SetEventPublisher(hub)

	// Initialize middleware
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(cfg.StaffAPIKey)
	webhookLimiter := middleware.NewRateLimiter(cfg.WebhookRateLimit, cfg.WebhookBurst)
	defer webhookLimiter.Stop()

	// Initialize handlers
	callbackHandler := handler.NewCallbackHandler(callbackService)
	borrowerHandler := handler.NewBorrowerHandler(borrowerService)
	loanHandler := handler.NewLoanHandler(loanService, scheduleService)
	unmatchedHandler := handler.NewUnmatchedHandler(unmatchedService)
	wsHandler := handler.NewWebSocketHandler(hub, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware.APIKeyHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, apiKeyMiddleware, webhookLimiter, callbackHandler, borrowerHandler, loanHandler, unmatchedHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
