package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/securepulses/gatekeeper/internal/background"
	"github.com/securepulses/gatekeeper/internal/config"
	"github.com/securepulses/gatekeeper/internal/handlers"
	middlewareCustom "github.com/securepulses/gatekeeper/internal/middleware"
	"github.com/securepulses/gatekeeper/internal/routes"
	"github.com/securepulses/gatekeeper/internal/services"
	pkghttp "github.com/securepulses/gatekeeper/pkg/http"
	pkglogger "github.com/securepulses/gatekeeper/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration; a missing sender address fails closed here rather
	// than on the first real submission
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// AWS SES notification sender
	emailService, err := services.NewAWSSESEmailService(
		cfg.Email.AWSRegion,
		cfg.Email.FromAddress,
		cfg.Email.AdminAddress,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Gatekeeping pipeline stages
	incidentLogger := pkglogger.NewIncidentLogger(logger)

	detector := services.NewAbuseDetector(services.AbuseConfig{
		MinFillTime: cfg.Gate.MinFillTime,
		MaxFillTime: cfg.Gate.MaxFillTime,
	}, logger)

	limiter := services.NewRateLimitService(services.RateLimitConfig{
		MaxAttempts:   cfg.Gate.MaxAttempts,
		Window:        cfg.Gate.Window,
		MinAttemptGap: cfg.Gate.MinAttemptGap,
	}, logger)

	contactService := services.NewContactService(
		detector,
		limiter,
		emailService,
		incidentLogger,
		logger,
		cfg.Email.SendConfirmation,
		cfg.Email.DispatchTimeout,
	)

	// Initialize handlers. The IPConfig is the single place forwarding headers
	// are interpreted; both rate-limit keys derive from it.
	ipConfig := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	contactHandler := handlers.NewContactHandler(contactService, ipConfig, cfg.Gate.MaxBodyBytes, logger)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	// Setup router
	// No RealIP middleware: it rewrites RemoteAddr from client-controlled
	// headers, which would let a direct client choose its rate-limit key.
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, contactHandler, middlewareCustom.PerimeterRateLimitConfig{
		RequestsPerMinute: cfg.Gate.PerIPRequestsPerMinute,
		IPConfig:          ipConfig,
	})

	// Health check; no dependencies to probe, so report liveness and how much
	// limiter state is held
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","tracked_keys":%d}`, limiter.TrackedKeys())
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start limiter sweep task
	sweeper := background.NewLimiterSweeper(limiter, logger, cfg.Gate.SweepInterval)

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()

	go sweeper.Start(sweepCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	sweepCancel()
	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
