// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "go.uber.org/automaxprocs"

	"github.com/carterperez-dev/enhancify/internal/admin"
	"github.com/carterperez-dev/enhancify/internal/auth"
	"github.com/carterperez-dev/enhancify/internal/billing"
	"github.com/carterperez-dev/enhancify/internal/config"
	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/document"
	"github.com/carterperez-dev/enhancify/internal/extract"
	"github.com/carterperez-dev/enhancify/internal/health"
	"github.com/carterperez-dev/enhancify/internal/history"
	"github.com/carterperez-dev/enhancify/internal/llm"
	"github.com/carterperez-dev/enhancify/internal/mail"
	"github.com/carterperez-dev/enhancify/internal/middleware"
	"github.com/carterperez-dev/enhancify/internal/optimize"
	"github.com/carterperez-dev/enhancify/internal/resume"
	"github.com/carterperez-dev/enhancify/internal/server"
	"github.com/carterperez-dev/enhancify/internal/usage"
	"github.com/carterperez-dev/enhancify/internal/user"
)

const (
	drainDelay = 5 * time.Second

	recoveryRequestsPerHour = 5
)

var errOCRUnavailable = errors.New("ocr binaries not available")

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	cookie := middleware.SessionCookie{
		Name:   cfg.Session.CookieName,
		Domain: cfg.Session.CookieDomain,
		Secure: cfg.Session.CookieSecure,
		TTL:    cfg.Session.TTL,
	}

	files, err := resume.NewDiskStore(cfg.Upload.Dir)
	if err != nil {
		return err
	}

	sessions := auth.NewRedisSessionStore(redis.Client)

	userSvc := user.NewService(user.NewRepository(db.DB), sessions, files, logger)
	userHandler := user.NewHandler(userSvc, cookie)

	mailer := mail.NewMailer(cfg.Mail, mail.NewSender(cfg.Mail, logger))

	authSvc := auth.NewService(
		jwtManager,
		sessions,
		auth.NewResetTokenRepository(db.DB),
		userSvc,
		mailer,
		auth.ServiceConfig{
			SessionTTL: cfg.Session.TTL,
			ClientURL:  cfg.App.ClientURL,
		},
		logger,
	)
	authHandler := auth.NewHandler(authSvc, cookie)

	oauthProviders := auth.NewOAuthProviders(cfg.OAuth, cfg.App.PublicURL)
	oauthHandler := auth.NewOAuthHandler(
		authSvc,
		oauthProviders,
		cookie,
		cfg.App.ClientURL,
		logger,
	)
	logger.Info("oauth providers configured", "count", len(oauthProviders))

	var ocr extract.OCR
	commandOCR := extract.NewCommandOCR(cfg.Upload.RasterCommand, cfg.Upload.OCRCommand)
	if cfg.Upload.OCREnabled {
		if commandOCR.Available() {
			ocr = commandOCR
		} else {
			logger.Warn("ocr binaries not found, scanned PDFs will not be recognized",
				"raster_command", cfg.Upload.RasterCommand,
				"ocr_command", cfg.Upload.OCRCommand,
			)
		}
	}

	resumeRepo := resume.NewRepository(db.DB)
	resumeSvc := resume.NewService(
		resumeRepo,
		extract.New(cfg.Upload, ocr),
		files,
		resume.NewLimiter(resumeRepo, cfg.Upload.WindowLimit, cfg.Upload.Window),
		resume.ServiceConfig{RequireJobDescription: cfg.LLM.RequireJobDescription},
		logger,
	)
	resumeHandler := resume.NewHandler(resumeSvc, cfg.Upload.MaxBytes)

	usageRepo := usage.NewRepository(db.DB)
	gate := usage.NewGate(usageRepo, cfg.Usage.Location(), logger)

	var completer llm.Completer
	if cfg.LLM.Mock {
		completer = llm.NewMockClient()
		logger.Warn("llm mock mode enabled, no provider calls will be made")
	} else {
		completer = llm.NewAnthropicClient(cfg.LLM, logger)
	}

	optimizeSvc := optimize.NewService(
		optimize.NewRepository(db.DB),
		gate,
		completer,
		resumeSvc,
		optimize.ServiceConfig{RequireJobDescription: cfg.LLM.RequireJobDescription},
		logger,
	)
	optimizeHandler := optimize.NewHandler(optimizeSvc, document.NewRenderer())

	historySvc := history.NewService(
		history.NewRepository(db.DB),
		optimizeSvc,
		cfg.History.Retention,
		logger,
	)
	historyHandler := history.NewHandler(historySvc)

	billingSvc := billing.NewService(
		billing.NewRepository(db.DB),
		usageRepo,
		gate,
		billing.NewStripeProvider(cfg.Stripe),
		cfg.Billing,
		logger,
	)
	billingHandler := billing.NewHandler(billingSvc)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Analytics:  admin.NewAnalyticsService(admin.NewRepository(db.DB)),
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	retention := history.NewRetention(
		cfg.History.Schedule,
		history.NewRedsyncLocker(redis.Locker()),
		cfg.History.LockTTL,
		logger,
		history.Task{Name: "history_purge", Run: historySvc.Purge},
		history.Task{Name: "pending_payment_expiry", Run: billingSvc.ExpirePending},
		history.Task{Name: "reset_token_purge", Run: authSvc.PurgeResetTokens},
	)
	if err := retention.Start(); err != nil {
		return err
	}
	logger.Info("housekeeping scheduled", "schedule", cfg.History.Schedule)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
		health.Dependency{
			Name:     "ocr",
			Optional: true,
			Checker: health.CheckerFunc(func(context.Context) error {
				if ocr == nil {
					return errOCRUnavailable
				}
				return nil
			}),
		},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc, cookie)
	recoveryLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.PerHour(recoveryRequestsPerHour, recoveryRequestsPerHour),
		KeyFunc:  middleware.KeyByIPScoped("recovery"),
		FailOpen: true,
	}).Handler
	planLimit := middleware.PlanRateLimiter(redis.Client, middleware.DefaultPlanLimits)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, recoveryLimit)
		oauthHandler.RegisterRoutes(r)

		userHandler.RegisterRoutes(r, authenticator)
		resumeHandler.RegisterRoutes(r, authenticator)
		optimizeHandler.RegisterRoutes(r, authenticator, planLimit)
		historyHandler.RegisterRoutes(r, authenticator)
		billingHandler.RegisterRoutes(r, authenticator)
		billingHandler.RegisterWebhook(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.RequireAdmin)

			userHandler.RegisterAdminRoutes(r)
			billingHandler.RegisterAdminRoutes(r)
			adminHandler.RegisterRoutes(r)
		})
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	retention.Stop(shutdownCtx)

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
