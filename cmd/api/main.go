// Package main is the entrypoint for the Taut API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tautlabs/taut/internal/analytics"
	"github.com/tautlabs/taut/internal/auth"
	"github.com/tautlabs/taut/internal/cache"
	"github.com/tautlabs/taut/internal/config"
	"github.com/tautlabs/taut/internal/handler"
	"github.com/tautlabs/taut/internal/metrics"
	"github.com/tautlabs/taut/internal/middleware"
	"github.com/tautlabs/taut/internal/repository"
	"github.com/tautlabs/taut/internal/server"
	"github.com/tautlabs/taut/internal/service"
	"github.com/tautlabs/taut/internal/slug"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	metricsRecorder := metrics.NewInMemory()

	// Analytics pipeline: fire-and-forget publisher plus a stream
	// consumer that batches clicks into Postgres.
	publisher := analytics.NewPublisher(cacheClient.Client(), logger, metricsRecorder)
	worker := analytics.NewWorker(cacheClient.Client(), repo, logger, analytics.NewConsumerID(), metricsRecorder)

	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("analytics worker exited", "error", err)
		}
	}()

	// Initialize services
	codes, err := slug.NewGenerator(slug.DefaultCodeLength)
	if err != nil {
		logger.Error("failed to init code generator", "error", err)
		os.Exit(1)
	}

	linkService := service.NewShortLinkService(repo, cacheClient, codes, cfg.BaseURL, metricsRecorder)
	micrositeService := service.NewMicrositeService(repo, metricsRecorder)
	resolver := service.NewResolver(repo, cacheClient, publisher, metricsRecorder)

	signer := auth.NewSessionSigner(cfg.JWTSecret, cfg.SessionTTL)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	linkHandler := handler.NewShortLinkHandler(linkService, logger)
	micrositeHandler := handler.NewMicrositeHandler(micrositeService, logger)
	resolveHandler := handler.NewResolveHandler(resolver, logger)
	authHandler := handler.NewAuthHandler(handler.AuthHandlerConfig{
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		GoogleRedirectURL:  cfg.GoogleRedirectURL,
		AllowedEmails:      cfg.GetAllowedEmails(),
		SecureCookies:      cfg.IsProduction(),
		Signer:             signer,
		Users:              repo,
		Cache:              cacheClient,
		Logger:             logger,
	})

	// Setup router
	r := setupRouter(routerDeps{
		health:    healthHandler,
		metrics:   metricsHandler,
		links:     linkHandler,
		microsite: micrositeHandler,
		resolve:   resolveHandler,
		auth:      authHandler,
		signer:    signer,
		repo:      repo,
		cache:     cacheClient,
		cfg:       cfg,
		logger:    logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Drain the analytics worker after the HTTP server stops accepting
	// traffic so in-flight clicks still land in Postgres.
	srv.OnShutdown("analytics-worker", func(shutdownCtx context.Context) error {
		stopWorker()
		select {
		case <-workerDone:
		case <-shutdownCtx.Done():
			return shutdownCtx.Err()
		}
		return worker.Shutdown(shutdownCtx)
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	health    *handler.HealthHandler
	metrics   *handler.MetricsHandler
	links     *handler.ShortLinkHandler
	microsite *handler.MicrositeHandler
	resolve   *handler.ResolveHandler
	auth      *handler.AuthHandler
	signer    *auth.SessionSigner
	repo      *repository.Repository
	cache     *cache.Cache
	cfg       *config.Config
	logger    *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	cfg := deps.cfg

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	// OAuth login flow
	r.Get("/auth/google/login", deps.auth.Login)
	r.Get("/auth/google/callback", deps.auth.Callback)
	r.Post("/auth/logout", deps.auth.Logout)

	authCfg := middleware.AuthConfig{
		Logger:     deps.logger,
		Signer:     deps.signer,
		Repository: deps.repo,
		Cache:      deps.cache,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:        deps.logger,
		Cache:         deps.cache,
		UserEnabled:   cfg.RateLimitUserEnabled,
		UserRPM:       cfg.RateLimitUserRPM,
		UserBurst:     cfg.RateLimitUserBurst,
		PublicEnabled: cfg.RateLimitPublicEnabled,
		PublicRPS:     cfg.RateLimitPublicRPS,
		PublicBurst:   cfg.RateLimitPublicBurst,
	}

	// Management API (session-cookie auth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Security(middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			AllowedOrigins:     cfg.GetCORSAllowedOrigins(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		}))
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		}))
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitUser(rateLimitCfg))

		r.Get("/me", deps.auth.Me)

		r.Route("/links", func(r chi.Router) {
			r.Post("/", deps.links.Create)
			r.Get("/", deps.links.List)
			r.Delete("/{id}", deps.links.Delete)
		})

		r.Route("/microsites", func(r chi.Router) {
			r.Post("/", deps.microsite.Create)
			r.Get("/", deps.microsite.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", deps.microsite.Get)
				r.Patch("/", deps.microsite.Update)
				r.Delete("/", deps.microsite.Delete)

				r.Route("/links", func(r chi.Router) {
					r.Post("/", deps.microsite.AddLink)
					r.Get("/", deps.microsite.ListLinks)
					r.Post("/reorder", deps.microsite.ReorderLinks)
					r.Patch("/{linkID}", deps.microsite.UpdateLink)
					r.Delete("/{linkID}", deps.microsite.DeleteLink)
				})
			})
		})

		r.NotFound(handler.NotFound)
		r.MethodNotAllowed(handler.MethodNotAllowed)
	})

	// Public resolution with IP-based rate limiting (no auth required).
	// The slug route is registered last so fixed routes win.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Get("/l/{linkID}", deps.resolve.ClickThrough)
		r.Get("/{slug}", deps.resolve.Resolve)
		r.Post("/{slug}", deps.resolve.SubmitPassword)
	})

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
