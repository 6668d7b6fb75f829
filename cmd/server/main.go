package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/internal/handler"
	"github.com/aryan0dhankhar/meetlog/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/meetlog/internal/infrastructure/openai"
	"github.com/aryan0dhankhar/meetlog/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/meetlog/internal/observability/metrics"
	"github.com/aryan0dhankhar/meetlog/internal/observability/tracing"
	"github.com/aryan0dhankhar/meetlog/internal/reliability/retry"
	"github.com/aryan0dhankhar/meetlog/internal/repository"
	"github.com/aryan0dhankhar/meetlog/internal/security"
	"github.com/aryan0dhankhar/meetlog/internal/security/audit"
	"github.com/aryan0dhankhar/meetlog/internal/security/auth"
	"github.com/aryan0dhankhar/meetlog/internal/security/middleware"
	"github.com/aryan0dhankhar/meetlog/internal/security/ratelimit"
	"github.com/aryan0dhankhar/meetlog/internal/service"
	"github.com/aryan0dhankhar/meetlog/pkg/cache"
	"github.com/aryan0dhankhar/meetlog/pkg/config"
	"github.com/aryan0dhankhar/meetlog/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting meetlog server", slog.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Tracing (no-op without an OTLP endpoint)
	shutdownTracing, err := tracing.Init(ctx, log, tracing.Config{
		ServiceName: "meetlog",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to Postgres. The database may still be starting alongside us.
	startup := &retry.Config{
		MaxAttempts:       5,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        8 * time.Second,
		BackoffMultiplier: 2.0,
	}
	pool, err := retry.Do(ctx, startup, log, "connect postgres", func(ctx context.Context) (*database.ConnectionPool, error) {
		return database.NewConnectionPool(ctx, &database.Config{
			URL:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime(),
		}, log)
	})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetDB()

	// 5. Summary cache: Redis when configured, in-process otherwise
	var (
		summaryCache domain.SummaryCache = cache.New()
		redisCheck   handler.Checker
	)
	if cfg.RedisURL != "" {
		redisClient, err := retry.Do(ctx, startup, log, "connect redis", func(ctx context.Context) (*redis.Client, error) {
			return redis.NewClient(ctx, cfg.RedisURL, log)
		})
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		summaryCache = redisClient
		redisCheck = redisClient.Ping
	}

	// 6. Initialize repositories
	memberRepo := repository.NewPostgresMemberRepository(db, log)
	credentialRepo := repository.NewPostgresCredentialRepository(db, log)
	cardRepo := repository.NewPostgresCardRepository(db, log)
	contactRepo := repository.NewPostgresContactRepository(db, log)

	// 7. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL())
	hasher := auth.NewHasher(cfg.BcryptCost)
	auditLogger := audit.NewLogger(log)
	authz := security.NewAuthorizationService(log)

	// 8. Initialize services
	authService := service.NewAuthService(memberRepo, credentialRepo, tokenManager, hasher, auditLogger, log)
	contactService := service.NewContactService(contactRepo, authz, auditLogger, log)
	summarizer := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	}, log)
	summaryService := service.NewSummaryService(summarizer, summaryCache, cfg.CacheTTL(), cfg.SummaryMaxInputChars, log)

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxyList())
	if err != nil {
		log.Error("invalid TRUSTED_PROXIES", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 9. Setup HTTP routes
	paging := handler.Paging{DefaultPerPage: cfg.DefaultPerPage, MaxPerPage: cfg.MaxPerPage}
	router := &handler.Router{
		Auth:     handler.NewAuthHandler(authService, log),
		Contacts: handler.NewContactHandler(contactService, summaryService, paging, log),
		Cards:    handler.NewCardHandler(service.NewCardService(cardRepo, log), paging, log),
		Members:  handler.NewMemberHandler(service.NewMemberService(memberRepo), paging, log),
		Health: handler.NewHealthHandler(map[string]handler.Checker{
			"database": pool.Health,
			"redis":    redisCheck,
		}, log),
		Resolver:     service.NewGuard(tokenManager, memberRepo, log),
		LoginLimiter: ratelimit.NewLimiter(cfg.LoginRatePerMinute, 0),
		APILimiter:   ratelimit.NewLimiter(cfg.APIRatePerMinute, 0),
		Proxies:      proxies,
		Logger:       log,
	}

	// Chain middleware: recover -> request ID/logging -> CORS -> path check
	// -> content type -> body limit -> metrics -> mux. Metrics wraps the mux
	// directly so it sees the matched route pattern.
	var root http.Handler = metrics.HTTPMetricsMiddleware(router.Mux())
	root = middleware.LimitBody(middleware.DefaultMaxBodyBytes)(root)
	root = middleware.ValidateJSONContentType(log)(root)
	root = middleware.SanitizePath(log)(root)
	root = middleware.CORS(cfg.CORSAllowedOrigins())(root)
	root = middleware.RequestLogger(log)(root)
	root = middleware.Recover(log)(root)
	root = otelhttp.NewHandler(root, "meetlog.http")

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // summarization can take a while
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Duration("token_ttl", tokenManager.TTL()),
		slog.Int("login_rate_per_minute", cfg.LoginRatePerMinute),
		slog.Int("api_rate_per_minute", cfg.APIRatePerMinute),
		slog.Bool("redis", cfg.RedisURL != ""),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("server error", slog.String("error", err.Error()))
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}
