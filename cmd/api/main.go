package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appconfig "campaign-relay/internal/config"
	"campaign-relay/internal/domain/entity"
	pgRepo "campaign-relay/internal/infra/adapter/persistence/postgres"
	"campaign-relay/internal/infra/db"
	"campaign-relay/internal/infra/generator"
	"campaign-relay/internal/infra/platform"
	"campaign-relay/internal/observability/logging"
	"campaign-relay/internal/observability/metrics"
	"campaign-relay/internal/observability/slo"
	"campaign-relay/internal/observability/tracing"
	"campaign-relay/internal/repository"
	"campaign-relay/pkg/resilience"

	campaignUC "campaign-relay/internal/usecase/campaign"
	postUC "campaign-relay/internal/usecase/post"

	hhttp "campaign-relay/internal/handler/http"
	hauth "campaign-relay/internal/handler/http/auth"
	hcampaign "campaign-relay/internal/handler/http/campaign"
	"campaign-relay/internal/handler/http/middleware"
	hpost "campaign-relay/internal/handler/http/post"
	"campaign-relay/internal/handler/http/requestid"
	hresilience "campaign-relay/internal/handler/http/resilience"
	authservice "campaign-relay/internal/service/auth"

	_ "campaign-relay/docs" // swagger docs
)

// @title           Campaign Relay API
// @version         1.0
// @description     マーケティングキャンペーン配信システムの REST API
// @description     キャンペーンと投稿の管理、AI コピー生成、外部チャネルへの配信状態の監視機能を提供します。

// @contact.name   API Support
// @contact.url    https://github.com/yujitsuchiya/campaign-relay
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT トークンによる認証。ヘッダーに "Bearer {token}" 形式で指定してください。

func main() {
	logger := initLogger()
	validateAdminCredentials(logger)
	validateViewerCredentials(logger)
	validateJWTSecret(logger)
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	serverComponents := setupServer(logger, database, version)

	runServer(logger, serverComponents, version)
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// validateAdminCredentials validates the admin credentials at startup.
// This prevents the server from starting with empty or weak admin credentials.
func validateAdminCredentials(logger *slog.Logger) {
	if err := hauth.ValidateAdminCredentials(); err != nil {
		logger.Error("admin credentials validation failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// validateViewerCredentials validates the viewer credentials at startup.
// Unlike admin validation, this implements graceful degradation:
// if viewer credentials are misconfigured, the viewer role is disabled
// but the application continues to run in admin-only mode.
func validateViewerCredentials(logger *slog.Logger) {
	_ = hauth.ValidateViewerCredentials(logger)
}

// validateJWTSecret validates the JWT_SECRET environment variable for security requirements.
func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	// セキュリティ: 最小32文字（256ビット）を強制
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	// セキュリティ: よくある弱い秘密鍵を拒否
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupResilience builds the outbound rate limiter and circuit breaker
// registry shared by every component that talks to an external platform.
// Configuration comes from an optional YAML file; a missing file yields
// built-in defaults.
func setupResilience(logger *slog.Logger) (*resilience.RateLimiter, *resilience.Registry) {
	path := os.Getenv("RESILIENCE_CONFIG_PATH")
	if path == "" {
		path = "configs/resilience.yaml"
	}

	cfg, err := appconfig.LoadResilienceConfig(path)
	if err != nil {
		logger.Error("failed to load resilience configuration",
			slog.String("path", path),
			slog.Any("error", err))
		os.Exit(1)
	}

	limiter, err := resilience.NewRateLimiter(cfg.LimiterConfig())
	if err != nil {
		logger.Error("failed to initialize outbound rate limiter", slog.Any("error", err))
		os.Exit(1)
	}

	registry := resilience.NewRegistry(cfg.BreakerDefaults())

	// Pre-seed breakers so per-service overrides apply before first use.
	overrides := cfg.ServiceBreakerConfigs()
	for service, breakerCfg := range overrides {
		registry.Get(service, breakerCfg)
	}

	logger.Info("outbound resilience initialized",
		slog.String("config_path", path),
		slog.Int("breaker_overrides", len(overrides)))

	return limiter, registry
}

// setupGenerator selects the copy generation provider from the environment.
//
// COPY_PROVIDER values:
//   - "claude": Anthropic Messages API (requires ANTHROPIC_API_KEY)
//   - "openai": OpenAI Chat Completions (requires OPENAI_API_KEY)
//   - anything else: no-op provider (drafts are returned empty)
//
// The embedder used for duplicate detection always comes from OpenAI, since
// the Claude provider has no embeddings endpoint. When OPENAI_API_KEY is not
// set the similarity check is disabled.
func setupGenerator(logger *slog.Logger) (postUC.CopyGenerator, postUC.Embedder, hhttp.GeneratorHealthChecker) {
	openAICfg, err := generator.LoadOpenAIConfig()
	if err != nil {
		logger.Error("failed to load OpenAI configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var embedder postUC.Embedder
	var openAI *generator.OpenAI
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		openAI = generator.NewOpenAI(key, openAICfg)
		embedder = openAI
	} else {
		logger.Warn("OPENAI_API_KEY not set - duplicate copy detection disabled")
	}

	switch os.Getenv("COPY_PROVIDER") {
	case "claude":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			logger.Error("COPY_PROVIDER=claude requires ANTHROPIC_API_KEY")
			os.Exit(1)
		}
		claude := generator.NewClaude(key)
		logger.Info("copy generation enabled", slog.String("provider", "claude"))
		return claude, embedder, claude
	case "openai":
		if openAI == nil {
			logger.Error("COPY_PROVIDER=openai requires OPENAI_API_KEY")
			os.Exit(1)
		}
		logger.Info("copy generation enabled", slog.String("provider", "openai"))
		return openAI, embedder, openAI
	default:
		logger.Warn("copy generation disabled - set COPY_PROVIDER to claude or openai")
		noop := generator.NewNoOp()
		return noop, embedder, noop
	}
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler     http.Handler
	DB          *sql.DB
	AuthLimiter *middleware.RateLimiter // auth endpoint limiter, swept by the cleanup ticker

	// Repositories polled by the business gauge updater
	Campaigns repository.CampaignRepository
	Posts     repository.PostRepository
}

// setupServer configures and returns the HTTP handler with all routes and middleware.
func setupServer(logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	campaignRepo := pgRepo.NewCampaignRepo(database)
	postRepo := pgRepo.NewPostRepo(database)

	copyGen, embedder, genHealth := setupGenerator(logger)

	campaignSvc := campaignUC.Service{Repo: campaignRepo}
	postSvc := postUC.Service{
		Posts:      postRepo,
		Campaigns:  campaignRepo,
		Embeddings: pgRepo.NewPostEmbeddingRepo(database),
		Generator:  copyGen,
		Embedder:   embedder,
	}

	// Outbound resilience layer: shared by the metadata client here and by
	// the publish worker (which builds its own from the same config file).
	outboundLimiter, breakerRegistry := setupResilience(logger)
	platformClient := platform.NewClient(platform.ClientConfig{
		Limiter:  outboundLimiter,
		Breakers: breakerRegistry,
	})
	metadataClient := platform.NewMetadataClient(platformClient)

	// Load trusted proxy configuration for IP extraction
	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Create appropriate IPExtractor based on configuration
	var ipExtractor middleware.IPExtractor
	if proxyConfig.Enabled {
		ipExtractor = middleware.NewTrustedProxyExtractor(*proxyConfig)
		logger.Info("rate limiting: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
	} else {
		ipExtractor = &middleware.RemoteAddrExtractor{}
		logger.Info("rate limiting: using RemoteAddr (secure mode, proxy headers ignored)")
	}

	routeDeps := routeDependencies{
		database:        database,
		version:         version,
		campaignSvc:     &campaignSvc,
		postSvc:         &postSvc,
		preview:         metadataClient,
		genHealth:       genHealth,
		outboundLimiter: outboundLimiter,
		breakerRegistry: breakerRegistry,
	}
	rootMux, authLimiter := setupRoutes(routeDeps, ipExtractor, logger)
	handler := applyMiddleware(logger, rootMux)

	return &ServerComponents{
		Handler:     handler,
		DB:          database,
		AuthLimiter: authLimiter,
		Campaigns:   campaignRepo,
		Posts:       postRepo,
	}
}

// loadSecurityConfig reads the security config file pointed to by
// SECURITY_CONFIG_PATH (default configs/security.yaml). A missing or
// invalid file falls back to the built-in defaults instead of aborting
// startup; credential strength is still enforced by the startup checks.
func loadSecurityConfig(logger *slog.Logger) *appconfig.SecurityConfig {
	path := os.Getenv("SECURITY_CONFIG_PATH")
	if path == "" {
		path = "configs/security.yaml"
	}
	cfg, err := appconfig.LoadSecurityConfig(path)
	if err != nil {
		logger.Warn("security config unavailable, using built-in defaults",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return appconfig.DefaultSecurityConfig()
	}
	logger.Info("security config loaded",
		slog.String("path", path),
		slog.String("provider", cfg.GetAuthProvider()))
	return cfg
}

// buildAuthProvider constructs the auth provider named by the security
// config. Anything other than "basic" gets the multi-user provider.
func buildAuthProvider(cfg *appconfig.SecurityConfig) authservice.AuthProvider {
	if cfg.GetAuthProvider() == "basic" {
		return hauth.NewBasicAuthProvider(cfg.GetMinPasswordLength(), cfg.GetWeakPasswords())
	}
	return hauth.NewMultiUserAuthProvider(cfg.GetMinPasswordLength(), cfg.GetWeakPasswords())
}

// routeDependencies bundles the handlers' collaborators so setupRoutes stays
// readable as the route table grows.
type routeDependencies struct {
	database        *sql.DB
	version         string
	campaignSvc     *campaignUC.Service
	postSvc         *postUC.Service
	preview         hpost.PreviewFetcher
	genHealth       hhttp.GeneratorHealthChecker
	outboundLimiter *resilience.RateLimiter
	breakerRegistry *resilience.Registry
}

// setupRoutes registers all HTTP routes (public and protected).
func setupRoutes(
	deps routeDependencies,
	ipExtractor middleware.IPExtractor,
	logger *slog.Logger,
) (*http.ServeMux, *middleware.RateLimiter) {
	// レート制限: 認証エンドポイントは1分間に5リクエストまで
	authRateLimiter := middleware.NewRateLimiter(5, 1*time.Minute, ipExtractor)

	// レート制限: 検索エンドポイントは1分間に100リクエストまで（バースト10）
	// Note: Current implementation uses sliding window without explicit burst size,
	// but limit of 100 req/min allows bursts naturally within the time window
	searchRateLimiter := middleware.NewRateLimiter(100, 1*time.Minute, ipExtractor)

	// 認証設定ファイル（無ければ組み込みデフォルト）
	secCfg := loadSecurityConfig(logger)
	authProvider := buildAuthProvider(secCfg)
	if eps := secCfg.GetPublicEndpoints(); len(eps) > 0 {
		hauth.PublicEndpoints = eps
	}
	authService := authservice.NewAuthService(authProvider, hauth.PublicEndpoints)
	tokenTTL := time.Duration(secCfg.GetJWTExpiryHours()) * time.Hour

	publicMux := http.NewServeMux()
	publicMux.Handle("/auth/token", authRateLimiter.Middleware(hauth.TokenHandler(authService, tokenTTL)))

	// ヘルスチェックエンドポイント（認証不要）
	publicMux.Handle("/health", &hhttp.HealthHandler{
		DB:              deps.database,
		Version:         deps.version,
		BreakerRegistry: deps.breakerRegistry,
		OutboundLimiter: deps.outboundLimiter,
	})
	publicMux.Handle("/ready", &hhttp.ReadyHandler{DB: deps.database})
	publicMux.Handle("/live", &hhttp.LiveHandler{})
	publicMux.Handle("/metrics", hhttp.MetricsHandler())

	// コピー生成プロバイダのヘルスチェック（認証不要）
	genHealthHandler := hhttp.NewGeneratorHealthHandler(deps.genHealth)
	publicMux.HandleFunc("/health/generator", genHealthHandler.Health)
	publicMux.HandleFunc("/ready/generator", genHealthHandler.Ready)

	// Swagger UI（認証不要）
	publicMux.Handle("/swagger/", httpSwagger.WrapHandler)

	privateMux := http.NewServeMux()
	hcampaign.Register(privateMux, deps.campaignSvc, searchRateLimiter)
	hpost.Register(privateMux, deps.postSvc, deps.preview, searchRateLimiter, logger)

	// Apply authentication middleware
	protected := hauth.Authz(privateMux)

	rootMux := http.NewServeMux()
	rootMux.Handle("/auth/token", publicMux)
	rootMux.Handle("/health", publicMux)
	rootMux.Handle("/health/generator", publicMux)
	rootMux.Handle("/ready", publicMux)
	rootMux.Handle("/ready/generator", publicMux)
	rootMux.Handle("/live", publicMux)
	rootMux.Handle("/metrics", publicMux)
	rootMux.Handle("/swagger/", publicMux)

	// Resilience introspection and operations. The method patterns are more
	// specific than the "/" catch-all, so they win route selection; the
	// state-mutating handlers wrap themselves in Authz.
	hresilience.Register(rootMux, deps.outboundLimiter, deps.breakerRegistry)

	rootMux.Handle("/", protected)

	// Return auth rate limiter for cleanup management
	return rootMux, authRateLimiter
}

// applyMiddleware wraps the handler with middleware chain.
// Middleware order: CORS → Request ID → Recovery → Logging → Input Limits → Timeout → Tracing → Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	// Load CORS configuration from environment variables
	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	corsConfig.Logger = logger

	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Any("allowed_headers", corsConfig.AllowedHeaders),
		slog.Int("max_age", corsConfig.MaxAge))

	// Build middleware chain
	// Recommended order:
	// 1. CORS (handles preflight requests early)
	// 2. Request ID (generates unique ID for request tracking)
	// 3. Recovery (catch panics)
	// 4. Logging (log all requests)
	// 5. Input limits (header/path sizes, body size)
	// 6. Request timeout
	// 7. Tracing (span per request, trace ID propagation)
	// 8. Metrics (record request metrics)
	// 9. Authentication (in routes layer)
	// 10. Endpoint rate limits (in routes layer, per route group)

	middlewareChain := handler

	// Apply in reverse order (innermost to outermost)
	middlewareChain = hhttp.MetricsMiddleware(middlewareChain)
	middlewareChain = tracing.Middleware(middlewareChain)
	middlewareChain = hhttp.Timeout(30 * time.Second)(middlewareChain)
	middlewareChain = hhttp.LimitRequestBody(1 << 20)(middlewareChain) // 1MB limit
	middlewareChain = hhttp.InputValidation()(middlewareChain)
	middlewareChain = hhttp.Logging(logger)(middlewareChain)
	middlewareChain = hhttp.Recover(logger)(middlewareChain)
	middlewareChain = requestid.Middleware(middlewareChain)
	middlewareChain = middleware.CORS(*corsConfig)(middlewareChain)

	return middlewareChain
}

// startBusinessGauges periodically refreshes the campaign/post totals and
// database pool gauges exposed on /metrics.
func startBusinessGauges(ctx context.Context, components *ServerComponents, logger *slog.Logger) {
	const interval = 30 * time.Second

	update := func() {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if campaigns, err := components.Campaigns.List(ctx); err != nil {
			logger.Warn("failed to refresh campaigns gauge", slog.Any("error", err))
		} else {
			metrics.UpdateCampaignsTotal(len(campaigns))
		}

		if count, err := components.Posts.CountPosts(ctx); err != nil {
			logger.Warn("failed to refresh posts gauge", slog.Any("error", err))
		} else {
			metrics.UpdatePostsTotal(int(count))
		}

		if counts, err := components.Posts.CountPostsByStatus(ctx); err != nil {
			logger.Warn("failed to refresh publish success gauge", slog.Any("error", err))
		} else {
			slo.UpdatePublishSuccess(
				counts[string(entity.PostStatusPublished)],
				counts[string(entity.PostStatusFailed)])
		}

		stats := components.DB.Stats()
		metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
	}

	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	// Create a context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load cleanup configuration
	cleanupCfg := hhttp.LoadCleanupConfigFromEnv()

	// Sweep stale IPs out of the endpoint rate limiters
	if components.AuthLimiter != nil {
		go hhttp.StartRateLimitCleanup(ctx, components.AuthLimiter, cleanupCfg.Interval, "auth")
		logger.Info("rate limit cleanup started",
			slog.Duration("interval", cleanupCfg.Interval))
	}

	// Keep the campaign/post totals on /metrics fresh
	go startBusinessGauges(ctx, components, logger)

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", ":8080"),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Cancel background goroutines (rate limit cleanup)
	cancel()
	logger.Debug("background cleanup goroutines cancelled")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
