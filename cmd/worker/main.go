package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	appconfig "campaign-relay/internal/config"
	hhttp "campaign-relay/internal/handler/http/respond"
	pgRepo "campaign-relay/internal/infra/adapter/persistence/postgres"
	"campaign-relay/internal/infra/curator"
	"campaign-relay/internal/infra/db"
	"campaign-relay/internal/infra/platform"
	workerPkg "campaign-relay/internal/infra/worker"
	"campaign-relay/internal/observability/logging"
	"campaign-relay/internal/usecase/publish"
	"campaign-relay/pkg/resilience"
)

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM posts LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("scan_schedule", workerConfig.ScanSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("publish_max_concurrent", workerConfig.PublishMaxConcurrent),
		slog.Duration("scan_timeout", workerConfig.ScanTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	// Outbound resilience layer shared by every delivery channel
	outboundLimiter, breakerRegistry := setupResilience(logger)
	platformClient := platform.NewClient(platform.ClientConfig{
		Limiter:  outboundLimiter,
		Breakers: breakerRegistry,
	})

	publishers := setupPublishers(logger, platformClient)
	if len(publishers) == 0 {
		logger.Warn("no delivery channels enabled - due posts will fail with unknown channel")
	}

	publishService := publish.NewService(
		pgRepo.NewPostRepo(database),
		pgRepo.NewCampaignRepo(database),
		publishers,
		workerConfig.PublishMaxConcurrent,
	)
	logger.Info("publish service initialized",
		slog.Int("channels", len(publishers)),
		slog.Int("max_concurrent", workerConfig.PublishMaxConcurrent))

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, breakerRegistry, outboundLimiter)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	// Inspiration feed curation (optional)
	inspirationCurator := curator.New(outboundLimiter, curator.Config{})
	curationSources := loadCurationSources(logger)

	startCronWorker(logger, publishService, inspirationCurator, curationSources, workerConfig, workerMetrics, healthServer, cancel)
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// setupResilience builds the outbound rate limiter and circuit breaker
// registry from the shared YAML config. The worker and the API server read
// the same file, so operator tuning applies to both processes.
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
	for service, breakerCfg := range cfg.ServiceBreakerConfigs() {
		registry.Get(service, breakerCfg)
	}

	return limiter, registry
}

// setupPublishers builds the per-channel publishers from environment
// configuration. Disabled or misconfigured channels are skipped, never
// fatal: a worker with one healthy channel is more useful than none.
func setupPublishers(logger *slog.Logger, client *platform.Client) map[string]publish.Publisher {
	publishers := make(map[string]publish.Publisher)

	slackConfig := loadSlackConfig(logger)
	if slackConfig.Enabled {
		publishers["slack"] = platform.NewSlackPublisher(slackConfig, client)
		logger.Info("Slack channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Slack channel disabled")
	}

	discordConfig := loadDiscordConfig(logger)
	if discordConfig.Enabled {
		publishers["discord"] = platform.NewDiscordPublisher(discordConfig, client)
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord channel disabled")
	}

	webhookConfig := loadWebhookConfig(logger)
	if webhookConfig.Enabled {
		tokens := loadWebhookTokenSource(logger, client)
		publishers["webhook"] = platform.NewWebhookPublisher(webhookConfig, client, tokens)
		logger.Info("webhook channel initialized",
			slog.String("status", "enabled"),
			slog.Bool("oauth", tokens != nil))
	} else {
		logger.Info("webhook channel disabled")
	}

	return publishers
}

// loadSlackConfig loads Slack configuration from environment variables.
//
// Environment variables:
//   - SLACK_ENABLED: Boolean flag to enable Slack delivery (default: false)
//   - SLACK_WEBHOOK_URL: Slack Incoming Webhook URL (required if enabled)
func loadSlackConfig(logger *slog.Logger) platform.SlackConfig {
	enabled := os.Getenv("SLACK_ENABLED") == "true"
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")

	if !enabled {
		return platform.SlackConfig{Enabled: false}
	}

	// Validate webhook URL format
	if webhookURL == "" {
		logger.Warn("Slack webhook URL is empty, disabling channel")
		return platform.SlackConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid Slack webhook URL format, disabling channel", slog.Any("error", err))
		return platform.SlackConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Slack webhook URL must use HTTPS, disabling channel")
		return platform.SlackConfig{Enabled: false}
	}

	if u.Host != "hooks.slack.com" {
		logger.Warn("Invalid Slack webhook host, disabling channel", slog.String("host", u.Host))
		return platform.SlackConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/services/") {
		logger.Warn("Invalid Slack webhook path, disabling channel", slog.String("path", u.Path))
		return platform.SlackConfig{Enabled: false}
	}

	return platform.SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// loadDiscordConfig loads Discord configuration from environment variables.
//
// Environment variables:
//   - DISCORD_ENABLED: Boolean flag to enable Discord delivery (default: false)
//   - DISCORD_WEBHOOK_URL: Discord webhook URL (required if enabled)
func loadDiscordConfig(logger *slog.Logger) platform.DiscordConfig {
	enabled := os.Getenv("DISCORD_ENABLED") == "true"
	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")

	if !enabled {
		return platform.DiscordConfig{Enabled: false}
	}

	// Validate webhook URL format
	if webhookURL == "" {
		logger.Warn("Discord webhook URL is empty, disabling channel")
		return platform.DiscordConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid Discord webhook URL format, disabling channel", slog.Any("error", err))
		return platform.DiscordConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Discord webhook URL must use HTTPS, disabling channel")
		return platform.DiscordConfig{Enabled: false}
	}

	if u.Host != "discord.com" {
		logger.Warn("Invalid Discord webhook host, disabling channel", slog.String("host", u.Host))
		return platform.DiscordConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/api/webhooks/") {
		logger.Warn("Invalid Discord webhook path, disabling channel", slog.String("path", u.Path))
		return platform.DiscordConfig{Enabled: false}
	}

	return platform.DiscordConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// loadWebhookConfig loads generic webhook configuration from environment
// variables. Unlike Slack and Discord the host is operator-chosen, so only
// the scheme is enforced.
//
// Environment variables:
//   - WEBHOOK_ENABLED: Boolean flag to enable webhook delivery (default: false)
//   - WEBHOOK_URL: Endpoint that receives post.publish events (required if enabled)
func loadWebhookConfig(logger *slog.Logger) platform.WebhookConfig {
	enabled := os.Getenv("WEBHOOK_ENABLED") == "true"
	endpoint := os.Getenv("WEBHOOK_URL")

	if !enabled {
		return platform.WebhookConfig{Enabled: false}
	}

	if endpoint == "" {
		logger.Warn("webhook URL is empty, disabling channel")
		return platform.WebhookConfig{Enabled: false}
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		logger.Warn("invalid webhook URL format, disabling channel", slog.Any("error", err))
		return platform.WebhookConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("webhook URL must use HTTPS, disabling channel", slog.String("scheme", u.Scheme))
		return platform.WebhookConfig{Enabled: false}
	}

	return platform.WebhookConfig{
		Enabled: true,
		URL:     endpoint,
		Timeout: 30 * time.Second,
	}
}

// loadWebhookTokenSource builds an OAuth client-credentials token source for
// the webhook channel when all four WEBHOOK_OAUTH_* variables are set.
// Returns nil when OAuth is not configured; the webhook then relies on
// URL-embedded authentication.
func loadWebhookTokenSource(logger *slog.Logger, client *platform.Client) *platform.TokenSource {
	tokenURL := os.Getenv("WEBHOOK_OAUTH_TOKEN_URL")
	clientID := os.Getenv("WEBHOOK_OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("WEBHOOK_OAUTH_CLIENT_SECRET")

	if tokenURL == "" && clientID == "" && clientSecret == "" {
		return nil
	}

	if tokenURL == "" || clientID == "" || clientSecret == "" {
		logger.Warn("incomplete webhook OAuth configuration, delivering without bearer token")
		return nil
	}

	u, err := url.Parse(tokenURL)
	if err != nil || u.Scheme != "https" {
		logger.Warn("webhook OAuth token URL must be a valid HTTPS URL, delivering without bearer token")
		return nil
	}

	return platform.NewTokenSource(platform.OAuthConfig{
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        os.Getenv("WEBHOOK_OAUTH_SCOPE"),
	}, client)
}

// loadCurationSources parses CURATION_FEEDS into curator sources.
//
// Format: "name=url,name=url". Feeds with a non-HTTPS URL are skipped.
// An empty variable disables the curation job.
func loadCurationSources(logger *slog.Logger) []curator.Source {
	raw := os.Getenv("CURATION_FEEDS")
	if raw == "" {
		return nil
	}

	var sources []curator.Source
	for _, pair := range strings.Split(raw, ",") {
		name, feedURL, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" || feedURL == "" {
			logger.Warn("skipping malformed curation feed entry", slog.String("entry", pair))
			continue
		}

		u, err := url.Parse(feedURL)
		if err != nil || u.Scheme != "https" {
			logger.Warn("curation feed URL must be HTTPS, skipping",
				slog.String("name", name),
				slog.String("url", feedURL))
			continue
		}

		sources = append(sources, curator.Source{Name: name, URL: feedURL})
	}

	if len(sources) > 0 {
		logger.Info("curation feeds configured", slog.Int("count", len(sources)))
	}
	return sources
}

// curationSchedule returns the cron expression for the inspiration feed
// curation job. Curation is much less time-sensitive than publishing, so it
// defaults to once a day in the morning.
func curationSchedule() string {
	if s := os.Getenv("CURATION_SCHEDULE"); s != "" {
		return s
	}
	return "0 7 * * *"
}

// startCronWorker starts the cron scheduler and blocks until a shutdown
// signal arrives, then drains in-flight publishes.
func startCronWorker(
	logger *slog.Logger,
	svc *publish.Service,
	cur *curator.Curator,
	curationSources []curator.Source,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
	cancel context.CancelFunc,
) {
	// Load timezone
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.ScanSchedule, func() {
		runPublishScan(logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add publish scan job", slog.Any("error", err))
		os.Exit(1)
	}

	if len(curationSources) > 0 {
		_, err = c.AddFunc(curationSchedule(), func() {
			runCurationJob(logger, cur, curationSources)
		})
		if err != nil {
			logger.Error("failed to add curation job", slog.Any("error", err))
			os.Exit(1)
		}
	}

	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started",
		slog.String("schedule", cfg.ScanSchedule),
		slog.String("timezone", cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")

	healthServer.SetReady(false)

	// Stop scheduling new scans, then drain in-flight deliveries
	cronCtx := c.Stop()
	<-cronCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Error("publish service shutdown failed", slog.Any("error", err))
	}

	// Release the metrics and health servers
	cancel()
	logger.Info("worker stopped")
}

// runPublishScan executes a single due-post scan with timeout and error handling.
func runPublishScan(logger *slog.Logger, svc *publish.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	metrics.RecordScanRun("started")
	logger.Info("publish scan started")

	// スキャン処理のタイムアウト（設定から取得）
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ScanTimeout)
	defer cancel()

	claimed, err := svc.PublishDue(ctx)
	if err != nil {
		// 機密情報をマスクしてログ出力
		logger.Error("publish scan failed", slog.String("error", hhttp.SanitizeError(err)))
		metrics.RecordScanRun("failure")
		metrics.RecordScanDuration(time.Since(startTime).Seconds())
		return
	}

	// Record metrics
	metrics.RecordScanRun("success")
	metrics.RecordScanDuration(time.Since(startTime).Seconds())
	metrics.RecordPostsClaimed(claimed)
	metrics.RecordLastSuccess()

	logger.Info("publish scan completed",
		slog.Int("claimed", claimed),
		slog.Duration("duration", time.Since(startTime)),
	)
}

// runCurationJob fetches the inspiration feeds and logs the freshest seeds
// so campaign owners can pick copy inspiration from the worker logs.
func runCurationJob(logger *slog.Logger, cur *curator.Curator, sources []curator.Source) {
	startTime := time.Now()
	logger.Info("curation started", slog.Int("sources", len(sources)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	seeds, err := cur.Curate(ctx, sources)
	if err != nil {
		logger.Error("curation failed", slog.String("error", hhttp.SanitizeError(err)))
		return
	}

	const logTop = 10
	for i, seed := range seeds {
		if i >= logTop {
			break
		}
		logger.Info("curation seed",
			slog.String("source", seed.SourceName),
			slog.String("title", seed.Title),
			slog.String("url", seed.URL))
	}

	logger.Info("curation completed",
		slog.Int("seeds", len(seeds)),
		slog.Duration("duration", time.Since(startTime)),
	)
}
