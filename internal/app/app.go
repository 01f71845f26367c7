package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"NewsPipeline/internal/config"
	"NewsPipeline/internal/credentials"
	"NewsPipeline/internal/infrastructure/cache"
	"NewsPipeline/internal/infrastructure/extractor"
	"NewsPipeline/internal/infrastructure/feed"
	"NewsPipeline/internal/infrastructure/imagegen"
	"NewsPipeline/internal/infrastructure/llm"
	"NewsPipeline/internal/infrastructure/scheduler"
	"NewsPipeline/internal/infrastructure/storage"
	"NewsPipeline/internal/infrastructure/telegram"
	"NewsPipeline/internal/interfaces/http/handler"
	"NewsPipeline/internal/interfaces/http/router"
	"NewsPipeline/internal/logging"
	"NewsPipeline/internal/ports"
	"NewsPipeline/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	db        *sql.DB
	redis     *redis.Client
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	server    *http.Server
	logger    *zap.Logger
}

// New opens the database, builds every adapter and the HTTP server.
func New(ctx context.Context, cfg config.Config, baseLogger *zap.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	a := &Application{cfg: cfg, db: db, logger: baseLogger}

	var settings ports.SettingsStore = storage.NewSettingsRepository(db)
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		settings = cache.NewSettingsCache(a.redis, settings, cfg.Redis.SettingsTTL, baseLogger)
	}

	feedReader := feed.NewReader(nil, cfg.Feeds.UserAgent, cfg.Feeds.Timeout, baseLogger)
	discovery := feed.NewGoogleNews(feedReader, cfg.Feeds.TrendsURLPattern, baseLogger)
	localExtractor := extractor.NewHTMLExtractor(&http.Client{Timeout: cfg.Extractor.Timeout}, cfg.Extractor.UserAgent)

	var ext ports.Extractor = localExtractor
	if cfg.Extractor.Endpoint != "" {
		ext = extractor.NewClient(cfg.Extractor.Endpoint, cfg.Extractor.Timeout)
	}

	apiKey := credentials.NewResolver(settings, credentials.LLMAPIKey, cfg.LLM.APIKey, baseLogger)
	imageToken := credentials.NewResolver(settings, credentials.ImageAPIToken, cfg.Image.APIToken, baseLogger)
	rewriter := llm.NewRewriter(llm.NewChatClient(cfg.LLM, apiKey, baseLogger), baseLogger)

	var imageHost ports.ImageHost
	if cfg.Storage.Bucket != "" {
		host, err := storage.NewS3ImageHost(ctx, cfg.Storage, baseLogger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("init image host: %w", err)
		}
		imageHost = host
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram, baseLogger)
	}

	jobs := storage.NewJobRepository(db, cfg.Scheduler.StaleRunAfter)
	articles := storage.NewArticleRepository(db)

	strategies := usecase.NewStrategies(usecase.StrategyDeps{
		Feeds:             feedReader,
		Discovery:         discovery,
		Extractor:         ext,
		Articles:          articles,
		Rewriter:          rewriter,
		LocalFeeds:        cfg.Feeds.LocalFeeds,
		TitlePrefixLength: cfg.Dedup.TitlePrefixLength,
		Logger:            baseLogger,
	})
	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Jobs:              jobs,
		Articles:          articles,
		Strategies:        strategies,
		Prompter:          rewriter,
		Images:            imagegen.NewClient(cfg.Image, imageToken, baseLogger),
		ImageHost:         imageHost,
		Notifier:          notifier,
		TitlePrefixLength: cfg.Dedup.TitlePrefixLength,
		Logger:            baseLogger,
	})

	if !cfg.Scheduler.Disabled {
		driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval, cfg.Scheduler.RunOnStart,
			cfg.Scheduler.Location(), baseLogger)
		a.scheduler = usecase.NewScheduler(driver, jobs, a.pipeline, baseLogger)
	}

	// /api/extract always uses the in-process extractor; extractor.endpoint may point back here.
	engine := router.New(cfg.Server.Mode, baseLogger.Named("http"),
		handler.New(a.pipeline, jobs, localExtractor))
	a.server = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// Run serves HTTP and drives the scheduler until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", zap.Error(err))
	}
	if a.scheduler != nil {
		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			a.logger.Warn("scheduler shutdown", zap.Error(err))
		}
	}
	return runErr
}

func (a *Application) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close database", zap.Error(err))
		}
	}
}
