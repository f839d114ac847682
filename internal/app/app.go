package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"FormatConverter/internal/auth"
	"FormatConverter/internal/config"
	"FormatConverter/internal/infrastructure/cache"
	"FormatConverter/internal/infrastructure/llm"
	"FormatConverter/internal/infrastructure/render"
	"FormatConverter/internal/infrastructure/scheduler"
	"FormatConverter/internal/infrastructure/storage"
	"FormatConverter/internal/logging"
	"FormatConverter/internal/metrics"
	"FormatConverter/internal/ports"
	"FormatConverter/internal/transport/httpapi"
	"FormatConverter/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *storage.DB
	articles *storage.ArticleRepository
	service  *usecase.Service
	janitor  *usecase.Janitor
	server   *httpapi.Server
}

// New opens the database and builds every component from configuration.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	articles := storage.NewArticleRepository(db)

	var store interface {
		ports.TTLCache
		ports.ExpiringStore
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		store = cache.NewMemory(cfg.Cache.Capacity, cfg.Cache.TTL)
	case config.CacheBackendSQL, "":
		store = cache.NewSQL(db, cfg.Cache.TTL)
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	var generator ports.TextGenerator
	if cfg.OpenAI.APIKey != "" {
		generator = llm.NewOpenAIClient(llm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.Conversion.Timeout,
		})
	} else {
		baseLogger.Warn("OPENAI_API_KEY not set; AP conversions will fail until configured")
	}

	renderer := render.NewMarkdown()
	exporter := metrics.NewExporter()

	service := usecase.NewService(usecase.APConfig{
		APIKey:       cfg.OpenAI.APIKey,
		Model:        cfg.OpenAI.Model,
		TTL:          cfg.Cache.TTL,
		Timeout:      cfg.Conversion.Timeout,
		SingleFlight: cfg.Conversion.SingleFlight,
	}, usecase.ServiceDeps{
		Articles:  articles,
		Renderer:  renderer,
		Cache:     store,
		Generator: generator,
		Formatter: renderer,
		Metrics:   exporter,
		Logger:    baseLogger.With("component", "conversion"),
	})

	janitor := usecase.NewJanitor(
		scheduler.NewIntervalScheduler(cfg.Cache.PurgeInterval),
		store,
		baseLogger.With("component", "janitor"),
	)

	secret := cfg.Auth.TokenSecret
	if secret == "" {
		secret = uuid.NewString()
		baseLogger.Warn("TOKEN_SECRET not set; request tokens will not survive a restart")
	}
	tokens, err := auth.NewTokens(secret, cfg.Auth.TokenTTL)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	server := httpapi.NewServer(httpapi.Deps{
		Service:   service,
		Articles:  articles,
		Tokens:    tokens,
		Admin:     auth.NewAdmin(cfg.Auth.AdminUser, cfg.Auth.AdminPasswordHash),
		Metrics:   exporter.Handler(),
		Logger:    baseLogger.With("component", "http"),
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		db:       db,
		articles: articles,
		service:  service,
		janitor:  janitor,
		server:   server,
	}, nil
}

// Service exposes the conversion use case for one-shot commands.
func (a *Application) Service() *usecase.Service {
	return a.service
}

// Articles exposes the article store for administrative commands.
func (a *Application) Articles() ports.ArticleWriter {
	return a.articles
}

// Run serves HTTP and purges expired conversions until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.janitor.Start(ctx); err != nil {
		return fmt.Errorf("start janitor: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.janitor.Stop(stopCtx); err != nil {
			a.logger.Warn("stop janitor", "error", err)
		}
	}()

	return a.server.Run(ctx, a.cfg.Server.Addr, a.cfg.Server.ShutdownTimeout)
}

// Close releases the database connection.
func (a *Application) Close() error {
	return a.db.Close()
}
