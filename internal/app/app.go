package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "modernc.org/sqlite"

	"NewsRecommender/internal/config"
	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/feed"
	"NewsRecommender/internal/infrastructure/downloader"
	"NewsRecommender/internal/infrastructure/embedding"
	"NewsRecommender/internal/infrastructure/ml"
	"NewsRecommender/internal/infrastructure/output"
	"NewsRecommender/internal/infrastructure/parser"
	"NewsRecommender/internal/infrastructure/scheduler"
	"NewsRecommender/internal/infrastructure/storage"
	"NewsRecommender/internal/infrastructure/telegram"
	"NewsRecommender/internal/logging"
	"NewsRecommender/internal/ports"
	"NewsRecommender/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	db          *sql.DB
	cache       *badger.DB
	store       *storage.SQLStore
	recommender *usecase.Recommender
}

// New opens storage, builds adapters and wires the recommender. Close
// releases what New opened.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	db, err := storage.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	store, err := storage.NewSQLStore(db, cfg.Store.Driver, baseLogger.With("component", "store"))
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store = store

	embedder, err := a.buildEmbedder()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Feeds.Timeout()}
	registry := feed.NewRegistry()
	registry.Register(parser.NewArxivScanner(httpClient, baseLogger.With("component", "scanner.arxiv")))
	registry.Register(parser.NewEventRegistryScanner(
		cfg.Feeds.EventRegistryEndpoint,
		cfg.Feeds.EventRegistryAPIKey,
		httpClient,
		baseLogger.With("component", "scanner.eventregistry"),
	))
	source := parser.NewStrategySource(registry, cfg.Feeds.Sites, baseLogger.With("component", "source"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Feed:       source,
		Embedder:   embedder,
		Downloader: downloader.NewReadability(nil, 0),
		Categories: cfg.Ranking.CategoryTable(),
		Params:     cfg.Ranking.Params(),
		PageSize:   cfg.Ranking.PageSize,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	publishers, err := a.buildPublishers()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.recommender = usecase.NewRecommender(usecase.RecommenderDeps{
		Pipeline:          pipeline,
		Profiles:          store,
		Cache:             store,
		Publishers:        publishers,
		DefaultCategories: cfg.Ranking.DefaultCategories,
		PageCount:         cfg.Ranking.PageCount,
		TopN:              cfg.Ranking.TopN,
		Logger:            baseLogger.With("component", "recommender"),
	})
	return a, nil
}

func (a *Application) buildEmbedder() (ports.Embedder, error) {
	ec := a.cfg.Embedder
	log := a.logger.With("component", "embedder")

	var embedder ports.Embedder
	switch ec.Provider {
	case config.ProviderOpenAI:
		embedder = embedding.NewOpenAIEmbedder(ec.Endpoint, ec.APIKey, ec.Model, ec.Dimensions, log)
	case config.ProviderHTTP:
		embedder = ml.NewClient(ec.Endpoint, ec.APIKey, ec.Model, ec.Timeout())
	default:
		return nil, fmt.Errorf("unknown embedder provider %q", ec.Provider)
	}

	if ec.Breaker.Enabled {
		embedder = embedding.NewBreakerEmbedder(embedder, embedding.BreakerSettings{
			Name:                "embedder-" + ec.Provider,
			ConsecutiveFailures: ec.Breaker.ConsecutiveFailures,
			OpenTimeout:         time.Duration(ec.Breaker.OpenSeconds) * time.Second,
		}, log)
	}

	if ec.CacheDir != "" {
		cache, err := embedding.OpenCache(ec.CacheDir)
		if err != nil {
			return nil, err
		}
		a.cache = cache
		embedder = embedding.NewCachedEmbedder(embedder, cache, log)
	}
	log.Info("embedder ready", "model", embedder.ModelID(), "cache", ec.CacheDir != "", "breaker", ec.Breaker.Enabled)
	return embedder, nil
}

func (a *Application) buildPublishers() ([]ports.Publisher, error) {
	var publishers []ports.Publisher
	if a.cfg.Output.JSONPath != "" {
		publishers = append(publishers, output.NewJSONFile(a.cfg.Output.JSONPath))
	}
	if a.cfg.Output.RSSPath != "" {
		publishers = append(publishers, output.NewRSSFile(a.cfg.Output.RSSPath, a.cfg.Output.FeedTitle, a.cfg.Output.FeedLink))
	}

	tg := a.cfg.Notifications.Telegram
	if tg.Enabled() {
		notifier, err := telegram.NewNotifier(telegram.Settings{
			BotToken:    tg.BotToken,
			ChatID:      tg.ChatID,
			APIEndpoint: tg.APIEndpoint,
			DigestSize:  tg.DigestSize,
		}, nil, a.logger.With("component", "telegram"))
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, notifier)
	}
	return publishers, nil
}

// Profiles exposes the profile store for preference and behavior commands.
func (a *Application) Profiles() ports.ProfileStore {
	return a.store
}

// Recommend performs a single ranking run for userID.
func (a *Application) Recommend(ctx context.Context, userID string) domain.RecommendationSet {
	return a.recommender.Recommend(ctx, userID)
}

// Serve refreshes recommendations on the configured schedule and exposes
// metrics until ctx is cancelled.
func (a *Application) Serve(ctx context.Context, runOnStart bool) error {
	var metricsServer *http.Server
	if a.cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: a.cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server stopped", "error", err)
			}
		}()
		a.logger.Info("metrics listening", "addr", a.cfg.Metrics.Listen)
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location(), runOnStart)
	refresh := usecase.NewScheduler(driver, a.recommender, a.cfg.Scheduler.Users)
	if err := refresh.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "users", len(a.cfg.Scheduler.Users))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := refresh.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("metrics server shutdown", "error", err)
		}
	}
	return nil
}

// Close releases the database and the embedding cache.
func (a *Application) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
