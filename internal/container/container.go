package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/FACorreiaa/go-poi-discovery/app/cache"
	"github.com/FACorreiaa/go-poi-discovery/app/observability/metrics"
	"github.com/FACorreiaa/go-poi-discovery/config"
	"github.com/FACorreiaa/go-poi-discovery/internal/api/curated"
	generativeAI "github.com/FACorreiaa/go-poi-discovery/internal/api/generative_ai"
	"github.com/FACorreiaa/go-poi-discovery/internal/api/narrative"
	"github.com/FACorreiaa/go-poi-discovery/internal/api/places"
	"github.com/FACorreiaa/go-poi-discovery/internal/api/search"
	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	Store         *cache.MemoryStore
	Redis         *redis.Client
	SearchService *search.ServiceImpl
	SearchHandler *search.HandlerImpl
}

// NewContainer initializes and returns a new dependency container. Missing
// provider credentials or an unreachable Redis only disable that dependency.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	metrics.InitAppMetrics()
	m := metrics.Get()

	catalog, err := curated.Default()
	if err != nil {
		return nil, fmt.Errorf("loading curated catalog: %w", err)
	}
	store := cache.NewMemoryStoreWith(cfg.Cache.DefaultTTL, cfg.Cache.SweepInterval)

	var (
		shared      search.SharedCache
		redisClient *redis.Client
	)
	if cfg.Cache.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			logger.WarnContext(ctx, "Redis unavailable, running with the memory cache only", slog.Any("error", err))
		} else {
			redisClient = client
			shared = cache.NewRedisTier(client)
			logger.InfoContext(ctx, "Shared Redis cache tier enabled")
		}
	}

	narrativeAdapter := narrative.NewAdapter(newTextGenerator(ctx, cfg, logger), logger, m).
		WithWorkers(cfg.Providers.Narrative.Workers)

	placesAdapter := places.NewAdapter(places.Config{
		APIKey:        cfg.Providers.Places.APIKey,
		BaseURL:       cfg.Providers.Places.BaseURL,
		Timeout:       cfg.Providers.Places.Timeout,
		DetailWorkers: cfg.Providers.Places.DetailWorkers,
	}, logger, m)
	if !placesAdapter.IsAvailable() {
		logger.WarnContext(ctx, "GOOGLE_PLACES_API_KEY not set, points of interest come from curated data")
	}

	searchService := search.NewService(logger, narrativeAdapter, placesAdapter, catalog, store, shared, m, search.Config{
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxLimit:       cfg.Search.MaxLimit,
		SearchTTL:      cfg.Cache.SearchTTL,
		InfoTTL:        cfg.Cache.InfoTTL,
		PlacesTTL:      cfg.Cache.PlacesTTL,
		SuggestTTL:     cfg.Cache.SuggestTTL,
		InfoTimeout:    cfg.Search.InfoTimeout,
		PointsTimeout:  cfg.Search.PointsTimeout,
		EnhanceTimeout: cfg.Search.EnhanceTimeout,
		StrictMode:     cfg.Search.StrictMode,
		MapsAvailable:  cfg.Providers.Maps.APIKey != "",
	})
	searchHandler := search.NewHandler(searchService, logger, cfg.Providers.Maps.APIKey)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		Store:         store,
		Redis:         redisClient,
		SearchService: searchService,
		SearchHandler: searchHandler,
	}, nil
}

// newTextGenerator returns nil when the selected provider has no credential.
func newTextGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) generativeAI.TextGenerator {
	n := cfg.Providers.Narrative
	apiKey := n.GeminiAPIKey
	if n.Provider == generativeAI.ProviderOpenAI {
		apiKey = n.OpenAIAPIKey
	}

	gen, err := generativeAI.NewTextGenerator(ctx, n.Provider, apiKey, n.Model)
	if err != nil {
		if errors.Is(err, types.ErrConfigurationMissing) {
			logger.WarnContext(ctx, "Narrative provider not configured, using curated data", slog.String("provider", n.Provider))
		} else {
			logger.ErrorContext(ctx, "Failed to create narrative client", slog.Any("error", err))
		}
		return nil
	}
	logger.InfoContext(ctx, "Narrative provider enabled", slog.String("provider", gen.Provider()))
	return gen
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Error("Failed to close redis client", slog.Any("error", err))
		}
	}
	c.Logger.Info("Container resources released")
}
