package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	database "github.com/FACorreiaa/go-itinerary-engine/app/db"
	"github.com/FACorreiaa/go-itinerary-engine/config"
	generativeAI "github.com/FACorreiaa/go-itinerary-engine/internal/api/generative_ai"
	"github.com/FACorreiaa/go-itinerary-engine/internal/api/itinerary"
	"github.com/FACorreiaa/go-itinerary-engine/internal/api/research"
)

const webEnrichTimeout = 10 * time.Second

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	ResearchService  *research.ServiceImpl
	ItineraryService *itinerary.ServiceImpl
	ResearchHandler  *research.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl

	closers []func() error
}

// NewContainer initializes and returns a new dependency container. Postgres is
// only connected when a host is configured; without it saved itineraries are
// unavailable and the postgres cache backend is rejected.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if cfg.Repositories.Postgres.Host != "" {
		pool, err := connectPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		c.Pool = pool
		c.closers = append(c.closers, func() error { pool.Close(); return nil })
	}

	store, err := c.placeStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	cache := research.NewCache(store, logger,
		research.WithTTL(cfg.Research.TTL),
		research.WithSchemaVersion(cfg.Research.SchemaVersion),
	)

	lookup, err := c.researchLookup(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.ResearchService = research.NewServiceImpl(cache, lookup, research.NewRatePacer(cfg.Research.Delay), logger)

	schedulingCfg, err := itinerary.ConfigFromSettings(cfg.Scheduling)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load scheduling config: %w", err)
	}
	var repo itinerary.Repository
	if c.Pool != nil {
		repo = itinerary.NewPostgresRepository(c.Pool, logger)
	}
	c.ItineraryService = itinerary.NewServiceImpl(itinerary.NewScheduler(schedulingCfg), c.ResearchService, repo, logger)

	c.ResearchHandler = research.NewHandlerImpl(c.ResearchService, logger)
	c.ItineraryHandler = itinerary.NewHandlerImpl(c.ItineraryService, logger)
	return c, nil
}

func connectPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to generate database config: %w", err)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		return nil, err
	}
	pool, err := database.Init(ctx, dbConfig.ConnectionURL, cfg.Repositories.Postgres.MaxConns, logger)
	if err != nil {
		return nil, err
	}
	if !database.WaitForDB(ctx, pool, logger) {
		pool.Close()
		return nil, errors.New("database not ready")
	}
	return pool, nil
}

func (c *Container) placeStore(ctx context.Context) (research.Store, error) {
	cfg := c.Config
	retention := cfg.Research.TTL
	if retention <= 0 {
		retention = research.DefaultTTL
	}

	switch cfg.Research.CacheBackend {
	case "", "memory":
		return research.NewMemoryStore(retention), nil
	case "postgres":
		if c.Pool == nil {
			return nil, errors.New("postgres cache backend needs repositories.postgres.host")
		}
		return research.NewPostgresStore(c.Pool), nil
	case "redis":
		rc := cfg.Repositories.Redis
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}
		c.closers = append(c.closers, client.Close)
		return research.NewRedisStore(client, rc.Prefix, retention), nil
	case "sqlite":
		store, err := research.OpenSQLiteStore(ctx, cfg.Repositories.SQLite.Path)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown research cache backend %q", cfg.Research.CacheBackend)
	}
}

// researchLookup returns nil for the "none" provider, which makes every
// uncached place degrade to its fallback record.
func (c *Container) researchLookup(ctx context.Context) (research.Lookup, error) {
	rc := c.Config.Research

	var lookup research.Lookup
	switch rc.Provider {
	case "", "none":
		c.Logger.Warn("No research provider configured, uncached places will use fallback knowledge")
		return nil, nil
	case "gemini":
		client, err := generativeAI.NewAIClient(ctx, rc.GeminiAPIKey, rc.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		lookup = research.NewGeminiLookup(client)
	case "openai":
		if rc.OpenAIAPIKey == "" {
			return nil, errors.New("openai provider needs OPENAI_API_KEY")
		}
		lookup = research.NewOpenAILookup(rc.OpenAIAPIKey, rc.OpenAIBaseURL, "")
	default:
		return nil, fmt.Errorf("unknown research provider %q", rc.Provider)
	}

	if rc.EnrichFromWeb {
		lookup = research.NewWebEnricher(lookup, &http.Client{Timeout: webEnrichTimeout}, rc.WikipediaURL, c.Logger)
	}
	c.Logger.Info("Research provider ready", slog.String("provider", rc.Provider), slog.Bool("web_enrichment", rc.EnrichFromWeb))
	return lookup, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("Failed to close resource", slog.Any("error", err))
		}
	}
	c.closers = nil
}
