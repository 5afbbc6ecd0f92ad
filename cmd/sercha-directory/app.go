package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-directory/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-directory/internal/adapters/driven/bolt"
	"github.com/custodia-labs/sercha-directory/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/sercha-directory/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-directory/internal/adapters/driven/render"
	"github.com/custodia-labs/sercha-directory/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-directory/internal/config"
	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-directory/internal/core/services"
)

// app holds the wired services and the connections they own
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	profiles map[domain.ContentType]domain.DirectoryProfile

	db          *postgres.DB
	redisClient *goredis.Client
	boltStore   *bolt.Store

	cache driven.CacheStore
	lock  driven.DistributedLock

	auth       driving.AuthService
	directory  driving.DirectoryService
	events     driving.ContentEvents
	cacheAdmin driving.CacheAdminService
}

// newApp loads configuration, connects the backends and builds the services
func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := config.SetupLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger, profiles: cfg.Profiles()}
	if err := a.connect(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.build(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// connect opens PostgreSQL (always, it holds the content) and the
// selected cache backend
func (a *app) connect(ctx context.Context) error {
	a.logger.Info("connecting to PostgreSQL")
	dbCfg := postgres.DefaultConfig(a.cfg.Database.URL)
	dbCfg.MaxOpenConns = a.cfg.Database.MaxOpenConns
	dbCfg.MaxIdleConns = a.cfg.Database.MaxIdleConns
	dbCfg.ConnMaxLifetime = a.cfg.Database.ConnMaxLifetime
	dbCfg.ConnMaxIdleTime = a.cfg.Database.ConnMaxIdleTime

	db, err := postgres.Connect(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	if err := db.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	switch a.cfg.Cache.Backend {
	case config.BackendRedis:
		a.logger.Info("connecting to Redis")
		client, err := redisadapter.Connect(ctx, a.cfg.Redis.URL)
		if err != nil {
			return err
		}
		a.redisClient = client
	case config.BackendBolt:
		store, err := bolt.Open(a.cfg.Bolt.Path)
		if err != nil {
			return err
		}
		a.boltStore = store
	}
	return nil
}

// build wires the cache backend and the core services
func (a *app) build() error {
	var versionStore driven.VersionStore

	switch {
	case a.redisClient != nil:
		a.cache = redisadapter.NewCacheStore(a.redisClient)
		versionStore = redisadapter.NewVersionStore(a.redisClient)
		a.lock = redisadapter.NewLock(a.redisClient)
		a.logger.Info("using Redis listing cache")
	case a.boltStore != nil:
		// bolt is single-process: the file lock already serialises writers
		a.cache = bolt.NewCacheStore(a.boltStore)
		versionStore = bolt.NewVersionStore(a.boltStore)
		a.logger.Info("using bolt listing cache", "path", a.cfg.Bolt.Path)
	default:
		a.cache = postgres.NewCacheStore(a.db)
		versionStore = postgres.NewVersionStore(a.db)
		a.lock = postgres.NewAdvisoryLock(a.db)
		a.logger.Info("using PostgreSQL listing cache")
	}

	versions := services.NewVersionRegistry(versionStore, a.logger)
	renderer, err := render.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("failed to load card templates: %w", err)
	}

	indexer := services.NewContentIndexer(services.IndexerConfig{
		Content:  postgres.NewContentStore(a.db),
		Cache:    a.cache,
		Versions: versions,
		Profiles: a.profiles,
		TTL:      a.cfg.Cache.IndexTTL,
		Logger:   a.logger,
	})
	paginator := services.NewPaginator(services.PaginatorConfig{
		Cache:  a.cache,
		TTL:    a.cfg.Cache.PageTTL,
		Logger: a.logger,
	})

	a.directory = services.NewDirectoryService(services.DirectoryConfig{
		Profiles:  a.profiles,
		Versions:  versions,
		Indexer:   indexer,
		Paginator: paginator,
		Renderer:  renderer,
		Logger:    a.logger,
	})
	a.events = services.NewInvalidationService(versions, a.profiles, a.logger)
	a.cacheAdmin = services.NewCacheAdminService(services.CacheAdminConfig{
		Cache:    a.cache,
		Versions: versions,
		Lock:     a.lock,
		Profiles: a.profiles,
		Logger:   a.logger,
	})
	a.auth = newAuthService(a.cfg)
	return nil
}

// dependencies lists what /ready pings
func (a *app) dependencies() map[string]http.Pinger {
	return map[string]http.Pinger{
		"content": a.db,
		"cache":   a.cache,
	}
}

// Close releases every connection the app opened
func (a *app) Close() {
	var errs []error
	if a.redisClient != nil {
		errs = append(errs, a.redisClient.Close())
	}
	if a.boltStore != nil {
		errs = append(errs, a.boltStore.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("error closing connections", "error", err)
	}
}

func newAuthService(cfg *config.Config) driving.AuthService {
	return services.NewAuthService(auth.NewAdapter(cfg.Auth.JWTSecret))
}
