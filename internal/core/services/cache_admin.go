package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driving"
)

// flushLockName serialises administrative flushes across instances
const flushLockName = "directory-cache-flush"

// Ensure cacheAdminService implements CacheAdminService
var _ driving.CacheAdminService = (*cacheAdminService)(nil)

type cacheAdminService struct {
	cache    driven.CacheStore
	versions *VersionRegistry
	lock     driven.DistributedLock
	profiles map[domain.ContentType]domain.DirectoryProfile
	lockTTL  time.Duration
	logger   *slog.Logger
}

// CacheAdminConfig holds configuration for the cache admin service.
type CacheAdminConfig struct {
	Cache    driven.CacheStore
	Versions *VersionRegistry
	Lock     driven.DistributedLock // Optional: nil for single-process deployments
	Profiles map[domain.ContentType]domain.DirectoryProfile
	LockTTL  time.Duration // TTL for the flush lock (default: 5m)
	Logger   *slog.Logger
}

// NewCacheAdminService creates a new CacheAdminService
func NewCacheAdminService(cfg CacheAdminConfig) driving.CacheAdminService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	profiles := cfg.Profiles
	if profiles == nil {
		profiles = domain.DefaultProfiles()
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &cacheAdminService{
		cache:    cfg.Cache,
		versions: cfg.Versions,
		lock:     cfg.Lock,
		profiles: profiles,
		lockTTL:  lockTTL,
		logger:   logger,
	}
}

// Versions returns the version of every profile, including never-bumped ones.
func (s *cacheAdminService) Versions(ctx context.Context) (map[domain.ContentType]int64, error) {
	stored, err := s.versions.Versions(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.ContentType]int64, len(s.profiles))
	for ct := range s.profiles {
		out[ct] = InitialVersion
	}
	for ct, v := range stored {
		out[ct] = v
	}
	return out, nil
}

func (s *cacheAdminService) Bump(ctx context.Context, contentType domain.ContentType) (int64, error) {
	if _, ok := s.profiles[contentType]; !ok {
		return 0, domain.ErrUnknownContentType
	}
	return s.versions.Bump(ctx, contentType)
}

// Flush deletes stored entries and bumps the affected versions. Versions
// only ever move forward, so entries written by in-flight requests at the
// old version stay unreachable.
func (s *cacheAdminService) Flush(ctx context.Context, contentType domain.ContentType) (*domain.FlushResult, error) {
	targets := make([]domain.ContentType, 0, len(s.profiles))
	prefix := CacheKeyPrefix
	if contentType != "" {
		if _, ok := s.profiles[contentType]; !ok {
			return nil, domain.ErrUnknownContentType
		}
		targets = append(targets, contentType)
		prefix = TypeKeyPrefix(contentType)
	} else {
		for ct := range s.profiles {
			targets = append(targets, ct)
		}
	}

	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, flushLockName, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, domain.ErrFlushInProgress
		}
		defer func() {
			if err := s.lock.Release(ctx, flushLockName); err != nil {
				s.logger.Warn("failed to release flush lock", "error", err)
			}
		}()
	}

	deleted, err := s.cache.DeleteByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	result := &domain.FlushResult{Deleted: deleted, Versions: make(map[domain.ContentType]int64, len(targets))}
	for _, ct := range targets {
		version, err := s.versions.Bump(ctx, ct)
		if err != nil {
			return nil, err
		}
		result.Versions[ct] = version
	}

	s.logger.Info("directory cache flushed", "prefix", prefix, "deleted", deleted)
	return result, nil
}

// Sweep removes expired entries on backends without native expiry.
func (s *cacheAdminService) Sweep(ctx context.Context) (int, error) {
	sweeper, ok := s.cache.(driven.CacheSweeper)
	if !ok {
		return 0, nil
	}
	n, err := sweeper.Sweep(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("expired cache entries swept", "count", n)
	return n, nil
}

func (s *cacheAdminService) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
