package services

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// InitialVersion is the version of a content type that was never bumped
const InitialVersion int64 = 1

// VersionRegistry owns the per-type cache version counters. Every cache key
// embeds the current version, so a bump makes all older entries unreachable.
type VersionRegistry struct {
	store  driven.VersionStore
	logger *slog.Logger
}

// NewVersionRegistry creates a registry over a version store.
func NewVersionRegistry(store driven.VersionStore, logger *slog.Logger) *VersionRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &VersionRegistry{store: store, logger: logger}
}

// CurrentVersion returns the version of a content type (1 if never bumped).
func (r *VersionRegistry) CurrentVersion(ctx context.Context, contentType domain.ContentType) (int64, error) {
	version, found, err := r.store.Get(ctx, contentType)
	if err != nil {
		return 0, err
	}
	if !found || version < InitialVersion {
		return InitialVersion, nil
	}
	return version, nil
}

// Bump increments the version of a content type by exactly one.
// The increment happens atomically in the store.
func (r *VersionRegistry) Bump(ctx context.Context, contentType domain.ContentType) (int64, error) {
	version, err := r.store.Increment(ctx, contentType)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("cache version bumped", "content_type", contentType, "version", version)
	return version, nil
}

// Versions returns every stored counter
func (r *VersionRegistry) Versions(ctx context.Context) (map[domain.ContentType]int64, error) {
	return r.store.List(ctx)
}

// Snapshot pins the version of one content type for the duration of a
// request, so every cache read and write of that request uses one version.
type Snapshot struct {
	ContentType domain.ContentType
	Version     int64

	// Cacheable is false when the version could not be read; the request
	// then bypasses the cache entirely.
	Cacheable bool
}

// Snapshot reads the current version. A store failure is logged and yields
// an uncacheable snapshot rather than an error.
func (r *VersionRegistry) Snapshot(ctx context.Context, contentType domain.ContentType) Snapshot {
	version, err := r.CurrentVersion(ctx, contentType)
	if err != nil {
		r.logger.Warn("cache version unavailable, bypassing cache",
			"content_type", contentType, "error", err)
		return Snapshot{ContentType: contentType}
	}
	return Snapshot{ContentType: contentType, Version: version, Cacheable: true}
}
