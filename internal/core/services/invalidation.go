package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driving"
)

// Ensure invalidationService implements ContentEvents
var _ driving.ContentEvents = (*invalidationService)(nil)

// invalidationService turns content mutations into version bumps. Any
// relevant mutation invalidates the whole content type; listings are read
// heavy and tracking per-item fan-out is not worth the risk of stale pages.
type invalidationService struct {
	versions *VersionRegistry
	profiles map[domain.ContentType]domain.DirectoryProfile
	logger   *slog.Logger
}

// NewInvalidationService creates a new ContentEvents handler
func NewInvalidationService(versions *VersionRegistry, profiles map[domain.ContentType]domain.DirectoryProfile, logger *slog.Logger) driving.ContentEvents {
	if logger == nil {
		logger = slog.Default()
	}
	if profiles == nil {
		profiles = domain.DefaultProfiles()
	}
	return &invalidationService{versions: versions, profiles: profiles, logger: logger}
}

func (s *invalidationService) OnSave(ctx context.Context, contentType domain.ContentType, id string) error {
	return s.bump(ctx, contentType, domain.EventSave, id)
}

func (s *invalidationService) OnStatusChange(ctx context.Context, contentType domain.ContentType, id, oldStatus, newStatus string) error {
	if oldStatus == newStatus {
		return nil
	}
	return s.bump(ctx, contentType, domain.EventStatusChange, id)
}

func (s *invalidationService) OnTermsChanged(ctx context.Context, contentType domain.ContentType, id, taxonomy string) error {
	return s.bump(ctx, contentType, domain.EventTermsChanged, id)
}

// OnAttributeChanged bumps for every key, including ones no directory reads.
func (s *invalidationService) OnAttributeChanged(ctx context.Context, contentType domain.ContentType, id, key string) error {
	return s.bump(ctx, contentType, domain.EventAttributeChanged, id)
}

func (s *invalidationService) OnDelete(ctx context.Context, contentType domain.ContentType, id string) error {
	return s.bump(ctx, contentType, domain.EventDelete, id)
}

// Handle dispatches a decoded event to the matching hook
func (s *invalidationService) Handle(ctx context.Context, event domain.ContentEvent) error {
	switch event.Kind {
	case domain.EventSave:
		return s.OnSave(ctx, event.ContentType, event.ItemID)
	case domain.EventStatusChange:
		return s.OnStatusChange(ctx, event.ContentType, event.ItemID, event.OldStatus, event.NewStatus)
	case domain.EventTermsChanged:
		return s.OnTermsChanged(ctx, event.ContentType, event.ItemID, event.Taxonomy)
	case domain.EventAttributeChanged:
		return s.OnAttributeChanged(ctx, event.ContentType, event.ItemID, event.Key)
	case domain.EventDelete:
		return s.OnDelete(ctx, event.ContentType, event.ItemID)
	default:
		return fmt.Errorf("%w: unknown event %q", domain.ErrInvalidInput, event.Kind)
	}
}

func (s *invalidationService) bump(ctx context.Context, contentType domain.ContentType, kind domain.ContentEventKind, id string) error {
	if _, ok := s.profiles[contentType]; !ok {
		s.logger.DebugContext(ctx, "ignoring event for content type without directory",
			"content_type", contentType, "event", kind, "id", id)
		return nil
	}
	version, err := s.versions.Bump(ctx, contentType)
	if err != nil {
		s.logger.ErrorContext(ctx, "cache version bump failed",
			"content_type", contentType, "event", kind, "id", id, "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "directory cache invalidated",
		"content_type", contentType, "event", kind, "id", id, "version", version)
	return nil
}
