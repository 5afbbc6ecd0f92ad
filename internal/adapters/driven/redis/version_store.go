package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VersionStore = (*VersionStore)(nil)

// versionsKey holds one field per content type. It lives outside the
// directory cache prefix so flushes never reset it.
const versionsKey = "sercha:versions:directory"

// incrementScript seeds an unseen type at 1 and increments in one atomic step
var incrementScript = redis.NewScript(`
	redis.call("hsetnx", KEYS[1], ARGV[1], 1)
	return redis.call("hincrby", KEYS[1], ARGV[1], 1)
`)

// VersionStore implements VersionStore with a Redis hash.
type VersionStore struct {
	client *redis.Client
}

// NewVersionStore creates a new Redis-backed version store
func NewVersionStore(client *redis.Client) *VersionStore {
	return &VersionStore{client: client}
}

func (s *VersionStore) Get(ctx context.Context, contentType domain.ContentType) (int64, bool, error) {
	v, err := s.client.HGet(ctx, versionsKey, string(contentType)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get version %s: %w", contentType, err)
	}
	return v, true, nil
}

func (s *VersionStore) Increment(ctx context.Context, contentType domain.ContentType) (int64, error) {
	v, err := incrementScript.Run(ctx, s.client, []string{versionsKey}, string(contentType)).Int64()
	if err != nil {
		return 0, fmt.Errorf("increment version %s: %w", contentType, err)
	}
	return v, nil
}

func (s *VersionStore) List(ctx context.Context) (map[domain.ContentType]int64, error) {
	fields, err := s.client.HGetAll(ctx, versionsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	out := make(map[domain.ContentType]int64, len(fields))
	for field, raw := range fields {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("version %s: %w", field, err)
		}
		out[domain.ContentType(field)] = v
	}
	return out, nil
}
