// internal/lenders/cache.go
package lenders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/models"
)

const directoryCacheKey = "lenders:directory"

// CachedSource fronts a Source with a Redis snapshot so every worker in
// the fleet sees the same panel between refreshes. Redis trouble is never
// fatal: the inner source answers and the cache heals on the next write.
type CachedSource struct {
	inner  Source
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(inner Source, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{inner: inner, client: client, ttl: ttl, logger: log}
}

func (s *CachedSource) Load(ctx context.Context) (*Directory, error) {
	cached, err := s.client.Get(ctx, directoryCacheKey).Bytes()
	if err == nil {
		var profiles []models.LenderProfile
		if err := json.Unmarshal(cached, &profiles); err == nil {
			return NewDirectory(profiles), nil
		}
		s.logger.Warn("cached lender directory is corrupt, reloading from source", nil)
	} else if err != redis.Nil {
		s.logger.Warn("lender directory cache unavailable", map[string]interface{}{
			"error": err,
		})
	}

	dir, err := s.inner.Load(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(dir.Lenders()); err == nil {
		if err := s.client.Set(ctx, directoryCacheKey, payload, s.ttl).Err(); err != nil {
			s.logger.Warn("failed to cache lender directory", map[string]interface{}{
				"error": err,
			})
		}
	}
	return dir, nil
}

// Invalidate drops the cached snapshot, forcing the next Load to hit the
// inner source. The directory-updater tool calls this after a rewrite.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	if err := s.client.Del(ctx, directoryCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate lender directory cache: %w", err)
	}
	return nil
}
