package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pagesentry/internal/domain/models"
	"pagesentry/pkg/logger"
)

// WhitelistStore persists false-positive suppressions in Redis sets. It is
// the sole source of truth: the engine reads one snapshot per analysis call
// and never caches beyond it.
type WhitelistStore struct {
	cache *RedisCache
	log   *logger.Logger
}

func NewWhitelistStore(cache *RedisCache, log *logger.Logger) *WhitelistStore {
	return &WhitelistStore{
		cache: cache,
		log:   log.WithComponent("whitelist_store"),
	}
}

// GetWhitelist reads the full suppression snapshot. A missing key is an
// empty set, not an error.
func (s *WhitelistStore) GetWhitelist(ctx context.Context) (models.Whitelist, error) {
	wl := models.EmptyWhitelist()

	domains, err := s.cache.SMembers(ctx, KeyWhitelistDomains)
	if err != nil && err != redis.Nil {
		return wl, fmt.Errorf("failed to read whitelisted domains: %w", err)
	}
	for _, d := range domains {
		wl.Domains[d] = true
	}

	patterns, err := s.cache.SMembers(ctx, KeyWhitelistPatterns)
	if err != nil && err != redis.Nil {
		return wl, fmt.Errorf("failed to read whitelisted patterns: %w", err)
	}
	for _, p := range patterns {
		wl.Patterns[p] = true
	}

	return wl, nil
}

// AddDomain suppresses every finding for the domain.
func (s *WhitelistStore) AddDomain(ctx context.Context, domain string) error {
	if err := s.cache.SAdd(ctx, KeyWhitelistDomains, domain); err != nil {
		return fmt.Errorf("failed to whitelist domain: %w", err)
	}
	s.touch(ctx)
	s.log.Info().Str("domain", domain).Msg("Domain whitelisted")
	return nil
}

// AddPattern suppresses a pattern id, globally when domain is empty or
// scoped to one domain otherwise.
func (s *WhitelistStore) AddPattern(ctx context.Context, domain, patternID string) error {
	key := patternID
	if domain != "" {
		key = models.PairKey(domain, patternID)
	}
	if err := s.cache.SAdd(ctx, KeyWhitelistPatterns, key); err != nil {
		return fmt.Errorf("failed to whitelist pattern: %w", err)
	}
	s.touch(ctx)
	s.log.Info().Str("pattern_id", patternID).Str("domain", domain).Msg("Pattern whitelisted")
	return nil
}

// RemoveDomain lifts a domain suppression.
func (s *WhitelistStore) RemoveDomain(ctx context.Context, domain string) error {
	if err := s.cache.SRem(ctx, KeyWhitelistDomains, domain); err != nil {
		return fmt.Errorf("failed to remove whitelisted domain: %w", err)
	}
	s.touch(ctx)
	return nil
}

// RemovePattern lifts a pattern suppression (same keying as AddPattern).
func (s *WhitelistStore) RemovePattern(ctx context.Context, domain, patternID string) error {
	key := patternID
	if domain != "" {
		key = models.PairKey(domain, patternID)
	}
	if err := s.cache.SRem(ctx, KeyWhitelistPatterns, key); err != nil {
		return fmt.Errorf("failed to remove whitelisted pattern: %w", err)
	}
	s.touch(ctx)
	return nil
}

// SetWhitelist replaces both sets atomically via a pipeline.
func (s *WhitelistStore) SetWhitelist(ctx context.Context, wl models.Whitelist) error {
	pipe := s.cache.Pipeline()
	pipe.Del(ctx, s.cache.key(KeyWhitelistDomains), s.cache.key(KeyWhitelistPatterns))
	for d := range wl.Domains {
		pipe.SAdd(ctx, s.cache.key(KeyWhitelistDomains), d)
	}
	for p := range wl.Patterns {
		pipe.SAdd(ctx, s.cache.key(KeyWhitelistPatterns), p)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to replace whitelist: %w", err)
	}
	s.touch(ctx)
	return nil
}

func (s *WhitelistStore) touch(ctx context.Context) {
	if err := s.cache.HSet(ctx, KeyWhitelistMeta, "last_updated", time.Now().UTC().Format(time.RFC3339)); err != nil {
		s.log.WithError(err).Warn().Msg("Failed to update whitelist metadata")
	}
}
