package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pagesentry/internal/domain/models"
	"pagesentry/internal/infrastructure/cache"
	"pagesentry/pkg/logger"
)

// domainEntry is the cached verdict for one hostname: which feeds list it and
// at what priority. Merged across refreshes so a domain keeps all its listings.
type domainEntry struct {
	Sources   map[string]int `json:"sources"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// FeedStats summarizes one feed's most recent refresh.
type FeedStats struct {
	FeedSlug     string    `json:"feed_slug"`
	TotalFetched int       `json:"total_fetched"`
	Domains      int       `json:"domains"`
	FetchedAt    time.Time `json:"fetched_at"`
	DurationMS   int64     `json:"duration_ms"`
	Success      bool      `json:"success"`
}

const domainEntryTTL = 48 * time.Hour

// DomainCache stores feed listings per hostname in Redis and answers the
// engine's reputation lookups. Higher-priority feeds contribute more risk.
type DomainCache struct {
	cache  *cache.RedisCache
	logger *logger.Logger
}

func NewDomainCache(c *cache.RedisCache, log *logger.Logger) *DomainCache {
	return &DomainCache{
		cache:  c,
		logger: log.WithComponent("feed-cache"),
	}
}

// Store merges one refresh result into the per-domain cache and records the
// feed's stats.
func (d *DomainCache) Store(ctx context.Context, result *FetchResult, priority int) error {
	for _, domain := range result.Domains {
		key := cache.KeyFeedDomainPrefix + domain

		entry := domainEntry{Sources: map[string]int{}}
		if err := d.cache.GetJSON(ctx, key, &entry); err != nil && err != redis.Nil {
			d.logger.WithError(err).Warn().Str("domain", domain).Msg("failed to read cached domain entry")
		}
		if entry.Sources == nil {
			entry.Sources = map[string]int{}
		}
		entry.Sources[result.FeedSlug] = priority
		entry.UpdatedAt = result.FetchedAt

		if err := d.cache.SetJSON(ctx, key, entry, domainEntryTTL); err != nil {
			return fmt.Errorf("failed to cache domain %s: %w", domain, err)
		}
	}

	stats := FeedStats{
		FeedSlug:     result.FeedSlug,
		TotalFetched: result.TotalFetched,
		Domains:      len(result.Domains),
		FetchedAt:    result.FetchedAt,
		DurationMS:   result.Duration.Milliseconds(),
		Success:      result.Success,
	}
	if err := d.setStats(ctx, stats); err != nil {
		d.logger.WithError(err).Warn().Str("feed", result.FeedSlug).Msg("failed to record feed stats")
	}

	d.logger.Info().
		Str("feed", result.FeedSlug).
		Int("domains", len(result.Domains)).
		Msg("feed results cached")
	return nil
}

// CheckDomainReputation answers the engine's lookup for one hostname. A
// domain absent from every feed scores zero; a listed domain scores by feed
// priority (priority 1 contributes 0.4, priority 4 contributes 0.1).
func (d *DomainCache) CheckDomainReputation(ctx context.Context, domain string) (models.DomainReputation, error) {
	rep := models.DomainReputation{}

	var entry domainEntry
	err := d.cache.GetJSON(ctx, cache.KeyFeedDomainPrefix+domain, &entry)
	if err == redis.Nil {
		return rep, nil
	}
	if err != nil {
		return rep, fmt.Errorf("failed to read domain reputation: %w", err)
	}

	for slug, priority := range entry.Sources {
		rep.Risk += riskForPriority(priority)
		rep.Reasons = append(rep.Reasons, fmt.Sprintf("Listed in %s threat feed", slug))
	}
	if rep.Risk > 1 {
		rep.Risk = 1
	}

	return rep, nil
}

// Stats returns the most recent refresh stats for every feed.
func (d *DomainCache) Stats(ctx context.Context) (map[string]FeedStats, error) {
	raw, err := d.cache.HGetAll(ctx, cache.KeyFeedStats)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed stats: %w", err)
	}

	stats := make(map[string]FeedStats, len(raw))
	for slug, data := range raw {
		var s FeedStats
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			d.logger.WithError(err).Warn().Str("feed", slug).Msg("skipping malformed feed stats")
			continue
		}
		stats[slug] = s
	}
	return stats, nil
}

func (d *DomainCache) setStats(ctx context.Context, stats FeedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return d.cache.HSet(ctx, cache.KeyFeedStats, stats.FeedSlug, string(data))
}

// riskForPriority maps a feed priority to its risk contribution: the same
// inverse-priority weighting the feed scorer has always used, on a 0..1 scale.
func riskForPriority(priority int) float64 {
	risk := float64(5-priority) * 0.1
	if risk < 0.1 {
		risk = 0.1
	}
	return risk
}
