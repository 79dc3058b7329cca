package feeds

import (
	"context"
	"sync"
	"time"

	"pagesentry/internal/config"
	"pagesentry/internal/infrastructure/cache"
	"pagesentry/pkg/logger"
)

// Scheduler refreshes every enabled feed on its own interval. A distributed
// Redis lock per feed keeps multiple instances from fetching the same feed
// at the same time.
type Scheduler struct {
	registry *Registry
	store    *DomainCache
	locks    *cache.RedisCache
	cfg      config.FeedsConfig
	logger   *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(registry *Registry, store *DomainCache, locks *cache.RedisCache, cfg config.FeedsConfig, log *logger.Logger) *Scheduler {
	return &Scheduler{
		registry: registry,
		store:    store,
		locks:    locks,
		cfg:      cfg,
		logger:   log.WithComponent("feed-scheduler"),
	}
}

// Start launches one refresh loop per enabled feed. Each loop fires once
// after the configured initial delay, then on the feed's own interval.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	connectors := s.registry.ListEnabled()
	s.logger.Info().Int("feeds", len(connectors)).Msg("starting feed scheduler")

	for _, conn := range connectors {
		s.wg.Add(1)
		go s.runLoop(ctx, conn)
	}
}

// Stop cancels all refresh loops and waits for them to drain.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info().Msg("feed scheduler stopped")
}

func (s *Scheduler) runLoop(ctx context.Context, conn Connector) {
	defer s.wg.Done()

	delay := s.cfg.InitialDelay
	if delay <= 0 {
		delay = 10 * time.Second
	}

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return
	}

	s.refresh(ctx, conn)

	ticker := time.NewTicker(conn.UpdateInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh(ctx, conn)
		case <-ctx.Done():
			return
		}
	}
}

// refresh fetches one feed under a distributed lock and stores the result.
// Lock TTL is half the interval so a crashed holder cannot starve the feed.
func (s *Scheduler) refresh(ctx context.Context, conn Connector) {
	lockTTL := conn.UpdateInterval() / 2
	if lockTTL < time.Minute {
		lockTTL = time.Minute
	}

	acquired, err := s.locks.AcquireLock(ctx, conn.Slug(), lockTTL)
	if err != nil {
		s.logger.WithError(err).Warn().Str("feed", conn.Slug()).Msg("failed to acquire feed lock")
		return
	}
	if !acquired {
		s.logger.Debug().Str("feed", conn.Slug()).Msg("feed locked by another instance, skipping")
		return
	}
	defer func() {
		if err := s.locks.ReleaseLock(ctx, conn.Slug()); err != nil {
			s.logger.WithError(err).Warn().Str("feed", conn.Slug()).Msg("failed to release feed lock")
		}
	}()

	result, err := conn.Fetch(ctx)
	if err != nil {
		s.logger.WithError(err).Error().Str("feed", conn.Slug()).Msg("feed refresh failed")
		if result != nil {
			// Record the failed attempt so stats show staleness.
			if storeErr := s.store.Store(ctx, result, conn.Priority()); storeErr != nil {
				s.logger.WithError(storeErr).Warn().Str("feed", conn.Slug()).Msg("failed to record failed refresh")
			}
		}
		return
	}

	if err := s.store.Store(ctx, result, conn.Priority()); err != nil {
		s.logger.WithError(err).Error().Str("feed", conn.Slug()).Msg("failed to store feed results")
	}
}

// RegisterDefaults builds and registers the standard connector set, applying
// per-feed configuration.
func RegisterDefaults(registry *Registry, cfg config.FeedsConfig, log *logger.Logger) error {
	openphish := NewOpenPhishConnector(log)
	openphish.Configure(cfg.OpenPhish)
	if err := registry.Register(openphish); err != nil {
		return err
	}

	urlhaus := NewURLhausConnector(log)
	urlhaus.Configure(cfg.URLhaus)
	if err := registry.Register(urlhaus); err != nil {
		return err
	}

	return nil
}
