package feeds

import (
	"context"
	"time"

	"pagesentry/internal/config"
)

// Connector defines the interface for threat-feed connectors
type Connector interface {
	// Slug returns the unique identifier for this feed
	Slug() string

	// Name returns the human-readable name of this feed
	Name() string

	// Priority returns the feed's trust priority (1 is highest)
	Priority() int

	// Fetch retrieves the current blocklist from the feed
	Fetch(ctx context.Context) (*FetchResult, error)

	// IsEnabled returns whether this feed is enabled
	IsEnabled() bool

	// UpdateInterval returns how often this feed should be refreshed
	UpdateInterval() time.Duration

	// Configure applies feed configuration
	Configure(cfg config.FeedConfig)
}

// FetchResult holds one feed refresh outcome
type FetchResult struct {
	FeedSlug     string        `json:"feed_slug"`
	Domains      []string      `json:"domains"`
	TotalFetched int           `json:"total_fetched"`
	FetchedAt    time.Time     `json:"fetched_at"`
	Duration     time.Duration `json:"duration"`
	Success      bool          `json:"success"`
	Error        error         `json:"-"`
}

// BaseConnector provides common functionality for feed connectors
type BaseConnector struct {
	slug     string
	name     string
	priority int
	enabled  bool
	interval time.Duration
	feedURL  string
}

// NewBaseConnector creates a new base connector with sane defaults
func NewBaseConnector(slug, name string, priority int, feedURL string, interval time.Duration) *BaseConnector {
	return &BaseConnector{
		slug:     slug,
		name:     name,
		priority: priority,
		enabled:  true,
		interval: interval,
		feedURL:  feedURL,
	}
}

func (c *BaseConnector) Slug() string                  { return c.slug }
func (c *BaseConnector) Name() string                  { return c.name }
func (c *BaseConnector) Priority() int                 { return c.priority }
func (c *BaseConnector) IsEnabled() bool               { return c.enabled }
func (c *BaseConnector) UpdateInterval() time.Duration { return c.interval }
func (c *BaseConnector) FeedURL() string               { return c.feedURL }

// Configure overlays non-zero config values
func (c *BaseConnector) Configure(cfg config.FeedConfig) {
	c.enabled = cfg.Enabled
	if cfg.UpdateInterval > 0 {
		c.interval = cfg.UpdateInterval
	}
	if cfg.FeedURL != "" {
		c.feedURL = cfg.FeedURL
	}
	if cfg.Priority > 0 {
		c.priority = cfg.Priority
	}
}
