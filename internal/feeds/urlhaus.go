package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pagesentry/pkg/logger"
)

const (
	urlhausFeedURL = "https://urlhaus.abuse.ch/downloads/json/"
	urlhausSlug    = "urlhaus"
)

// urlhausEntry is one record in the URLhaus JSON download.
type urlhausEntry struct {
	URL       string `json:"url"`
	URLStatus string `json:"url_status"`
	Threat    string `json:"threat"`
}

// URLhausConnector fetches the Abuse.ch URLhaus malware URL feed (public JSON
// download, no auth required).
type URLhausConnector struct {
	*BaseConnector
	client *http.Client
	logger *logger.Logger
}

// NewURLhausConnector creates a new URLhaus connector
func NewURLhausConnector(log *logger.Logger) *URLhausConnector {
	return &URLhausConnector{
		BaseConnector: NewBaseConnector(urlhausSlug, "URLhaus", 2, urlhausFeedURL, time.Hour),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log.WithFeed(urlhausSlug),
	}
}

// Fetch retrieves malicious URLs from URLhaus and extracts their hostnames
func (c *URLhausConnector) Fetch(ctx context.Context) (*FetchResult, error) {
	start := time.Now()
	result := &FetchResult{
		FeedSlug:  urlhausSlug,
		FetchedAt: start,
	}

	c.logger.Info().Str("url", c.FeedURL()).Msg("fetching URLhaus JSON feed")

	req, err := http.NewRequestWithContext(ctx, "GET", c.FeedURL(), nil)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, fmt.Errorf("failed to fetch URLhaus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		result.Error = fmt.Errorf("URLhaus returned status %d: %s", resp.StatusCode, string(body))
		result.Duration = time.Since(start)
		return result, result.Error
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, fmt.Errorf("failed to read URLhaus response: %w", err)
	}

	domains, total, err := c.parseFeed(body)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, err
	}

	result.Domains = domains
	result.TotalFetched = total
	result.Success = true
	result.Duration = time.Since(start)

	c.logger.Info().
		Int("urls", total).
		Int("domains", len(domains)).
		Dur("duration", result.Duration).
		Msg("URLhaus fetch completed")

	return result, nil
}

// parseFeed handles the URLhaus download shape: a JSON object keyed by entry
// id, each value being a list of records.
func (c *URLhausConnector) parseFeed(data []byte) ([]string, int, error) {
	var raw map[string][]urlhausEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("failed to parse URLhaus JSON: %w", err)
	}

	seen := map[string]bool{}
	var domains []string
	total := 0

	for _, entries := range raw {
		for _, entry := range entries {
			if entry.URL == "" {
				continue
			}
			total++

			parsed, err := url.Parse(entry.URL)
			if err != nil || parsed.Hostname() == "" {
				continue
			}
			host := strings.ToLower(parsed.Hostname())
			if seen[host] {
				continue
			}
			seen[host] = true
			domains = append(domains, host)
		}
	}

	return domains, total, nil
}
