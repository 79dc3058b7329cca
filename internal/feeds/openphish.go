package feeds

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pagesentry/pkg/logger"
)

const (
	openPhishFeedURL = "https://openphish.com/feed.txt"
	openPhishSlug    = "openphish"
)

// OpenPhishConnector fetches the OpenPhish public phishing URL feed, a plain
// text file with one URL per line.
type OpenPhishConnector struct {
	*BaseConnector
	client *http.Client
	logger *logger.Logger
}

// NewOpenPhishConnector creates a new OpenPhish connector
func NewOpenPhishConnector(log *logger.Logger) *OpenPhishConnector {
	return &OpenPhishConnector{
		BaseConnector: NewBaseConnector(openPhishSlug, "OpenPhish", 4, openPhishFeedURL, 4*time.Hour),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log.WithFeed(openPhishSlug),
	}
}

// Fetch retrieves phishing URLs from OpenPhish and extracts their hostnames
func (c *OpenPhishConnector) Fetch(ctx context.Context) (*FetchResult, error) {
	start := time.Now()
	result := &FetchResult{
		FeedSlug:  openPhishSlug,
		FetchedAt: start,
	}

	c.logger.Info().Msg("fetching from OpenPhish feed")

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
		return result, fmt.Errorf("failed to fetch OpenPhish: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		result.Error = fmt.Errorf("OpenPhish returned status %d: %s", resp.StatusCode, string(body))
		result.Duration = time.Since(start)
		return result, result.Error
	}

	domains, total := c.parseFeed(resp.Body)
	result.Domains = domains
	result.TotalFetched = total
	result.Success = true
	result.Duration = time.Since(start)

	c.logger.Info().
		Int("urls", total).
		Int("domains", len(domains)).
		Dur("duration", result.Duration).
		Msg("OpenPhish fetch completed")

	return result, nil
}

func (c *OpenPhishConnector) parseFeed(reader io.Reader) ([]string, int) {
	seen := map[string]bool{}
	var domains []string
	total := 0

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || !strings.HasPrefix(line, "http") {
			continue
		}
		total++

		parsed, err := url.Parse(line)
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

	return domains, total
}
