package services

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"pagesentry/internal/domain/models"
)

// ReputationChecker answers for externally sourced domain intelligence, such
// as the threat-feed cache. A nil checker or a checker error simply means no
// external signal for that hostname.
type ReputationChecker interface {
	CheckDomainReputation(ctx context.Context, domain string) (models.DomainReputation, error)
}

var (
	suspiciousTLDs = map[string]bool{
		".tk": true, ".ml": true, ".ga": true, ".cf": true,
		".xyz": true, ".top": true, ".club": true,
	}

	urlShorteners = []string{"bit.ly", "tinyurl", "goo.gl"}

	brandKeywords = []string{
		"microsoft", "apple", "google", "netflix",
		"amazon", "paypal", "mygov", "ato",
	}

	ipv4Host = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
)

// DomainAnalyzer scores hostnames referenced by a page. Local heuristics
// always run; the optional checker layers in threat-feed intelligence.
type DomainAnalyzer struct {
	checker ReputationChecker
	weights Weights
}

func NewDomainAnalyzer(checker ReputationChecker, weights Weights) *DomainAnalyzer {
	return &DomainAnalyzer{checker: checker, weights: weights}
}

// Analyze scores every URL's hostname independently. A hostname contributes
// to the domain score only when its clamped risk exceeds the floor, so a
// single weak signal never flags a domain on its own. Malformed URLs are
// skipped without failing the batch.
func (a *DomainAnalyzer) Analyze(ctx context.Context, urls []string) ([]models.Finding, []models.SuspiciousDomain, float64) {
	var findings []models.Finding
	var suspicious []models.SuspiciousDomain
	var score float64

	seen := map[string]bool{}
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if seen[host] {
			continue
		}
		seen[host] = true

		rep := a.CheckDomain(ctx, host)
		risk := clamp01(rep.Risk)
		if risk <= a.weights.DomainRiskFloor {
			continue
		}

		score += risk
		suspicious = append(suspicious, models.SuspiciousDomain{
			Domain:  host,
			Risk:    risk,
			Reasons: rep.Reasons,
		})
		findings = append(findings, models.Finding{
			ID:        "domain:" + host,
			Category:  models.CategoryDomain,
			Severity:  models.SeverityHigh,
			Weight:    risk,
			Rationale: fmt.Sprintf("Suspicious domain: %s - %s", host, strings.Join(rep.Reasons, ", ")),
			Source:    "domain",
			Evidence:  host,
		})
	}

	return findings, suspicious, score
}

// CheckDomain runs the local heuristics for one hostname and folds in the
// external checker's verdict when one is wired.
func (a *DomainAnalyzer) CheckDomain(ctx context.Context, domain string) models.DomainReputation {
	rep := models.DomainReputation{}
	lower := strings.ToLower(domain)

	parts := strings.Split(lower, ".")
	if tld := "." + parts[len(parts)-1]; suspiciousTLDs[tld] {
		rep.Risk += a.weights.DomainTLDRisk
		rep.Reasons = append(rep.Reasons, "Suspicious top-level domain")
	}

	if ipv4Host.MatchString(lower) {
		rep.Risk += a.weights.DomainIPRisk
		rep.Reasons = append(rep.Reasons, "Direct IP address (suspicious)")
	}

	for _, shortener := range urlShorteners {
		if strings.Contains(lower, shortener) {
			rep.Risk += a.weights.DomainShortenerRisk
			rep.Reasons = append(rep.Reasons, "URL shortener (can hide malicious destinations)")
			break
		}
	}

	registrable := ""
	if len(parts) >= 2 {
		registrable = parts[len(parts)-2]
	}
	for _, brand := range brandKeywords {
		// The brand's own registrable domain is exempt: apple.com and
		// www.apple.com pass, apple-security-alert.com does not.
		if strings.Contains(lower, brand) && registrable != brand {
			rep.Risk += a.weights.DomainBrandRisk
			rep.Reasons = append(rep.Reasons, fmt.Sprintf("Potential %s impersonation", brand))
		}
	}

	if a.checker != nil {
		if ext, err := a.checker.CheckDomainReputation(ctx, domain); err == nil {
			rep.Risk += ext.Risk
			rep.Reasons = append(rep.Reasons, ext.Reasons...)
		}
	}

	return rep
}
