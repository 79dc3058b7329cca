package services

import (
	"regexp"

	"pagesentry/internal/domain/models"
)

type trustIndicator struct {
	id        string
	pattern   *regexp.Regexp
	weight    float64
	strong    bool
	rationale string
}

var trustIndicators = []trustIndicator{
	// Strong signals.
	{
		id:        "trust_https",
		pattern:   regexp.MustCompile(`(?i)https://[^/]+/`),
		weight:    0.8,
		strong:    true,
		rationale: "HTTPS encryption",
	},
	{
		id:        "trust_professional_pages",
		pattern:   regexp.MustCompile(`(?i)(?:contact\s+us|about\s+us|privacy\s+policy|terms\s+of\s+service)`),
		weight:    0.8,
		strong:    true,
		rationale: "Professional pages",
	},
	{
		id:        "trust_established",
		pattern:   regexp.MustCompile(`(?i)(?:established\s+since|founded\s+in|since\s+\d{4})`),
		weight:    0.8,
		strong:    true,
		rationale: "Established history",
	},
	{
		id:        "trust_abn",
		pattern:   regexp.MustCompile(`(?i)(?:australian\s+business\s+number|abn\s+\d{9,11}|abn\s+\d{2}\s+\d{3}\s+\d{3}\s+\d{3})`),
		weight:    1.0,
		strong:    true,
		rationale: "Australian business registration",
	},
	{
		id:        "trust_acn",
		pattern:   regexp.MustCompile(`(?i)(?:acn\s+\d{9}|acn\s+\d{3}\s+\d{3}\s+\d{3})`),
		weight:    1.0,
		strong:    true,
		rationale: "Australian company number",
	},
	// Medium signals.
	{
		id:        "trust_contact_info",
		pattern:   regexp.MustCompile(`(?i)(?:phone\s+number|email|address|postal\s+code)`),
		weight:    0.6,
		rationale: "Contact information",
	},
	{
		id:        "trust_business_hours",
		pattern:   regexp.MustCompile(`(?i)(?:business\s+hours|opening\s+times|trading\s+hours)`),
		weight:    0.6,
		rationale: "Business hours",
	},
	{
		id:        "trust_customer_service",
		pattern:   regexp.MustCompile(`(?i)(?:customer\s+service|support|help\s+desk)`),
		weight:    0.6,
		rationale: "Customer service",
	},
	{
		id:        "trust_security_badges",
		pattern:   regexp.MustCompile(`(?i)(?:secure\s+payment|ssl\s+certificate|encryption)`),
		weight:    0.6,
		rationale: "Security badges",
	},
}

// TrustDetector looks for legitimate-business indicators. It is the only
// extractor whose score is subtracted from the aggregate: trust evidence
// makes scam evidence less credible.
type TrustDetector struct{}

func NewTrustDetector() *TrustDetector {
	return &TrustDetector{}
}

// Detect returns one trust finding per matched indicator plus the summed
// trust score. Strong indicators carry high severity so the aggregator can
// count them for the demotion rule.
func (d *TrustDetector) Detect(text string) ([]models.Finding, float64) {
	var findings []models.Finding
	var score float64

	for _, ind := range trustIndicators {
		match := ind.pattern.FindString(text)
		if match == "" {
			continue
		}
		severity := models.SeverityMed
		if ind.strong {
			severity = models.SeverityHigh
		}
		score += ind.weight
		findings = append(findings, models.Finding{
			ID:        ind.id,
			Category:  models.CategoryTrust,
			Severity:  severity,
			Weight:    ind.weight,
			Rationale: ind.rationale,
			Source:    "trust",
			Evidence:  match,
		})
	}

	return findings, score
}
