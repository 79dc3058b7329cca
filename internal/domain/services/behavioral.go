package services

import (
	"regexp"

	"pagesentry/internal/domain/models"
)

// behavioralCategory is one fixed lexical detector. The five categories are
// independent of the rule corpus and never change at runtime.
type behavioralCategory struct {
	id        string
	pattern   *regexp.Regexp
	weight    float64
	rationale string
}

var behavioralCategories = []behavioralCategory{
	{
		id:        "urgency_pressure",
		pattern:   regexp.MustCompile(`(?i)(?:act\s+now|immediate|urgent|24\s*hours?|countdown|expires?|last\s+chance|final\s+warning|deadline)`),
		weight:    0.3,
		rationale: "False urgency to pressure quick decisions",
	},
	{
		id:        "social_engineering",
		pattern:   regexp.MustCompile(`(?i)(?:trust\s+me|i\s+promise|guaranteed|100%\s+safe|no\s+risk)`),
		weight:    0.2,
		rationale: "Social engineering tactics to build false trust",
	},
	{
		id:        "authority_impersonation",
		pattern:   regexp.MustCompile(`(?i)(?:police|government|ato|mygov|bank|microsoft|apple|google|netflix|amazon)`),
		weight:    0.4,
		rationale: "Impersonating trusted authorities or brands",
	},
	{
		id:        "payment_red_flags",
		pattern:   regexp.MustCompile(`(?i)(?:gift\s+cards?|bitcoin|crypto|western\s+union|money\s+gram|prepaid\s+cards?)`),
		weight:    0.5,
		rationale: "Suspicious payment methods commonly used in scams",
	},
	{
		id:        "threats_coercion",
		pattern:   regexp.MustCompile(`(?i)(?:legal\s+action|arrest|warrant|court|jail|fine|penalty|account\s+closed|access\s+lost)`),
		weight:    0.5,
		rationale: "Threats and coercion tactics",
	},
}

// BehavioralAnalyzer detects fixed lexical categories of manipulative
// language. A category contributes its full weight once no matter how many
// phrases match.
type BehavioralAnalyzer struct{}

func NewBehavioralAnalyzer() *BehavioralAnalyzer {
	return &BehavioralAnalyzer{}
}

// Analyze returns one finding per triggered category, carrying the first
// matched phrase as evidence, plus the summed behavioral score.
func (a *BehavioralAnalyzer) Analyze(text string) ([]models.Finding, float64) {
	var findings []models.Finding
	var score float64

	for _, cat := range behavioralCategories {
		match := cat.pattern.FindString(text)
		if match == "" {
			continue
		}
		score += cat.weight
		findings = append(findings, models.Finding{
			ID:        cat.id,
			Category:  models.CategoryBehavioral,
			Severity:  models.SeverityMed,
			Weight:    cat.weight,
			Rationale: cat.rationale,
			Source:    "behavioral",
			Evidence:  match,
		})
	}

	return findings, score
}
