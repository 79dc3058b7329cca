package services

import (
	"strings"

	"pagesentry/internal/domain/models"
)

// PatternMatcher scans page text against the knowledge store's compiled
// rules. It holds no state of its own; every call reads one store snapshot.
type PatternMatcher struct {
	store   *KnowledgeStore
	weights Weights
}

func NewPatternMatcher(store *KnowledgeStore, weights Weights) *PatternMatcher {
	return &PatternMatcher{store: store, weights: weights}
}

// Match tests every compiled rule against the text and returns one finding
// per matched rule id plus the summed pattern score. Rules whitelisted for
// the page's domain are skipped before matching. A rule matching in several
// places still yields exactly one finding.
func (m *PatternMatcher) Match(text, domain string, wl models.Whitelist) ([]models.Finding, float64) {
	lowered := strings.ToLower(text)

	var findings []models.Finding
	var score float64

	for _, cr := range m.store.Rules() {
		if wl.HasPattern(domain, cr.ID) {
			continue
		}
		loc := cr.Regexp.FindStringIndex(lowered)
		if loc == nil {
			continue
		}
		weight := m.weights.SeverityWeight(cr.Rule.Severity)
		score += weight
		findings = append(findings, models.Finding{
			ID:        cr.ID,
			Category:  models.CategoryPattern,
			Severity:  cr.Rule.Severity,
			Weight:    weight,
			Rationale: cr.Rule.Why,
			Source:    cr.Rule.Source,
			Evidence:  lowered[loc[0]:loc[1]],
		})
	}

	return findings, score
}
