package services

import (
	"pagesentry/internal/domain/models"
)

// GateInput carries the per-call context the confidence gate mixes into its
// verdict alongside the rule-hit count.
type GateInput struct {
	ContextScore float64
	URLScore     float64
	Feedback     float64
}

// SuppressionGate drops findings that are whitelisted or whose per-call
// confidence falls below the threshold for their severity class. It runs
// after aggregation and never changes the whole-result risk level.
type SuppressionGate struct {
	weights Weights
}

func NewSuppressionGate(weights Weights) *SuppressionGate {
	return &SuppressionGate{weights: weights}
}

// Filter applies both suppression mechanisms per finding: the whitelist
// first, then the confidence gate.
func (g *SuppressionGate) Filter(findings []models.Finding, domain string, wl models.Whitelist, input GateInput) []models.Finding {
	filtered := []models.Finding{}
	if wl.HasDomain(domain) {
		return filtered
	}

	for _, f := range findings {
		if wl.HasPattern(domain, f.ID) {
			continue
		}
		confidence := g.Confidence(1, input)
		if confidence < g.weights.Gate(f.Severity) {
			continue
		}
		filtered = append(filtered, f)
	}

	return filtered
}

// Confidence mixes rule hits (capped), context score, URL blocklist score,
// and caller feedback into one 0..1 value.
func (g *SuppressionGate) Confidence(hits int, input GateInput) float64 {
	w := g.weights

	ruleShare := float64(hits) * w.GateRulePerHit
	if ruleShare > w.GateRuleShare {
		ruleShare = w.GateRuleShare
	}

	confidence := ruleShare +
		input.ContextScore*w.GateContextShare +
		input.URLScore*w.GateURLShare +
		input.Feedback*w.GateFeedbackShare

	return clamp01(confidence)
}
