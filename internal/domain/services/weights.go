package services

import (
	"pagesentry/internal/config"
	"pagesentry/internal/domain/models"
)

// Weights is the single calibration table for the scoring engine. Every
// constant that shapes a verdict lives here so recalibration touches one
// place and tests can assert against named values instead of inline literals.
type Weights struct {
	// Per-severity weight of one pattern-rule finding.
	SeverityHigh float64
	SeverityMed  float64
	SeverityLow  float64

	// Category weights applied when combining partial scores. Trust is
	// subtracted, not added.
	CategoryPattern    float64
	CategoryBehavioral float64
	CategoryDomain     float64
	CategoryContext    float64
	CategoryTrust      float64

	// Normalization: riskScore = clamp((raw + Offset) / Divisor, 0, 1).
	Offset  float64
	Divisor float64

	// Risk level thresholds, evaluated high to low.
	ThresholdRed    float64
	ThresholdAmber  float64
	ThresholdYellow float64

	// Override triggers.
	HighFindingsForRed   int     // >= this many high-severity findings forces red
	SingleHighAmberScore float64 // one high finding plus score above this forces amber
	StrongTrustForDemote int     // >= this many strong trust signals demotes one level

	// A hostname only contributes to the domain score when its clamped risk
	// exceeds this floor; one weak signal alone is never enough.
	DomainRiskFloor float64

	// Per-heuristic increments for the domain analyzer.
	DomainTLDRisk       float64
	DomainIPRisk        float64
	DomainShortenerRisk float64
	DomainBrandRisk     float64

	// Context analyzer triggers.
	GrammarErrorLimit     int
	GrammarErrorRisk      float64
	ProfessionalFloor     float64
	UnprofessionalRisk    float64

	// Confidence estimation.
	ConfidenceBase       float64
	ConfidencePattern    float64
	ConfidenceBehavioral float64
	ConfidenceDomain     float64
	ConfidenceContext    float64
	ConfidenceMin        float64
	ConfidenceMax        float64

	// Per-severity confidence gate used by the suppression layer.
	GateHigh float64
	GateMed  float64
	GateLow  float64

	// Suppression confidence mix: rule hits, context, URL blocklist, and
	// caller feedback, as fractions of the 0..1 range.
	GateRuleShare     float64
	GateRulePerHit    float64
	GateContextShare  float64
	GateURLShare      float64
	GateFeedbackShare float64
}

// DefaultWeights returns the calibrated production table.
func DefaultWeights() Weights {
	return Weights{
		SeverityHigh: 0.4,
		SeverityMed:  0.2,
		SeverityLow:  0.1,

		CategoryPattern:    0.3,
		CategoryBehavioral: 0.2,
		CategoryDomain:     0.2,
		CategoryContext:    0.1,
		CategoryTrust:      1.5,

		Offset:  0.5,
		Divisor: 1.5,

		ThresholdRed:    0.8,
		ThresholdAmber:  0.6,
		ThresholdYellow: 0.4,

		HighFindingsForRed:   3,
		SingleHighAmberScore: 0.6,
		StrongTrustForDemote: 2,

		DomainRiskFloor: 0.7,

		DomainTLDRisk:       0.4,
		DomainIPRisk:        0.6,
		DomainShortenerRisk: 0.5,
		DomainBrandRisk:     0.6,

		GrammarErrorLimit:  10,
		GrammarErrorRisk:   0.2,
		ProfessionalFloor:  0.2,
		UnprofessionalRisk: 0.3,

		ConfidenceBase:       0.5,
		ConfidencePattern:    0.2,
		ConfidenceBehavioral: 0.15,
		ConfidenceDomain:     0.1,
		ConfidenceContext:    0.05,
		ConfidenceMin:        0.05,
		ConfidenceMax:        0.95,

		GateHigh: 0.8,
		GateMed:  0.6,
		GateLow:  0.4,

		GateRuleShare:     0.4,
		GateRulePerHit:    0.2,
		GateContextShare:  0.3,
		GateURLShare:      0.2,
		GateFeedbackShare: 0.1,
	}
}

// WeightsFromConfig overlays non-zero config values onto the defaults.
func WeightsFromConfig(cfg config.ScoringConfig) Weights {
	w := DefaultWeights()

	if cfg.SeverityWeights.High > 0 {
		w.SeverityHigh = cfg.SeverityWeights.High
	}
	if cfg.SeverityWeights.Med > 0 {
		w.SeverityMed = cfg.SeverityWeights.Med
	}
	if cfg.SeverityWeights.Low > 0 {
		w.SeverityLow = cfg.SeverityWeights.Low
	}
	if cfg.CategoryWeights.Pattern > 0 {
		w.CategoryPattern = cfg.CategoryWeights.Pattern
	}
	if cfg.CategoryWeights.Behavioral > 0 {
		w.CategoryBehavioral = cfg.CategoryWeights.Behavioral
	}
	if cfg.CategoryWeights.Domain > 0 {
		w.CategoryDomain = cfg.CategoryWeights.Domain
	}
	if cfg.CategoryWeights.Context > 0 {
		w.CategoryContext = cfg.CategoryWeights.Context
	}
	if cfg.CategoryWeights.Trust > 0 {
		w.CategoryTrust = cfg.CategoryWeights.Trust
	}
	if cfg.LevelThresholds.Red > 0 {
		w.ThresholdRed = cfg.LevelThresholds.Red
	}
	if cfg.LevelThresholds.Amber > 0 {
		w.ThresholdAmber = cfg.LevelThresholds.Amber
	}
	if cfg.LevelThresholds.Yellow > 0 {
		w.ThresholdYellow = cfg.LevelThresholds.Yellow
	}
	if cfg.DomainRiskFloor > 0 {
		w.DomainRiskFloor = cfg.DomainRiskFloor
	}
	if cfg.ConfidenceGate.High > 0 {
		w.GateHigh = cfg.ConfidenceGate.High
	}
	if cfg.ConfidenceGate.Med > 0 {
		w.GateMed = cfg.ConfidenceGate.Med
	}
	if cfg.ConfidenceGate.Low > 0 {
		w.GateLow = cfg.ConfidenceGate.Low
	}

	return w
}

// SeverityWeight maps a rule severity to its finding weight.
func (w Weights) SeverityWeight(s models.Severity) float64 {
	switch s {
	case models.SeverityHigh:
		return w.SeverityHigh
	case models.SeverityMed:
		return w.SeverityMed
	default:
		return w.SeverityLow
	}
}

// Gate returns the confidence threshold a finding of the given severity must
// clear before it is surfaced.
func (w Weights) Gate(s models.Severity) float64 {
	switch s {
	case models.SeverityHigh:
		return w.GateHigh
	case models.SeverityMed:
		return w.GateMed
	default:
		return w.GateLow
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
