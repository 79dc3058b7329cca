package models

// Severity classifies how strong an indicator rule is on its own.
type Severity string

const (
	SeverityHigh Severity = "high"
	SeverityMed  Severity = "med"
	SeverityLow  Severity = "low"
)

// Rank orders severities for comparisons; unknown severities rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMed:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// RiskLevel is the four-valued verdict shown to users.
type RiskLevel string

const (
	RiskLevelGreen  RiskLevel = "green"
	RiskLevelYellow RiskLevel = "yellow"
	RiskLevelAmber  RiskLevel = "amber"
	RiskLevelRed    RiskLevel = "red"
)

// Demote steps a level down one notch (red -> amber -> yellow -> green).
func (l RiskLevel) Demote() RiskLevel {
	switch l {
	case RiskLevelRed:
		return RiskLevelAmber
	case RiskLevelAmber:
		return RiskLevelYellow
	case RiskLevelYellow:
		return RiskLevelGreen
	}
	return RiskLevelGreen
}

// FindingCategory names the extractor that produced a finding.
type FindingCategory string

const (
	CategoryPattern    FindingCategory = "pattern"
	CategoryBehavioral FindingCategory = "behavioral"
	CategoryDomain     FindingCategory = "domain"
	CategoryContext    FindingCategory = "context"
	CategoryTrust      FindingCategory = "trust"
)

// Finding is one piece of evidence produced by an extractor. Findings are
// ephemeral: they belong to the analysis call that produced them.
type Finding struct {
	ID        string          `json:"id"`
	Category  FindingCategory `json:"category"`
	Severity  Severity        `json:"severity"`
	Weight    float64         `json:"weight"`
	Rationale string          `json:"rationale"`
	Source    string          `json:"source"`
	Evidence  string          `json:"evidence,omitempty"`
}

// CategoryScores holds the per-extractor partial scores before aggregation.
type CategoryScores struct {
	Pattern    float64 `json:"pattern"`
	Behavioral float64 `json:"behavioral"`
	Domain     float64 `json:"domain"`
	Context    float64 `json:"context"`
}

// AnalysisResult is the engine's sole output. Every field is populated on
// every call; empty slices are encoded as [] rather than omitted so callers
// never have to null-check.
type AnalysisResult struct {
	RiskScore       float64        `json:"risk_score"`
	RiskLevel       RiskLevel      `json:"risk_level"`
	Confidence      float64        `json:"confidence"`
	Findings        []Finding      `json:"findings"`
	TrustSignals    []Finding      `json:"trust_signals"`
	CategoryScores  CategoryScores `json:"category_scores"`
	Explanations    []string       `json:"explanations"`
	Recommendations []string       `json:"recommendations"`
	Degraded        bool           `json:"degraded"`
}

// SuspiciousDomain reports one hostname flagged by the domain analyzer.
type SuspiciousDomain struct {
	Domain  string   `json:"domain"`
	Risk    float64  `json:"risk"`
	Reasons []string `json:"reasons"`
}

// DomainReputation is the verdict for a single hostname, either computed
// locally or served from the threat-feed cache.
type DomainReputation struct {
	Risk    float64  `json:"risk"`
	Reasons []string `json:"reasons"`
}
