package services

import (
	"context"

	"pagesentry/internal/domain/models"
	"pagesentry/pkg/logger"
)

// WhitelistProvider supplies the suppression snapshot read once per analysis
// call. A provider error is treated as an empty whitelist, never as a failed
// analysis.
type WhitelistProvider interface {
	GetWhitelist(ctx context.Context) (models.Whitelist, error)
}

// AnalyzeRequest is the engine's input for one page.
type AnalyzeRequest struct {
	Text   string
	URLs   []string
	Domain string
	// Feedback is an optional caller-supplied prior in [0,1] fed into the
	// suppression confidence gate; zero means no feedback.
	Feedback float64
}

// Engine runs the full scoring pipeline: knowledge store lookup, the five
// extractors, aggregation, explanation generation, and suppression. Extractors
// are pure functions of the input, so concurrent Analyze calls share nothing
// but the store's read-only snapshot.
type Engine struct {
	store      *KnowledgeStore
	patterns   *PatternMatcher
	behavioral *BehavioralAnalyzer
	domains    *DomainAnalyzer
	context    *ContextAnalyzer
	trust      *TrustDetector
	whitelist  WhitelistProvider
	weights    Weights
	log        *logger.Logger
}

func NewEngine(store *KnowledgeStore, checker ReputationChecker, whitelist WhitelistProvider, weights Weights, log *logger.Logger) *Engine {
	return &Engine{
		store:      store,
		patterns:   NewPatternMatcher(store, weights),
		behavioral: NewBehavioralAnalyzer(),
		domains:    NewDomainAnalyzer(checker, weights),
		context:    NewContextAnalyzer(weights),
		trust:      NewTrustDetector(),
		whitelist:  whitelist,
		weights:    weights,
		log:        log.WithComponent("engine"),
	}
}

// Analyze produces the full verdict for one page. It never fails: storage
// errors degrade to an empty whitelist and an unhealthy knowledge store
// degrades to the pattern-only fallback.
func (e *Engine) Analyze(ctx context.Context, req AnalyzeRequest) *models.AnalysisResult {
	wl := e.snapshotWhitelist(ctx)

	if !e.store.Healthy() || e.store.Empty() {
		return e.analyzeDegraded(req, wl)
	}

	w := e.weights

	patternFindings, patternScore := e.patterns.Match(req.Text, req.Domain, wl)
	behavioralFindings, behavioralScore := e.behavioral.Analyze(req.Text)
	domainFindings, suspicious, domainScore := e.domains.Analyze(ctx, req.URLs)
	contextFindings, _, contextScore := e.context.Analyze(req.Text)
	trustFindings, trustScore := e.trust.Detect(req.Text)

	raw := w.CategoryPattern*patternScore +
		w.CategoryBehavioral*behavioralScore +
		w.CategoryDomain*domainScore +
		w.CategoryContext*contextScore -
		w.CategoryTrust*trustScore
	riskScore := clamp01((raw + w.Offset) / w.Divisor)

	findings := make([]models.Finding, 0, len(patternFindings)+len(behavioralFindings)+len(domainFindings)+len(contextFindings))
	findings = append(findings, patternFindings...)
	findings = append(findings, behavioralFindings...)
	findings = append(findings, domainFindings...)
	findings = append(findings, contextFindings...)

	highPatterns := countBySeverity(patternFindings, models.SeverityHigh)
	strongTrust := countBySeverity(trustFindings, models.SeverityHigh)

	level := e.riskLevel(riskScore, highPatterns, strongTrust)
	confidence := e.confidence(patternFindings, behavioralFindings, domainScore, contextScore)

	result := &models.AnalysisResult{
		RiskScore:    riskScore,
		RiskLevel:    level,
		Confidence:   confidence,
		Findings:     findings,
		TrustSignals: append([]models.Finding{}, trustFindings...),
		CategoryScores: models.CategoryScores{
			Pattern:    patternScore,
			Behavioral: behavioralScore,
			Domain:     domainScore,
			Context:    contextScore,
		},
	}
	result.Explanations = buildExplanations(result, behavioralScore, suspicious, contextScore)
	result.Recommendations = buildRecommendations(result, suspicious)

	if result.TrustSignals == nil {
		result.TrustSignals = []models.Finding{}
	}
	if result.Findings == nil {
		result.Findings = []models.Finding{}
	}
	return result
}

// AnalyzeFiltered returns only the findings that survive both suppression
// mechanisms, for callers that highlight evidence rather than show a verdict.
func (e *Engine) AnalyzeFiltered(ctx context.Context, req AnalyzeRequest) []models.Finding {
	wl := e.snapshotWhitelist(ctx)
	if wl.HasDomain(req.Domain) {
		return []models.Finding{}
	}

	result := e.Analyze(ctx, req)
	gate := NewSuppressionGate(e.weights)
	return gate.Filter(result.Findings, req.Domain, wl, GateInput{
		ContextScore: result.CategoryScores.Context,
		URLScore:     clamp01(result.CategoryScores.Domain),
		Feedback:     req.Feedback,
	})
}

// analyzeDegraded is the fallback when the rule corpus is missing: pattern
// scan only, low confidence, never worse than yellow.
func (e *Engine) analyzeDegraded(req AnalyzeRequest, wl models.Whitelist) *models.AnalysisResult {
	findings, _ := e.patterns.Match(req.Text, req.Domain, wl)
	if findings == nil {
		findings = []models.Finding{}
	}

	confidence := 0.1
	level := models.RiskLevelGreen
	if len(findings) > 0 {
		confidence = 0.4
		level = models.RiskLevelYellow
	}

	explanations := make([]string, 0, len(findings)+1)
	explanations = append(explanations, "Degraded mode: rule corpus unavailable, pattern scan only with reduced detection capability")
	for _, f := range findings {
		explanations = append(explanations, "["+f.Source+"] "+f.Rationale)
	}

	e.log.Warn().Int("hits", len(findings)).Msg("Analysis ran in degraded mode")

	return &models.AnalysisResult{
		RiskScore:       0,
		RiskLevel:       level,
		Confidence:      confidence,
		Findings:        findings,
		TrustSignals:    []models.Finding{},
		Explanations:    explanations,
		Recommendations: []string{"Basic detection only - enhanced analysis is unavailable until the rule corpus loads"},
		Degraded:        true,
	}
}

// riskLevel maps the score to a level, then applies the overrides in order:
// many high findings force red, a single high finding with an elevated score
// forces at least amber, and strong trust evidence demotes one step last.
func (e *Engine) riskLevel(score float64, highPatterns, strongTrust int) models.RiskLevel {
	w := e.weights

	level := models.RiskLevelGreen
	switch {
	case score > w.ThresholdRed:
		level = models.RiskLevelRed
	case score > w.ThresholdAmber:
		level = models.RiskLevelAmber
	case score > w.ThresholdYellow:
		level = models.RiskLevelYellow
	}

	if highPatterns >= w.HighFindingsForRed {
		level = models.RiskLevelRed
	} else if highPatterns == 1 && score > w.SingleHighAmberScore {
		if level != models.RiskLevelRed {
			level = models.RiskLevelAmber
		}
	}

	if strongTrust >= w.StrongTrustForDemote {
		level = level.Demote()
	}

	return level
}

func (e *Engine) confidence(patternFindings, behavioralFindings []models.Finding, domainScore, contextScore float64) float64 {
	w := e.weights

	confidence := w.ConfidenceBase
	if avg := averageWeight(patternFindings); avg > 0 {
		confidence += avg * w.ConfidencePattern
	}
	if avg := averageWeight(behavioralFindings); avg > 0 {
		confidence += avg * w.ConfidenceBehavioral
	}
	confidence += domainScore * w.ConfidenceDomain
	confidence += contextScore * w.ConfidenceContext

	return clamp(confidence, w.ConfidenceMin, w.ConfidenceMax)
}

func (e *Engine) snapshotWhitelist(ctx context.Context) models.Whitelist {
	if e.whitelist == nil {
		return models.EmptyWhitelist()
	}
	wl, err := e.whitelist.GetWhitelist(ctx)
	if err != nil {
		e.log.WithError(err).Warn().Msg("Whitelist unavailable, analyzing without suppressions")
		return models.EmptyWhitelist()
	}
	return wl
}

func countBySeverity(findings []models.Finding, severity models.Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

func averageWeight(findings []models.Finding) float64 {
	if len(findings) == 0 {
		return 0
	}
	var sum float64
	for _, f := range findings {
		sum += f.Weight
	}
	return sum / float64(len(findings))
}
