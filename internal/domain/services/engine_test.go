package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pagesentry/internal/domain/models"
	"pagesentry/pkg/logger"
)

type stubSource struct {
	indicators []models.Rule
	alerts     []models.Rule
	err        error
}

func (s *stubSource) IndicatorRules(ctx context.Context) ([]models.Rule, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.indicators, nil
}

func (s *stubSource) AlertRules(ctx context.Context) ([]models.Rule, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.alerts, nil
}

type stubChecker struct {
	risks map[string]float64
}

func (c *stubChecker) CheckDomainReputation(ctx context.Context, domain string) (models.DomainReputation, error) {
	risk, ok := c.risks[domain]
	if !ok {
		return models.DomainReputation{}, nil
	}
	return models.DomainReputation{
		Risk:    risk,
		Reasons: []string{"Listed in test threat feed"},
	}, nil
}

type stubWhitelist struct {
	wl  models.Whitelist
	err error
}

func (p *stubWhitelist) GetWhitelist(ctx context.Context) (models.Whitelist, error) {
	if p.err != nil {
		return models.EmptyWhitelist(), p.err
	}
	return p.wl, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func testRules() []models.Rule {
	return []models.Rule{
		{ID: "gift-card-payment", Pattern: `gift\s+cards?`, Severity: models.SeverityHigh, Why: "Gift cards are a scammer payment method", Source: "indicator"},
		{ID: "account-suspension", Pattern: `account.{0,40}suspend`, Severity: models.SeverityHigh, Why: "Fake account suspension threat", Source: "indicator"},
		{ID: "verify-identity-link", Pattern: `verify\s+your\s+identity`, Severity: models.SeverityHigh, Why: "Identity verification lure", Source: "indicator"},
		{ID: "urgent-action", Pattern: `urgent`, Severity: models.SeverityMed, Why: "Urgency pressure", Source: "indicator"},
	}
}

func newTestEngine(t *testing.T, source RuleSource, checker ReputationChecker, wl WhitelistProvider) (*Engine, *KnowledgeStore) {
	t.Helper()
	log := testLogger()
	store := NewKnowledgeStore(source, log)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("store.Load() error = %v", err)
	}
	return NewEngine(store, checker, wl, DefaultWeights(), log), store
}

func TestAnalyzeScamPage(t *testing.T) {
	checker := &stubChecker{risks: map[string]float64{"totally-legit-rewards.tk": 0.5}}
	engine, _ := newTestEngine(t, &stubSource{indicators: testRules()}, checker, nil)

	result := engine.Analyze(context.Background(), AnalyzeRequest{
		Text:   "URGENT: your bank account will be suspended. Buy gift cards now to keep access.",
		URLs:   []string{"http://totally-legit-rewards.tk/claim"},
		Domain: "totally-legit-rewards.tk",
	})

	if result.Degraded {
		t.Fatal("expected full analysis, got degraded")
	}
	if result.RiskLevel != models.RiskLevelRed && result.RiskLevel != models.RiskLevelAmber {
		t.Errorf("RiskLevel = %s, want red or amber", result.RiskLevel)
	}
	if result.RiskScore <= 0.6 {
		t.Errorf("RiskScore = %.3f, want > 0.6", result.RiskScore)
	}

	found := map[string]bool{}
	for _, f := range result.Findings {
		found[f.ID] = true
	}
	for _, id := range []string{"gift-card-payment", "account-suspension", "urgent-action", "domain:totally-legit-rewards.tk"} {
		if !found[id] {
			t.Errorf("missing expected finding %q", id)
		}
	}
	if len(result.Explanations) == 0 {
		t.Error("expected explanations for a flagged page")
	}
	if len(result.Recommendations) == 0 {
		t.Error("expected recommendations for a flagged page")
	}
}

func TestAnalyzeTrustHeavyPage(t *testing.T) {
	engine, _ := newTestEngine(t, &stubSource{indicators: testRules()}, nil, nil)

	result := engine.Analyze(context.Background(), AnalyzeRequest{
		Text: "Contact Us | About Us | Privacy Policy. Established since 1995. " +
			"ABN 12 345 678 901. Customer service available during business hours. " +
			"Visit https://example.com.au/ for our registered office address.",
		Domain: "example.com.au",
	})

	if result.RiskLevel != models.RiskLevelGreen {
		t.Errorf("RiskLevel = %s, want green", result.RiskLevel)
	}
	if result.RiskScore != 0 {
		t.Errorf("RiskScore = %.3f, want 0 for a trust-dominated page", result.RiskScore)
	}
	if len(result.TrustSignals) < 4 {
		t.Errorf("TrustSignals = %d, want at least 4", len(result.TrustSignals))
	}
}

func TestAnalyzeDegradedNoRules(t *testing.T) {
	log := testLogger()
	store := NewKnowledgeStore(&stubSource{err: errors.New("corpus offline")}, log)
	if err := store.Load(context.Background()); err == nil {
		t.Fatal("store.Load() expected error")
	}
	engine := NewEngine(store, nil, nil, DefaultWeights(), log)

	result := engine.Analyze(context.Background(), AnalyzeRequest{
		Text: "urgent gift cards needed immediately",
	})

	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	if result.RiskLevel != models.RiskLevelGreen {
		t.Errorf("RiskLevel = %s, want green with no rule hits", result.RiskLevel)
	}
	if result.Confidence != 0.1 {
		t.Errorf("Confidence = %.2f, want 0.1", result.Confidence)
	}
	if len(result.Explanations) == 0 || !strings.HasPrefix(result.Explanations[0], "Degraded mode") {
		t.Errorf("first explanation should announce degraded mode, got %v", result.Explanations)
	}
}

func TestAnalyzeDegradedStaleRules(t *testing.T) {
	log := testLogger()
	source := &stubSource{indicators: testRules()}
	store := NewKnowledgeStore(source, log)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("store.Load() error = %v", err)
	}

	// Simulate a failed refresh: the previous rules stay usable but the store
	// reports unhealthy, so analysis falls back to the pattern-only scan.
	source.err = errors.New("corpus offline")
	if err := store.Load(context.Background()); err == nil {
		t.Fatal("store.Load() expected error")
	}

	engine := NewEngine(store, nil, nil, DefaultWeights(), log)
	result := engine.Analyze(context.Background(), AnalyzeRequest{
		Text: "please buy gift cards urgently",
	})

	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	if len(result.Findings) == 0 {
		t.Fatal("expected pattern hits from the retained rule set")
	}
	if result.Confidence != 0.4 {
		t.Errorf("Confidence = %.2f, want 0.4 with hits", result.Confidence)
	}
	if result.RiskLevel != models.RiskLevelYellow {
		t.Errorf("RiskLevel = %s, want yellow", result.RiskLevel)
	}
}

func TestAnalyzeHighFindingsForceRed(t *testing.T) {
	engine, _ := newTestEngine(t, &stubSource{indicators: testRules()}, nil, nil)

	result := engine.Analyze(context.Background(), AnalyzeRequest{
		Text: "verify your identity or your account will be suspended, pay with gift cards",
	})

	high := 0
	for _, f := range result.Findings {
		if f.Category == models.CategoryPattern && f.Severity == models.SeverityHigh {
			high++
		}
	}
	if high < 3 {
		t.Fatalf("test text should trigger 3 high rules, got %d", high)
	}
	if result.RiskLevel != models.RiskLevelRed {
		t.Errorf("RiskLevel = %s, want red with %d high findings", result.RiskLevel, high)
	}
}

func TestAnalyzeTrustDemotionAppliedLast(t *testing.T) {
	engine, _ := newTestEngine(t, &stubSource{indicators: testRules()}, nil, nil)

	// Three high pattern hits force red; two or more strong trust signals then
	// demote exactly one step, so the worst a trust-heavy page can be is amber.
	result := engine.Analyze(context.Background(), AnalyzeRequest{
		Text: "verify your identity or your account will be suspended, pay with gift cards. " +
			"Contact Us | Privacy Policy. Established since 1995.",
	})

	strong := 0
	for _, f := range result.TrustSignals {
		if f.Severity == models.SeverityHigh {
			strong++
		}
	}
	if strong < 2 {
		t.Fatalf("test text should trigger 2 strong trust signals, got %d", strong)
	}
	if result.RiskLevel != models.RiskLevelAmber {
		t.Errorf("RiskLevel = %s, want amber (red demoted once)", result.RiskLevel)
	}
}

func TestAnalyzeScoreClampedOnAdversarialInput(t *testing.T) {
	engine, _ := newTestEngine(t, &stubSource{indicators: testRules()}, nil, nil)

	text := strings.Repeat("urgent gift cards verify your identity account suspended bitcoin police arrest ", 500)
	result := engine.Analyze(context.Background(), AnalyzeRequest{Text: text})

	if result.RiskScore < 0 || result.RiskScore > 1 {
		t.Errorf("RiskScore = %.3f, want within [0,1]", result.RiskScore)
	}
	if result.Confidence < 0.05 || result.Confidence > 0.95 {
		t.Errorf("Confidence = %.3f, want within [0.05,0.95]", result.Confidence)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	engine, _ := newTestEngine(t, &stubSource{indicators: testRules()}, nil, nil)

	req := AnalyzeRequest{
		Text: "urgent: verify your identity with gift cards",
		URLs: []string{"http://bit.ly/abc", "http://192.168.0.1/login"},
	}

	first := engine.Analyze(context.Background(), req)
	second := engine.Analyze(context.Background(), req)

	if first.RiskScore != second.RiskScore {
		t.Errorf("RiskScore differs across identical calls: %.3f vs %.3f", first.RiskScore, second.RiskScore)
	}
	if first.RiskLevel != second.RiskLevel {
		t.Errorf("RiskLevel differs: %s vs %s", first.RiskLevel, second.RiskLevel)
	}
	if len(first.Findings) != len(second.Findings) {
		t.Errorf("finding count differs: %d vs %d", len(first.Findings), len(second.Findings))
	}
}

func TestAnalyzeMonotonicInRules(t *testing.T) {
	req := AnalyzeRequest{Text: "please wire the overdue invoice today"}

	base, _ := newTestEngine(t, &stubSource{indicators: testRules()}, nil, nil)
	before := base.Analyze(context.Background(), req)

	extra := append(testRules(), models.Rule{
		ID: "overdue-invoice", Pattern: `overdue\s+invoice`, Severity: models.SeverityHigh,
		Why: "Overdue invoice pressure", Source: "indicator",
	})
	grown, _ := newTestEngine(t, &stubSource{indicators: extra}, nil, nil)
	after := grown.Analyze(context.Background(), req)

	if after.RiskScore < before.RiskScore {
		t.Errorf("adding a matching high rule lowered the score: %.3f -> %.3f", before.RiskScore, after.RiskScore)
	}
}

func TestAnalyzeWhitelistedPatternSkipped(t *testing.T) {
	wl := models.EmptyWhitelist()
	wl.Patterns["urgent-action"] = true
	engine, _ := newTestEngine(t, &stubSource{indicators: testRules()}, nil, &stubWhitelist{wl: wl})

	result := engine.Analyze(context.Background(), AnalyzeRequest{Text: "urgent news today"})

	for _, f := range result.Findings {
		if f.ID == "urgent-action" {
			t.Fatal("whitelisted pattern should be skipped at match time")
		}
	}
}

func TestAnalyzeWhitelistErrorIgnored(t *testing.T) {
	engine, _ := newTestEngine(t, &stubSource{indicators: testRules()}, nil, &stubWhitelist{err: errors.New("redis down")})

	result := engine.Analyze(context.Background(), AnalyzeRequest{Text: "urgent news today"})

	if result.Degraded {
		t.Error("whitelist failure must not degrade analysis")
	}
	found := false
	for _, f := range result.Findings {
		if f.ID == "urgent-action" {
			found = true
		}
	}
	if !found {
		t.Error("expected urgent-action finding when no whitelist applies")
	}
}

func TestAnalyzeFilteredWhitelistedDomain(t *testing.T) {
	wl := models.EmptyWhitelist()
	wl.Domains["trusted.example.com"] = true
	engine, _ := newTestEngine(t, &stubSource{indicators: testRules()}, nil, &stubWhitelist{wl: wl})

	findings := engine.AnalyzeFiltered(context.Background(), AnalyzeRequest{
		Text:   "urgent: buy gift cards to verify your identity",
		Domain: "trusted.example.com",
	})

	if len(findings) != 0 {
		t.Errorf("whitelisted domain should suppress everything, got %d findings", len(findings))
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	engine, _ := newTestEngine(t, &stubSource{indicators: testRules()}, nil, nil)

	result := engine.Analyze(context.Background(), AnalyzeRequest{})

	if result.RiskLevel != models.RiskLevelGreen {
		t.Errorf("RiskLevel = %s, want green for empty input", result.RiskLevel)
	}
	if result.Findings == nil || result.TrustSignals == nil {
		t.Error("result slices must be non-nil even when empty")
	}
}
