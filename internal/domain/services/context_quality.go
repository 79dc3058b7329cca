package services

import (
	"regexp"
	"strings"

	"pagesentry/internal/domain/models"
)

// Low-quality phrasing patterns counted as grammar errors. Coarse substring
// heuristics, not NLP.
var grammarPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:your|you're)\s+(?:account|details|information)\s+(?:need|needs)\s+`),
	regexp.MustCompile(`(?i)\b(?:click\s+here|click\s+this|click\s+now)\s+`),
	regexp.MustCompile(`(?i)\b(?:dear\s+customer|valued\s+client)\s+`),
	regexp.MustCompile(`(?i)\b(?:congratulations|you\s+won|winner)\s+`),
}

var professionalTerms = []string{
	"established", "professional", "certified", "licensed", "registered",
	"contact", "support", "customer service", "business hours", "privacy policy",
}

var unprofessionalTerms = []string{
	"act now", "urgent", "immediate", "last chance", "don't miss out",
	"free money", "get rich quick", "guaranteed returns",
}

// TextQuality holds the sub-metrics computed by the context analyzer.
type TextQuality struct {
	GrammarErrors     int     `json:"grammar_errors"`
	ProfessionalScore float64 `json:"professional_score"`
	SuspiciousPhrases int     `json:"suspicious_phrases"`
}

// ContextAnalyzer grades the writing quality of the page text.
type ContextAnalyzer struct {
	weights Weights
}

func NewContextAnalyzer(weights Weights) *ContextAnalyzer {
	return &ContextAnalyzer{weights: weights}
}

// Analyze computes the text-quality sub-metrics and the context score they
// imply: heavy low-quality phrasing and an unprofessional vocabulary each add
// a fixed increment.
func (a *ContextAnalyzer) Analyze(text string) ([]models.Finding, TextQuality, float64) {
	quality := a.TextQuality(text)

	var findings []models.Finding
	var score float64

	if quality.GrammarErrors > a.weights.GrammarErrorLimit {
		score += a.weights.GrammarErrorRisk
		findings = append(findings, models.Finding{
			ID:        "context_grammar",
			Category:  models.CategoryContext,
			Severity:  models.SeverityLow,
			Weight:    a.weights.GrammarErrorRisk,
			Rationale: "Multiple grammar errors detected (common in scams)",
			Source:    "context",
		})
	}

	if quality.ProfessionalScore < a.weights.ProfessionalFloor {
		score += a.weights.UnprofessionalRisk
		findings = append(findings, models.Finding{
			ID:        "context_unprofessional",
			Category:  models.CategoryContext,
			Severity:  models.SeverityLow,
			Weight:    a.weights.UnprofessionalRisk,
			Rationale: "Unprofessional language patterns detected",
			Source:    "context",
		})
	}

	return findings, quality, score
}

// TextQuality counts low-quality phrasing hits and scores the professional
// vocabulary balance: max(0, (professional - unprofessional) / professional
// vocabulary size).
func (a *ContextAnalyzer) TextQuality(text string) TextQuality {
	quality := TextQuality{}

	for _, p := range grammarPatterns {
		n := len(p.FindAllStringIndex(text, -1))
		quality.GrammarErrors += n
		quality.SuspiciousPhrases += n
	}

	lower := strings.ToLower(text)
	professional := 0
	for _, term := range professionalTerms {
		if strings.Contains(lower, term) {
			professional++
		}
	}
	unprofessional := 0
	for _, term := range unprofessionalTerms {
		if strings.Contains(lower, term) {
			unprofessional++
		}
	}

	score := float64(professional-unprofessional) / float64(len(professionalTerms))
	if score < 0 {
		score = 0
	}
	quality.ProfessionalScore = score

	return quality
}
