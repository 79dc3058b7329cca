package services

import (
	"math"
	"strings"
	"testing"
)

func TestTextQualityMetrics(t *testing.T) {
	analyzer := NewContextAnalyzer(DefaultWeights())

	quality := analyzer.TextQuality("Dear customer your account needs attention. Click here to proceed. Congratulations you are selected.")

	if quality.GrammarErrors < 3 {
		t.Errorf("GrammarErrors = %d, want at least 3", quality.GrammarErrors)
	}
	if quality.SuspiciousPhrases != quality.GrammarErrors {
		t.Errorf("SuspiciousPhrases = %d, want equal to GrammarErrors %d", quality.SuspiciousPhrases, quality.GrammarErrors)
	}
}

func TestTextQualityProfessionalScore(t *testing.T) {
	analyzer := NewContextAnalyzer(DefaultWeights())

	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "professional vocabulary",
			text: "We are a certified, licensed and registered business. Contact our support team during business hours. See our privacy policy.",
			want: 0.6,
		},
		{
			name: "unprofessional outweighs",
			text: "Act now! Urgent! Free money, guaranteed returns, get rich quick!",
			want: 0,
		},
		{
			name: "neutral text",
			text: "The weather today is mild with light winds.",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quality := analyzer.TextQuality(tt.text)
			if math.Abs(quality.ProfessionalScore-tt.want) > 1e-9 {
				t.Errorf("ProfessionalScore = %.2f, want %.2f", quality.ProfessionalScore, tt.want)
			}
		})
	}
}

func TestContextAnalyzeTriggers(t *testing.T) {
	analyzer := NewContextAnalyzer(DefaultWeights())

	// Eleven low-quality phrases push GrammarErrors past the limit of 10, and
	// the text carries no professional vocabulary, so both findings fire.
	text := strings.Repeat("click here ", 11)
	findings, quality, score := analyzer.Analyze(text)

	if quality.GrammarErrors != 11 {
		t.Fatalf("GrammarErrors = %d, want 11", quality.GrammarErrors)
	}
	if len(findings) != 2 {
		t.Fatalf("len(findings) = %d, want grammar and unprofessional findings", len(findings))
	}
	if math.Abs(score-0.5) > 1e-9 {
		t.Errorf("score = %.2f, want 0.5 (0.2 grammar + 0.3 unprofessional)", score)
	}
}

func TestContextAnalyzeProfessionalTextClean(t *testing.T) {
	analyzer := NewContextAnalyzer(DefaultWeights())

	findings, _, score := analyzer.Analyze(
		"Our established business is certified and licensed. Contact customer service during business hours.")

	if len(findings) != 0 || score != 0 {
		t.Errorf("professional text should produce no context findings, got %d score %.2f", len(findings), score)
	}
}
