package services

import (
	"math"
	"testing"

	"pagesentry/internal/domain/models"
)

func TestTrustDetectorIndicators(t *testing.T) {
	detector := NewTrustDetector()

	tests := []struct {
		name     string
		text     string
		wantID   string
		weight   float64
		severity models.Severity
	}{
		{name: "https", text: "Visit https://shop.example.com/ today", wantID: "trust_https", weight: 0.8, severity: models.SeverityHigh},
		{name: "professional pages", text: "See our privacy policy for details", wantID: "trust_professional_pages", weight: 0.8, severity: models.SeverityHigh},
		{name: "established", text: "Serving Melbourne since 1987", wantID: "trust_established", weight: 0.8, severity: models.SeverityHigh},
		{name: "abn", text: "ABN 12 345 678 901", wantID: "trust_abn", weight: 1.0, severity: models.SeverityHigh},
		{name: "acn", text: "ACN 123 456 789", wantID: "trust_acn", weight: 1.0, severity: models.SeverityHigh},
		{name: "contact info", text: "Our phone number is listed below", wantID: "trust_contact_info", weight: 0.6, severity: models.SeverityMed},
		{name: "business hours", text: "Trading hours: 9am to 5pm", wantID: "trust_business_hours", weight: 0.6, severity: models.SeverityMed},
		{name: "security badges", text: "Secure payment with all major cards", wantID: "trust_security_badges", weight: 0.6, severity: models.SeverityMed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, _ := detector.Detect(tt.text)

			var match *models.Finding
			for i := range findings {
				if findings[i].ID == tt.wantID {
					match = &findings[i]
				}
			}
			if match == nil {
				t.Fatalf("indicator %s not triggered by %q", tt.wantID, tt.text)
			}
			if match.Weight != tt.weight {
				t.Errorf("Weight = %.2f, want %.2f", match.Weight, tt.weight)
			}
			if match.Severity != tt.severity {
				t.Errorf("Severity = %s, want %s", match.Severity, tt.severity)
			}
			if match.Category != models.CategoryTrust {
				t.Errorf("Category = %s, want trust", match.Category)
			}
		})
	}
}

func TestTrustDetectorScoreSums(t *testing.T) {
	detector := NewTrustDetector()

	findings, score := detector.Detect("ABN 12 345 678 901. See our privacy policy. Trading hours: 9-5.")

	if len(findings) != 3 {
		t.Fatalf("len(findings) = %d, want 3", len(findings))
	}
	if math.Abs(score-2.4) > 1e-9 {
		t.Errorf("score = %.2f, want 2.4 (1.0 + 0.8 + 0.6)", score)
	}
}

func TestTrustDetectorNoSignals(t *testing.T) {
	detector := NewTrustDetector()

	findings, score := detector.Detect("Win big prizes today, act fast!")

	if len(findings) != 0 || score != 0 {
		t.Errorf("text without trust markers should score 0, got %d findings score %.2f", len(findings), score)
	}
}
