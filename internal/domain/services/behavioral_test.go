package services

import (
	"math"
	"testing"

	"pagesentry/internal/domain/models"
)

func TestBehavioralCategories(t *testing.T) {
	analyzer := NewBehavioralAnalyzer()

	tests := []struct {
		name   string
		text   string
		wantID string
		weight float64
	}{
		{name: "urgency", text: "Act now, this offer expires in 24 hours", wantID: "urgency_pressure", weight: 0.3},
		{name: "social engineering", text: "Trust me, this investment is 100% safe", wantID: "social_engineering", weight: 0.2},
		{name: "authority", text: "This is the ATO calling about your tax", wantID: "authority_impersonation", weight: 0.4},
		{name: "payment", text: "Please pay the fee in gift cards", wantID: "payment_red_flags", weight: 0.5},
		{name: "threats", text: "A warrant has been issued for your arrest", wantID: "threats_coercion", weight: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, score := analyzer.Analyze(tt.text)

			var match *models.Finding
			for i := range findings {
				if findings[i].ID == tt.wantID {
					match = &findings[i]
				}
			}
			if match == nil {
				t.Fatalf("category %s not triggered by %q", tt.wantID, tt.text)
			}
			if match.Weight != tt.weight {
				t.Errorf("Weight = %.2f, want %.2f", match.Weight, tt.weight)
			}
			if match.Evidence == "" {
				t.Error("finding should carry the matched phrase as evidence")
			}
			if score < tt.weight {
				t.Errorf("score = %.2f, want at least the category weight %.2f", score, tt.weight)
			}
		})
	}
}

func TestBehavioralCategoryCountsOnce(t *testing.T) {
	analyzer := NewBehavioralAnalyzer()

	// Three distinct urgency phrases still count the category exactly once.
	findings, score := analyzer.Analyze("urgent! act now! last chance!")

	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
	if math.Abs(score-0.3) > 1e-9 {
		t.Errorf("score = %.2f, want 0.3", score)
	}
}

func TestBehavioralCleanText(t *testing.T) {
	analyzer := NewBehavioralAnalyzer()

	findings, score := analyzer.Analyze("Our quarterly newsletter covers gardening tips and recipes.")

	if len(findings) != 0 || score != 0 {
		t.Errorf("clean text should not trigger categories, got %d findings score %.2f", len(findings), score)
	}
}

func TestBehavioralAllCategoriesStack(t *testing.T) {
	analyzer := NewBehavioralAnalyzer()

	text := "URGENT: the police have a warrant. Trust me, pay with bitcoin via your bank, act now."
	findings, score := analyzer.Analyze(text)

	if len(findings) != 5 {
		t.Fatalf("len(findings) = %d, want all 5 categories", len(findings))
	}
	if math.Abs(score-1.9) > 1e-9 {
		t.Errorf("score = %.2f, want 1.9 (0.3+0.2+0.4+0.5+0.5)", score)
	}
}
