package services

import (
	"context"
	"math"
	"strings"
	"testing"
)

func TestCheckDomainHeuristics(t *testing.T) {
	analyzer := NewDomainAnalyzer(nil, DefaultWeights())
	ctx := context.Background()

	tests := []struct {
		name       string
		domain     string
		wantRisk   float64
		wantReason string
	}{
		{name: "clean domain", domain: "example.com", wantRisk: 0},
		{name: "suspicious tld", domain: "free-prizes.tk", wantRisk: 0.4, wantReason: "top-level domain"},
		{name: "ip address", domain: "192.168.0.1", wantRisk: 0.6, wantReason: "IP address"},
		{name: "url shortener", domain: "bit.ly", wantRisk: 0.5, wantReason: "shortener"},
		{name: "brand impersonation", domain: "apple-id-verify.com", wantRisk: 0.6, wantReason: "apple impersonation"},
		{name: "brand own domain exempt", domain: "apple.com", wantRisk: 0},
		{name: "brand subdomain exempt", domain: "support.apple.com", wantRisk: 0},
		{name: "brand plus tld stack", domain: "secure-paypal.tk", wantRisk: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := analyzer.CheckDomain(ctx, tt.domain)
			if math.Abs(rep.Risk-tt.wantRisk) > 1e-9 {
				t.Errorf("CheckDomain(%s).Risk = %.2f, want %.2f", tt.domain, rep.Risk, tt.wantRisk)
			}
			if tt.wantReason != "" {
				joined := strings.Join(rep.Reasons, "; ")
				if !strings.Contains(joined, tt.wantReason) {
					t.Errorf("reasons %q missing %q", joined, tt.wantReason)
				}
			}
		})
	}
}

func TestCheckDomainUsesWeightTable(t *testing.T) {
	// The heuristic increments come from the weight table, not literals, so a
	// recalibrated table changes the verdict.
	w := DefaultWeights()
	w.DomainTLDRisk = 0.1
	w.DomainIPRisk = 0.2
	w.DomainShortenerRisk = 0.3
	w.DomainBrandRisk = 0.4
	analyzer := NewDomainAnalyzer(nil, w)
	ctx := context.Background()

	tests := []struct {
		domain string
		want   float64
	}{
		{domain: "free-prizes.tk", want: 0.1},
		{domain: "192.168.0.1", want: 0.2},
		{domain: "bit.ly", want: 0.3},
		{domain: "apple-id-verify.com", want: 0.4},
		{domain: "secure-paypal.tk", want: 0.5},
	}

	for _, tt := range tests {
		rep := analyzer.CheckDomain(ctx, tt.domain)
		if math.Abs(rep.Risk-tt.want) > 1e-9 {
			t.Errorf("CheckDomain(%s).Risk = %.2f, want %.2f", tt.domain, rep.Risk, tt.want)
		}
	}
}

func TestCheckDomainFoldsInChecker(t *testing.T) {
	checker := &stubChecker{risks: map[string]float64{"flagged.example.com": 0.8}}
	analyzer := NewDomainAnalyzer(checker, DefaultWeights())

	rep := analyzer.CheckDomain(context.Background(), "flagged.example.com")

	if math.Abs(rep.Risk-0.8) > 1e-9 {
		t.Errorf("Risk = %.2f, want 0.8 from the external checker", rep.Risk)
	}
	if len(rep.Reasons) == 0 {
		t.Error("checker reasons should be carried through")
	}
}

func TestDomainAnalyzeRiskFloor(t *testing.T) {
	analyzer := NewDomainAnalyzer(nil, DefaultWeights())

	// A lone suspicious TLD scores 0.4, below the 0.7 floor: no finding.
	findings, suspicious, score := analyzer.Analyze(context.Background(), []string{"http://harmless.tk/page"})
	if len(findings) != 0 || len(suspicious) != 0 || score != 0 {
		t.Errorf("single weak signal should stay under the floor, got score %.2f", score)
	}

	// Stacked signals clear the floor and the clamp caps the contribution at 1.
	findings, suspicious, score = analyzer.Analyze(context.Background(), []string{"http://secure-paypal.tk/login"})
	if len(findings) != 1 || len(suspicious) != 1 {
		t.Fatalf("stacked signals should produce one flagged domain, got %d findings", len(findings))
	}
	if score > 1 {
		t.Errorf("per-host contribution = %.2f, want clamped to at most 1", score)
	}
	if suspicious[0].Domain != "secure-paypal.tk" {
		t.Errorf("flagged domain = %s, want secure-paypal.tk", suspicious[0].Domain)
	}
}

func TestDomainAnalyzeDeduplicatesHosts(t *testing.T) {
	analyzer := NewDomainAnalyzer(nil, DefaultWeights())

	findings, _, score := analyzer.Analyze(context.Background(), []string{
		"http://secure-paypal.tk/login",
		"http://secure-paypal.tk/reset",
		"https://SECURE-PAYPAL.TK/other",
	})

	if len(findings) != 1 {
		t.Errorf("len(findings) = %d, want 1 per unique host", len(findings))
	}
	if score > 1 {
		t.Errorf("score = %.2f, repeated host must not stack", score)
	}
}

func TestDomainAnalyzeSkipsMalformedURLs(t *testing.T) {
	analyzer := NewDomainAnalyzer(nil, DefaultWeights())

	findings, _, score := analyzer.Analyze(context.Background(), []string{
		"not a url at all",
		"://missing-scheme",
		"http://secure-paypal.tk/login",
	})

	if len(findings) != 1 {
		t.Errorf("malformed URLs should be skipped without failing the batch, got %d findings", len(findings))
	}
	if score == 0 {
		t.Error("valid URL in the batch should still score")
	}
}
