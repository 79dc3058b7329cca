package services

import (
	"fmt"

	"pagesentry/internal/domain/models"
)

// buildExplanations renders the fixed, deterministic explanation list. Order
// follows the pipeline: patterns, behavioral, domains, context, trust.
func buildExplanations(result *models.AnalysisResult, behavioralScore float64, suspicious []models.SuspiciousDomain, contextScore float64) []string {
	explanations := []string{}

	highCount := 0
	medCount := 0
	for _, f := range result.Findings {
		if f.Category != models.CategoryPattern {
			continue
		}
		switch f.Severity {
		case models.SeverityHigh:
			highCount++
		case models.SeverityMed:
			medCount++
		}
	}
	if highCount > 0 {
		explanations = append(explanations, fmt.Sprintf("%d high-risk scam patterns detected. These are verified indicators of fraudulent activity.", highCount))
	}
	if medCount > 0 {
		explanations = append(explanations, fmt.Sprintf("%d suspicious patterns identified. These require careful verification before proceeding.", medCount))
	}

	if behavioralScore > 0.8 {
		explanations = append(explanations, "Behavioral analysis detected sophisticated social engineering tactics. This suggests a well-crafted scam.")
	} else if behavioralScore > 0.5 {
		explanations = append(explanations, "Behavioral analysis identified suspicious communication patterns. Exercise caution.")
	}

	if len(suspicious) > 0 {
		explanations = append(explanations, fmt.Sprintf("Domain reputation analysis flagged %d suspicious domains. Check destinations carefully.", len(suspicious)))
	}

	if contextScore > 0.6 {
		explanations = append(explanations, "Content analysis suggests unprofessional or suspicious language patterns commonly used in scams.")
	}

	strongTrust := countBySeverity(result.TrustSignals, models.SeverityHigh)
	if strongTrust > 0 {
		explanations = append(explanations, fmt.Sprintf("%d strong legitimate business indicators detected. This reduces the likelihood of a scam.", strongTrust))
	}

	return explanations
}

// buildRecommendations selects the fixed advice list for the verdict, then
// appends category-specific guidance for payment red flags, authority
// impersonation, and suspicious domains.
func buildRecommendations(result *models.AnalysisResult, suspicious []models.SuspiciousDomain) []string {
	var recommendations []string

	switch result.RiskLevel {
	case models.RiskLevelRed:
		recommendations = append(recommendations,
			"CRITICAL RISK - Do not proceed with any actions on this page",
			"Contact the real organization using official contact details from their website",
			"Report this to Scamwatch immediately: https://portal.scamwatch.gov.au/report-a-scam/",
			"Never provide payment information, passwords, or personal details",
			"Enable two-factor authentication on all your accounts",
		)
	case models.RiskLevelAmber:
		recommendations = append(recommendations,
			"HIGH CAUTION - Verify all information independently before proceeding",
			"Call the organization using a known phone number (not from this page)",
			"Look for additional warning signs and inconsistencies",
			"Check the sender's email address carefully for spoofing",
			"Visit the official website directly (not through links on this page)",
		)
	case models.RiskLevelYellow:
		recommendations = append(recommendations,
			"MODERATE CAUTION - Some suspicious elements detected",
			"Remain vigilant for any suspicious behavior or requests",
			"Verify important details through independent sources",
			"Report any concerns to help improve detection",
		)
	default:
		recommendations = append(recommendations,
			"LIKELY SAFE - Standard security checks passed",
			"Remain vigilant for any suspicious behavior",
			"Report any concerns to help improve detection",
		)
	}

	hasHighPattern := false
	hasAuthority := false
	for _, f := range result.Findings {
		if f.Category == models.CategoryPattern && f.Severity == models.SeverityHigh {
			hasHighPattern = true
		}
		if f.ID == "authority_impersonation" {
			hasAuthority = true
		}
	}

	if hasHighPattern {
		recommendations = append(recommendations,
			"NEVER provide payment information to suspicious requests",
			"Enable two-factor authentication on all financial accounts",
			"Use official apps and websites for sensitive transactions",
		)
	}

	if hasAuthority {
		recommendations = append(recommendations,
			"VERIFY AUTHORITY - Contact the real organization directly",
			"Use phone numbers from official websites, not from emails or messages",
			"Check for official communication channels and procedures",
		)
	}

	if len(suspicious) > 0 {
		recommendations = append(recommendations,
			"CHECK DOMAINS - Verify all URLs before clicking",
			"Be suspicious of shortened URLs and redirects",
			"Type important URLs manually rather than clicking links",
		)
	}

	return recommendations
}
