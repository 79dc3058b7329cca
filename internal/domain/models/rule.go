package models

import "regexp"

// Rule is one scam indicator from the rule corpus. Rules are immutable once
// loaded; id is unique within a knowledge store snapshot (later loads win on
// collision, with the alert feed taking precedence over the indicator set).
type Rule struct {
	ID        string   `json:"id"`
	Pattern   string   `json:"pattern"`
	Severity  Severity `json:"severity"`
	Why       string   `json:"why"`
	Source    string   `json:"source"`
	LearnMore string   `json:"learn_more,omitempty"`
}

// CompiledRule pairs a rule with its precompiled pattern. Owned exclusively
// by the knowledge store; rebuilt on reload, never mutated afterward.
type CompiledRule struct {
	ID     string
	Regexp *regexp.Regexp
	Rule   Rule
}

// LoadDiagnostic records a rule that was dropped at load time because its
// pattern failed to compile. Kept queryable so operators and tests can see
// exactly which rules are out of play.
type LoadDiagnostic struct {
	RuleID  string `json:"rule_id"`
	Pattern string `json:"pattern"`
	Source  string `json:"source"`
	Err     string `json:"error"`
}
