package models

import "time"

// Whitelist is a read-only snapshot of the persisted false-positive
// suppressions: bare domains, bare pattern ids, and domain#pattern pairs.
// The engine reads one snapshot per analysis call and never caches beyond it.
type Whitelist struct {
	Domains  map[string]bool `json:"domains"`
	Patterns map[string]bool `json:"patterns"`
}

// EmptyWhitelist returns a snapshot that suppresses nothing.
func EmptyWhitelist() Whitelist {
	return Whitelist{
		Domains:  map[string]bool{},
		Patterns: map[string]bool{},
	}
}

// PairKey builds the key used for domain-scoped pattern suppressions.
func PairKey(domain, patternID string) string {
	return domain + "#" + patternID
}

// HasDomain reports whether every finding for the domain is suppressed.
func (w Whitelist) HasDomain(domain string) bool {
	return w.Domains[domain]
}

// HasPattern reports whether the pattern is suppressed, either globally or
// for the given domain.
func (w Whitelist) HasPattern(domain, patternID string) bool {
	if w.Patterns[patternID] {
		return true
	}
	return domain != "" && w.Patterns[PairKey(domain, patternID)]
}

// WhitelistEntry is one persisted suppression with its provenance.
type WhitelistEntry struct {
	Domain    string    `json:"domain,omitempty"`
	PatternID string    `json:"pattern_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
