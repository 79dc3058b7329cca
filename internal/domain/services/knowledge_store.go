package services

import (
	"context"
	"regexp"
	"sync/atomic"

	"pagesentry/internal/domain/models"
	"pagesentry/pkg/logger"
)

// RuleSource supplies the raw rule corpus: a flat indicator set plus a
// curated alert feed sharing the same shape. Implementations fetch from disk,
// an HTTP endpoint, or anything else; the store only cares about the slices.
type RuleSource interface {
	IndicatorRules(ctx context.Context) ([]models.Rule, error)
	AlertRules(ctx context.Context) ([]models.Rule, error)
}

type ruleSnapshot struct {
	rules       []models.CompiledRule
	byID        map[string]int
	diagnostics []models.LoadDiagnostic
	healthy     bool
}

// KnowledgeStore holds the compiled rule corpus behind an atomic pointer.
// Readers always see a complete snapshot; Load builds a new one off to the
// side and swaps it in, so analyses running mid-reload finish on the old set.
type KnowledgeStore struct {
	source   RuleSource
	snapshot atomic.Pointer[ruleSnapshot]
	log      *logger.Logger
}

func NewKnowledgeStore(source RuleSource, log *logger.Logger) *KnowledgeStore {
	s := &KnowledgeStore{
		source: source,
		log:    log.WithComponent("knowledge_store"),
	}
	s.snapshot.Store(&ruleSnapshot{byID: map[string]int{}})
	return s
}

// Load fetches both rule collections, compiles them, and atomically swaps the
// snapshot. Rules whose patterns fail to compile are dropped and recorded as
// diagnostics rather than failing the load. When both collections define the
// same id the alert feed wins; within a collection the last definition wins.
// A failed load marks the store unhealthy but keeps the previous rule set, so
// the degraded pattern scan still has something to work with.
func (s *KnowledgeStore) Load(ctx context.Context) error {
	indicators, err := s.source.IndicatorRules(ctx)
	if err != nil {
		s.log.WithError(err).Error().Msg("Failed to load indicator rules")
		s.markUnhealthy()
		return err
	}

	alerts, err := s.source.AlertRules(ctx)
	if err != nil {
		s.log.WithError(err).Error().Msg("Failed to load alert feed")
		s.markUnhealthy()
		return err
	}

	next := &ruleSnapshot{byID: map[string]int{}, healthy: true}
	// Alert feed compiled second so its definitions win on id collision.
	compileInto(next, indicators, "indicator")
	compileInto(next, alerts, "alert")

	s.snapshot.Store(next)
	s.log.Info().
		Int("rules", len(next.rules)).
		Int("dropped", len(next.diagnostics)).
		Msg("Knowledge store reloaded")
	return nil
}

func (s *KnowledgeStore) markUnhealthy() {
	prev := s.snapshot.Load()
	s.snapshot.Store(&ruleSnapshot{
		rules:       prev.rules,
		byID:        prev.byID,
		diagnostics: prev.diagnostics,
	})
}

func compileInto(snap *ruleSnapshot, rules []models.Rule, defaultSource string) {
	for _, r := range rules {
		if r.Source == "" {
			r.Source = defaultSource
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			snap.diagnostics = append(snap.diagnostics, models.LoadDiagnostic{
				RuleID:  r.ID,
				Pattern: r.Pattern,
				Source:  r.Source,
				Err:     err.Error(),
			})
			continue
		}
		compiled := models.CompiledRule{ID: r.ID, Regexp: re, Rule: r}
		if idx, ok := snap.byID[r.ID]; ok {
			snap.rules[idx] = compiled
			continue
		}
		snap.byID[r.ID] = len(snap.rules)
		snap.rules = append(snap.rules, compiled)
	}
}

// Rules returns the current compiled rule set. Callers must treat the slice
// as read-only; it is shared with every other concurrent reader.
func (s *KnowledgeStore) Rules() []models.CompiledRule {
	return s.snapshot.Load().rules
}

// Lookup returns the compiled rule with the given id, if present.
func (s *KnowledgeStore) Lookup(id string) (models.CompiledRule, bool) {
	snap := s.snapshot.Load()
	idx, ok := snap.byID[id]
	if !ok {
		return models.CompiledRule{}, false
	}
	return snap.rules[idx], true
}

// Diagnostics lists rules dropped during the most recent load.
func (s *KnowledgeStore) Diagnostics() []models.LoadDiagnostic {
	return s.snapshot.Load().diagnostics
}

// Empty reports whether the current snapshot has no usable rules.
func (s *KnowledgeStore) Empty() bool {
	return len(s.snapshot.Load().rules) == 0
}

// Healthy reports whether the most recent load completed. A store that never
// loaded, or whose last load failed, is unhealthy and the engine runs in
// degraded mode against it.
func (s *KnowledgeStore) Healthy() bool {
	return s.snapshot.Load().healthy
}
