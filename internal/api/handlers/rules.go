package handlers

import (
	"net/http"

	"pagesentry/internal/domain/models"
	"pagesentry/internal/domain/services"
	"pagesentry/pkg/logger"
)

// RulesHandler exposes knowledge store diagnostics and reload
type RulesHandler struct {
	store  *services.KnowledgeStore
	logger *logger.Logger
}

// NewRulesHandler creates a new rules handler
func NewRulesHandler(store *services.KnowledgeStore, log *logger.Logger) *RulesHandler {
	return &RulesHandler{
		store:  store,
		logger: log.WithComponent("rules-handler"),
	}
}

// List handles GET /api/v1/rules
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	compiled := h.store.Rules()
	rules := make([]models.Rule, 0, len(compiled))
	for _, cr := range compiled {
		rules = append(rules, cr.Rule)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rules":   rules,
		"count":   len(rules),
		"healthy": h.store.Healthy(),
	})
}

// Diagnostics handles GET /api/v1/rules/diagnostics, listing rules dropped
// during the most recent load.
func (h *RulesHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	diags := h.store.Diagnostics()
	if diags == nil {
		diags = []models.LoadDiagnostic{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"diagnostics": diags,
		"count":       len(diags),
	})
}

// Reload handles POST /api/v1/rules/reload
func (h *RulesHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Load(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("rule reload failed")
		respondError(w, http.StatusInternalServerError, "rule reload failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "reloaded",
		"rules":   len(h.store.Rules()),
		"dropped": len(h.store.Diagnostics()),
	})
}
