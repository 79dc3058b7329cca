package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"pagesentry/internal/domain/models"
	"pagesentry/pkg/logger"
)

// WhitelistStore is the suppression persistence the handler drives; satisfied
// by the redis-backed store.
type WhitelistStore interface {
	GetWhitelist(ctx context.Context) (models.Whitelist, error)
	AddDomain(ctx context.Context, domain string) error
	AddPattern(ctx context.Context, domain, patternID string) error
	RemoveDomain(ctx context.Context, domain string) error
	RemovePattern(ctx context.Context, domain, patternID string) error
	SetWhitelist(ctx context.Context, wl models.Whitelist) error
}

// WhitelistHandler manages false-positive suppressions
type WhitelistHandler struct {
	store  WhitelistStore
	logger *logger.Logger
}

// NewWhitelistHandler creates a new whitelist handler
func NewWhitelistHandler(store WhitelistStore, log *logger.Logger) *WhitelistHandler {
	return &WhitelistHandler{
		store:  store,
		logger: log.WithComponent("whitelist-handler"),
	}
}

type whitelistRequest struct {
	Domain    string `json:"domain,omitempty"`
	PatternID string `json:"pattern_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Get handles GET /api/v1/whitelist
func (h *WhitelistHandler) Get(w http.ResponseWriter, r *http.Request) {
	wl, err := h.store.GetWhitelist(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read whitelist")
		respondError(w, http.StatusInternalServerError, "failed to read whitelist")
		return
	}

	domains := make([]string, 0, len(wl.Domains))
	for d := range wl.Domains {
		domains = append(domains, d)
	}
	patterns := make([]string, 0, len(wl.Patterns))
	for p := range wl.Patterns {
		patterns = append(patterns, p)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"domains":  domains,
		"patterns": patterns,
	})
}

// Add handles POST /api/v1/whitelist
func (h *WhitelistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req whitelistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Domain = strings.ToLower(strings.TrimSpace(req.Domain))
	req.PatternID = strings.TrimSpace(req.PatternID)

	switch {
	case req.PatternID != "":
		if err := h.store.AddPattern(r.Context(), req.Domain, req.PatternID); err != nil {
			h.logger.Error().Err(err).Msg("failed to whitelist pattern")
			respondError(w, http.StatusInternalServerError, "failed to whitelist pattern")
			return
		}
	case req.Domain != "":
		if err := h.store.AddDomain(r.Context(), req.Domain); err != nil {
			h.logger.Error().Err(err).Msg("failed to whitelist domain")
			respondError(w, http.StatusInternalServerError, "failed to whitelist domain")
			return
		}
	default:
		respondError(w, http.StatusBadRequest, "domain or pattern_id is required")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

type replaceWhitelistRequest struct {
	Domains  []string `json:"domains"`
	Patterns []string `json:"patterns"`
}

// Replace handles PUT /api/v1/whitelist, swapping the full suppression set in
// one shot. Pattern entries may be bare ids or domain#id pairs.
func (h *WhitelistHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req replaceWhitelistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wl := models.EmptyWhitelist()
	for _, d := range req.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			wl.Domains[d] = true
		}
	}
	for _, p := range req.Patterns {
		p = strings.TrimSpace(p)
		if p != "" {
			wl.Patterns[p] = true
		}
	}

	if err := h.store.SetWhitelist(r.Context(), wl); err != nil {
		h.logger.Error().Err(err).Msg("failed to replace whitelist")
		respondError(w, http.StatusInternalServerError, "failed to replace whitelist")
		return
	}

	h.logger.Info().
		Int("domains", len(wl.Domains)).
		Int("patterns", len(wl.Patterns)).
		Msg("whitelist replaced")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "replaced",
		"domains":  len(wl.Domains),
		"patterns": len(wl.Patterns),
	})
}

// Remove handles DELETE /api/v1/whitelist
func (h *WhitelistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req whitelistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Domain = strings.ToLower(strings.TrimSpace(req.Domain))
	req.PatternID = strings.TrimSpace(req.PatternID)

	switch {
	case req.PatternID != "":
		if err := h.store.RemovePattern(r.Context(), req.Domain, req.PatternID); err != nil {
			h.logger.Error().Err(err).Msg("failed to remove whitelisted pattern")
			respondError(w, http.StatusInternalServerError, "failed to remove whitelisted pattern")
			return
		}
	case req.Domain != "":
		if err := h.store.RemoveDomain(r.Context(), req.Domain); err != nil {
			h.logger.Error().Err(err).Msg("failed to remove whitelisted domain")
			respondError(w, http.StatusInternalServerError, "failed to remove whitelisted domain")
			return
		}
	default:
		respondError(w, http.StatusBadRequest, "domain or pattern_id is required")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
