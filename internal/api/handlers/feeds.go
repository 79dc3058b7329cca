package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pagesentry/internal/feeds"
	"pagesentry/pkg/logger"
)

// FeedsHandler exposes threat-feed stats and lookups
type FeedsHandler struct {
	cache    *feeds.DomainCache
	registry *feeds.Registry
	logger   *logger.Logger
}

// NewFeedsHandler creates a new feeds handler
func NewFeedsHandler(cache *feeds.DomainCache, registry *feeds.Registry, log *logger.Logger) *FeedsHandler {
	return &FeedsHandler{
		cache:    cache,
		registry: registry,
		logger:   log.WithComponent("feeds-handler"),
	}
}

// Stats handles GET /api/v1/feeds/stats
func (h *FeedsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read feed stats")
		respondError(w, http.StatusInternalServerError, "failed to read feed stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"feeds":      stats,
		"registered": h.registry.Count(),
	})
}

// CheckDomain handles GET /api/v1/feeds/domain/{domain}
func (h *FeedsHandler) CheckDomain(w http.ResponseWriter, r *http.Request) {
	domain := strings.ToLower(chi.URLParam(r, "domain"))
	if domain == "" {
		respondError(w, http.StatusBadRequest, "domain is required")
		return
	}

	rep, err := h.cache.CheckDomainReputation(r.Context(), domain)
	if err != nil {
		h.logger.Error().Err(err).Str("domain", domain).Msg("failed to check domain reputation")
		respondError(w, http.StatusInternalServerError, "failed to check domain reputation")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"domain":  domain,
		"risk":    rep.Risk,
		"reasons": rep.Reasons,
	})
}

// Refresh handles POST /api/v1/feeds/{slug}/refresh, forcing one feed fetch
func (h *FeedsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	conn, ok := h.registry.Get(slug)
	if !ok {
		respondError(w, http.StatusNotFound, "feed not found")
		return
	}

	result, err := conn.Fetch(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Str("feed", slug).Msg("manual feed refresh failed")
		respondError(w, http.StatusBadGateway, "feed refresh failed")
		return
	}

	if err := h.cache.Store(r.Context(), result, conn.Priority()); err != nil {
		h.logger.Error().Err(err).Str("feed", slug).Msg("failed to store feed results")
		respondError(w, http.StatusInternalServerError, "failed to store feed results")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"feed":    slug,
		"fetched": result.TotalFetched,
		"domains": len(result.Domains),
	})
}
