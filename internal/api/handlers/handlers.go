package handlers

import (
	"encoding/json"
	"net/http"

	"pagesentry/internal/domain/services"
	"pagesentry/internal/feeds"
	"pagesentry/internal/infrastructure/cache"
	"pagesentry/internal/infrastructure/database/repository"
	"pagesentry/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health    *HealthHandler
	Analyze   *AnalyzeHandler
	Whitelist *WhitelistHandler
	Rules     *RulesHandler
	Feeds     *FeedsHandler
	Reports   *ReportsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Engine     *services.Engine
	Store      *services.KnowledgeStore
	Whitelist  *cache.WhitelistStore
	FeedCache  *feeds.DomainCache
	Registry   *feeds.Registry
	Cache      *cache.RedisCache
	Reports    *repository.ReportRepository
	Logger     *logger.Logger
	AppVersion string
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	// A missing repository must stay a nil interface so the reports handler's
	// availability check keeps working.
	var reports ReportStore
	if deps.Reports != nil {
		reports = deps.Reports
	}

	return &Handlers{
		Health:    NewHealthHandler(deps.Cache, deps.Reports, deps.Store, deps.AppVersion, deps.Logger),
		Analyze:   NewAnalyzeHandler(deps.Engine, deps.Logger),
		Whitelist: NewWhitelistHandler(deps.Whitelist, deps.Logger),
		Rules:     NewRulesHandler(deps.Store, deps.Logger),
		Feeds:     NewFeedsHandler(deps.FeedCache, deps.Registry, deps.Logger),
		Reports:   NewReportsHandler(reports, deps.Logger),
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
