package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"pagesentry/internal/domain/services"
	"pagesentry/pkg/logger"
)

const maxAnalysisTextBytes = 1 << 20 // 1 MiB of page text

// AnalyzeHandler handles page analysis API requests
type AnalyzeHandler struct {
	engine *services.Engine
	logger *logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(engine *services.Engine, log *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		engine: engine,
		logger: log.WithComponent("analyze-handler"),
	}
}

// AnalyzeRequest is the wire shape of an analysis call.
type AnalyzeRequest struct {
	Text     string   `json:"text"`
	URLs     []string `json:"urls"`
	Domain   string   `json:"domain,omitempty"`
	PageURL  string   `json:"page_url,omitempty"`
	Feedback float64  `json:"feedback,omitempty"`
}

// Analyze handles POST /api/v1/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	result := h.engine.Analyze(r.Context(), req)

	h.logger.Info().
		Str("domain", req.Domain).
		Float64("risk_score", result.RiskScore).
		Str("risk_level", string(result.RiskLevel)).
		Bool("degraded", result.Degraded).
		Msg("page analyzed")

	respondJSON(w, http.StatusOK, result)
}

// AnalyzeFiltered handles POST /api/v1/analyze/filtered, returning only the
// findings that survive suppression, for evidence highlighting.
func (h *AnalyzeHandler) AnalyzeFiltered(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	findings := h.engine.AnalyzeFiltered(r.Context(), req)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"findings": findings,
		"count":    len(findings),
	})
}

func (h *AnalyzeHandler) decode(w http.ResponseWriter, r *http.Request) (services.AnalyzeRequest, bool) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalysisTextBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return services.AnalyzeRequest{}, false
	}

	if req.Text == "" && len(req.URLs) == 0 {
		respondError(w, http.StatusBadRequest, "text or urls is required")
		return services.AnalyzeRequest{}, false
	}

	domain := strings.ToLower(req.Domain)
	if domain == "" && req.PageURL != "" {
		if parsed, err := url.Parse(req.PageURL); err == nil {
			domain = strings.ToLower(parsed.Hostname())
		}
	}

	if req.Feedback < 0 || req.Feedback > 1 {
		respondError(w, http.StatusBadRequest, "feedback must be between 0 and 1")
		return services.AnalyzeRequest{}, false
	}

	return services.AnalyzeRequest{
		Text:     req.Text,
		URLs:     req.URLs,
		Domain:   domain,
		Feedback: req.Feedback,
	}, true
}
