package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pagesentry/internal/domain/models"
	"pagesentry/internal/infrastructure/database/repository"
	"pagesentry/pkg/logger"
)

// ReportStore is the persistence the reports handler drives; satisfied by the
// pgx-backed repository.
type ReportStore interface {
	Create(ctx context.Context, report *models.ScamReport) (*models.ScamReport, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ScamReport, error)
	List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.ScamReport, error)
	ListByDomain(ctx context.Context, domain string, limit int) ([]*models.ScamReport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus) error
}

// ReportsHandler handles user-submitted scam reports. All endpoints answer
// 503 when the report store is not configured (postgres optional at startup).
type ReportsHandler struct {
	repo   ReportStore
	logger *logger.Logger
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(repo ReportStore, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{
		repo:   repo,
		logger: log.WithComponent("reports-handler"),
	}
}

type createReportRequest struct {
	URL         string  `json:"url"`
	RiskLevel   string  `json:"risk_level,omitempty"`
	RiskScore   float64 `json:"risk_score,omitempty"`
	Description string  `json:"description,omitempty"`
	ReporterID  string  `json:"reporter_id,omitempty"`
}

// Create handles POST /api/v1/reports
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || parsed.Hostname() == "" {
		respondError(w, http.StatusBadRequest, "url must be absolute")
		return
	}

	report := &models.ScamReport{
		URL:         req.URL,
		Domain:      strings.ToLower(parsed.Hostname()),
		RiskLevel:   models.RiskLevel(req.RiskLevel),
		RiskScore:   req.RiskScore,
		Description: req.Description,
		ReporterID:  req.ReporterID,
	}

	created, err := h.repo.Create(r.Context(), report)
	if err != nil {
		h.logger.Error().Err(err).Str("url", req.URL).Msg("failed to create report")
		respondError(w, http.StatusInternalServerError, "failed to create report")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// List handles GET /api/v1/reports, optionally filtered by status or domain
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	status := models.ReportStatus(r.URL.Query().Get("status"))
	domain := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("domain")))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	var reports []*models.ScamReport
	var err error
	if domain != "" {
		reports, err = h.repo.ListByDomain(r.Context(), domain, limit)
	} else {
		reports, err = h.repo.List(r.Context(), status, limit, offset)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list reports")
		respondError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []*models.ScamReport{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// Get handles GET /api/v1/reports/{id}
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrReportNotFound) {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("id", id.String()).Msg("failed to get report")
		respondError(w, http.StatusInternalServerError, "failed to get report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// UpdateStatus handles POST /api/v1/reports/{id}/status
func (h *ReportsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	var req struct {
		Status models.ReportStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Status {
	case models.ReportStatusPending, models.ReportStatusApproved, models.ReportStatusRejected:
	default:
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	err = h.repo.UpdateStatus(r.Context(), id, req.Status)
	if errors.Is(err, repository.ErrReportNotFound) {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("id", id.String()).Msg("failed to update report status")
		respondError(w, http.StatusInternalServerError, "failed to update report status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

func (h *ReportsHandler) available(w http.ResponseWriter) bool {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "report store not configured")
		return false
	}
	return true
}
