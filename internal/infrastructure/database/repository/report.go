package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pagesentry/internal/domain/models"
)

// ErrReportNotFound is returned when a report lookup matches nothing.
var ErrReportNotFound = errors.New("report not found")

// ReportRepository handles scam report persistence
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Create inserts a new report
func (r *ReportRepository) Create(ctx context.Context, report *models.ScamReport) (*models.ScamReport, error) {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}
	report.CreatedAt = time.Now()

	query := `
		INSERT INTO scam_reports (
			id, url, domain, risk_level, risk_score,
			description, reporter_id, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		report.ID, report.URL, report.Domain, report.RiskLevel, report.RiskScore,
		report.Description, report.ReporterID, report.Status, report.CreatedAt,
	).Scan(&report.ID, &report.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return report, nil
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ScamReport, error) {
	query := `
		SELECT id, url, domain, risk_level, risk_score,
			   description, reporter_id, status, created_at
		FROM scam_reports
		WHERE id = $1`

	return r.scanReport(r.pool.QueryRow(ctx, query, id))
}

// List retrieves reports, newest first, optionally filtered by status
func (r *ReportRepository) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.ScamReport, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, url, domain, risk_level, risk_score,
			   description, reporter_id, status, created_at
		FROM scam_reports`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.ScamReport
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// ListByDomain retrieves reports for one domain, newest first
func (r *ReportRepository) ListByDomain(ctx context.Context, domain string, limit int) ([]*models.ScamReport, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, url, domain, risk_level, risk_score,
			   description, reporter_id, status, created_at
		FROM scam_reports
		WHERE domain = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, domain, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for domain: %w", err)
	}
	defer rows.Close()

	var reports []*models.ScamReport
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// UpdateStatus moves a report through review
func (r *ReportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE scam_reports SET status = $2 WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// CountByStatus returns how many reports sit in each status
func (r *ReportRepository) CountByStatus(ctx context.Context) (map[models.ReportStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM scam_reports GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}
	defer rows.Close()

	counts := map[models.ReportStatus]int{}
	for rows.Next() {
		var status models.ReportStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *ReportRepository) scanReport(row pgx.Row) (*models.ScamReport, error) {
	var report models.ScamReport
	err := row.Scan(
		&report.ID, &report.URL, &report.Domain, &report.RiskLevel, &report.RiskScore,
		&report.Description, &report.ReporterID, &report.Status, &report.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}
	return &report, nil
}
