package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus tracks a user-submitted scam report through review.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusApproved ReportStatus = "approved"
	ReportStatusRejected ReportStatus = "rejected"
)

// ScamReport is a user submission flagging a page the engine should have
// caught (or flagged wrongly). Reports feed manual rule curation; they never
// change scoring directly.
type ScamReport struct {
	ID          uuid.UUID    `json:"id"`
	URL         string       `json:"url"`
	Domain      string       `json:"domain"`
	RiskLevel   RiskLevel    `json:"risk_level"`
	RiskScore   float64      `json:"risk_score"`
	Description string       `json:"description,omitempty"`
	ReporterID  string       `json:"reporter_id,omitempty"`
	Status      ReportStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}
