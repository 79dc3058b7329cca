package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"pagesentry/internal/domain/models"
	"pagesentry/pkg/logger"
)

type fakeReportStore struct {
	reports []*models.ScamReport

	listedStatus models.ReportStatus
	listedDomain string
	listCalled   bool
	byDomain     bool
}

func (f *fakeReportStore) Create(ctx context.Context, report *models.ScamReport) (*models.ScamReport, error) {
	report.ID = uuid.New()
	report.Status = models.ReportStatusPending
	f.reports = append(f.reports, report)
	return report, nil
}

func (f *fakeReportStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ScamReport, error) {
	for _, r := range f.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReportStore) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]*models.ScamReport, error) {
	f.listCalled = true
	f.listedStatus = status
	return f.reports, nil
}

func (f *fakeReportStore) ListByDomain(ctx context.Context, domain string, limit int) ([]*models.ScamReport, error) {
	f.byDomain = true
	f.listedDomain = domain
	var out []*models.ScamReport
	for _, r := range f.reports {
		if r.Domain == domain {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReportStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus) error {
	return nil
}

func newReportsFixture() (*ReportsHandler, *fakeReportStore) {
	store := &fakeReportStore{
		reports: []*models.ScamReport{
			{ID: uuid.New(), URL: "http://scam.example.tk/pay", Domain: "scam.example.tk"},
			{ID: uuid.New(), URL: "http://other.example.com/x", Domain: "other.example.com"},
		},
	}
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewReportsHandler(store, log), store
}

func TestReportsListByDomain(t *testing.T) {
	h, store := newReportsFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?domain=Scam.Example.TK", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if !store.byDomain {
		t.Fatal("a domain filter must route through ListByDomain")
	}
	if store.listCalled {
		t.Error("unfiltered List should not run when a domain is given")
	}
	if store.listedDomain != "scam.example.tk" {
		t.Errorf("domain = %q, want lowercased %q", store.listedDomain, "scam.example.tk")
	}

	var resp struct {
		Reports []*models.ScamReport `json:"reports"`
		Count   int                  `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected response shape: %v", err)
	}
	if resp.Count != 1 || len(resp.Reports) != 1 {
		t.Fatalf("count = %d with %d reports, want 1 match", resp.Count, len(resp.Reports))
	}
	if resp.Reports[0].Domain != "scam.example.tk" {
		t.Errorf("matched domain = %q", resp.Reports[0].Domain)
	}
}

func TestReportsListWithoutDomain(t *testing.T) {
	h, store := newReportsFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?status=pending", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.byDomain {
		t.Error("no domain filter, ListByDomain should not run")
	}
	if !store.listCalled || store.listedStatus != models.ReportStatusPending {
		t.Errorf("List called = %v with status %q, want pending", store.listCalled, store.listedStatus)
	}
}

func TestReportsUnavailableWithoutStore(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	h := NewReportsHandler(nil, log)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestReportsCreateValidation(t *testing.T) {
	h, _ := newReportsFixture()

	rec := doJSON(t, h.Create, http.MethodPost, "/api/v1/reports", `{"url": "http://new-scam.example.tk/login"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	var created models.ScamReport
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unexpected response shape: %v", err)
	}
	if created.Domain != "new-scam.example.tk" {
		t.Errorf("domain = %q, want host of the url", created.Domain)
	}
	if created.Status != models.ReportStatusPending {
		t.Errorf("status = %q, want pending", created.Status)
	}

	rec = doJSON(t, h.Create, http.MethodPost, "/api/v1/reports", `{"url": "not-a-url"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("relative url status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h.Create, http.MethodPost, "/api/v1/reports", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing url status = %d, want 400", rec.Code)
	}
}
