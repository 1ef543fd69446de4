package statement

import (
	"context"
	"errors"
	"testing"

	"github.com/niftydata/fundamentals-api/internal/apperror"
	"github.com/niftydata/fundamentals-api/internal/company"
	"github.com/niftydata/fundamentals-api/internal/job"
	"github.com/niftydata/fundamentals-api/internal/scraper"
)

// --- mock statement repo ---
type mockStmtRepo struct {
	rows []Row
	err  error
}

func (m *mockStmtRepo) UpsertRows(_ context.Context, rows []Row) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.rows = append(m.rows, rows...)
	return int64(len(rows)), nil
}

func (m *mockStmtRepo) ListRows(_ context.Context, companyID int64, kind Kind) ([]Row, error) {
	var out []Row
	for _, r := range m.rows {
		if r.CompanyID == companyID && r.Kind == kind {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- mock job repo ---
type mockJobRepo struct {
	jobs   []*job.Job
	active *job.Job
	nextID int64
}

func (m *mockJobRepo) Create(_ context.Context, j *job.Job) error {
	m.nextID++
	j.ID = m.nextID
	cp := *j
	m.jobs = append(m.jobs, &cp)
	return nil
}
func (m *mockJobRepo) Update(_ context.Context, j *job.Job) error {
	for i, existing := range m.jobs {
		if existing.ID == j.ID {
			cp := *j
			m.jobs[i] = &cp
			return nil
		}
	}
	cp := *j
	m.jobs = append(m.jobs, &cp)
	return nil
}
func (m *mockJobRepo) Get(_ context.Context, id int64) (*job.Job, error) {
	for _, j := range m.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, nil
}
func (m *mockJobRepo) List(_ context.Context, _, _ string) ([]job.Job, error) { return nil, nil }
func (m *mockJobRepo) FindActive(_ context.Context, _, _ string) (*job.Job, error) {
	return m.active, nil
}
func (m *mockJobRepo) ClaimPending(_ context.Context) (*job.Job, error) { return nil, nil }
func (m *mockJobRepo) RecoverStale(_ context.Context) (int64, error)    { return 0, nil }

// --- mock company repo ---
type mockCompanyRepo struct {
	companies map[string]*company.Company
}

func (m *mockCompanyRepo) GetByTicker(_ context.Context, ticker string) (*company.Company, error) {
	if c, ok := m.companies[ticker]; ok {
		return c, nil
	}
	return nil, apperror.New(apperror.NotFound, "company not found")
}
func (m *mockCompanyRepo) GetByID(_ context.Context, id int64) (*company.Company, error) {
	for _, c := range m.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperror.New(apperror.NotFound, "company not found")
}
func (m *mockCompanyRepo) GetByIDs(_ context.Context, _ []int64) ([]company.Company, error) {
	return nil, nil
}
func (m *mockCompanyRepo) GetOrCreate(_ context.Context, ticker string) (*company.Company, error) {
	if c, ok := m.companies[ticker]; ok {
		return c, nil
	}
	c := &company.Company{ID: int64(len(m.companies) + 1), Ticker: ticker}
	m.companies[ticker] = c
	return c, nil
}
func (m *mockCompanyRepo) List(_ context.Context) ([]company.Company, error) { return nil, nil }

// --- mock scraper ---
type mockScraper struct {
	rows []scraper.Row
	err  error
}

func (m *mockScraper) Source() string { return "screener" }

func (m *mockScraper) Scrape(_ context.Context, _ string) ([]scraper.Row, error) {
	return m.rows, m.err
}

func newTestService(stmtRepo *mockStmtRepo, jobRepo *mockJobRepo, ms *mockScraper) *Service {
	registry := scraper.NewRegistry()
	registry.Register(ms)
	companies := &mockCompanyRepo{companies: map[string]*company.Company{
		"TCS": {ID: 1, Ticker: "TCS", FullName: "Tata Consultancy Services Ltd"},
	}}
	return NewService(stmtRepo, jobRepo, companies, registry)
}

func TestEnqueueScrape(t *testing.T) {
	jobRepo := &mockJobRepo{}
	svc := newTestService(&mockStmtRepo{}, jobRepo, &mockScraper{})

	notified := false
	svc.SetNotify(func() { notified = true })

	j, err := svc.EnqueueScrape(context.Background(), EnqueueScrapeRequest{Source: "screener", Ticker: "TCS"})
	if err != nil {
		t.Fatalf("EnqueueScrape() error = %v", err)
	}
	if j.Status != job.StatusPending {
		t.Errorf("Status = %q, want pending", j.Status)
	}
	if !notified {
		t.Error("expected worker pool notification")
	}
}

func TestEnqueueScrapeDedupesActiveJob(t *testing.T) {
	active := &job.Job{ID: 42, Source: "screener", Ticker: "TCS", Status: job.StatusRunning}
	jobRepo := &mockJobRepo{active: active}
	svc := newTestService(&mockStmtRepo{}, jobRepo, &mockScraper{})

	j, err := svc.EnqueueScrape(context.Background(), EnqueueScrapeRequest{Source: "screener", Ticker: "TCS"})
	if err != nil {
		t.Fatalf("EnqueueScrape() error = %v", err)
	}
	if j.ID != 42 {
		t.Errorf("job ID = %d, want the active job 42", j.ID)
	}
	if len(jobRepo.jobs) != 0 {
		t.Error("no new job should be created while one is active")
	}
}

func TestEnqueueScrapeUnknownSource(t *testing.T) {
	svc := newTestService(&mockStmtRepo{}, &mockJobRepo{}, &mockScraper{})

	_, err := svc.EnqueueScrape(context.Background(), EnqueueScrapeRequest{Source: "bloomberg", Ticker: "TCS"})
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code() != apperror.BadRequest {
		t.Errorf("error = %v, want BadRequest", err)
	}
}

func TestProcess(t *testing.T) {
	stmtRepo := &mockStmtRepo{}
	jobRepo := &mockJobRepo{}
	ms := &mockScraper{rows: []scraper.Row{
		{Statement: "balance-sheet", ReportDate: "2024-03-31", Parameter: "Total Assets", Value: 9800},
		{Statement: "profit-loss", ReportDate: "2024-03-31", Parameter: "Expenses", Value: 1350},
		{Statement: "unknown-section", ReportDate: "2024-03-31", Parameter: "Noise", Value: 1},
	}}
	svc := newTestService(stmtRepo, jobRepo, ms)

	j := &job.Job{ID: 1, Source: "screener", Ticker: "TCS", Status: job.StatusRunning}
	if err := svc.Process(context.Background(), j); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if j.Status != job.StatusCompleted {
		t.Errorf("Status = %q, want completed", j.Status)
	}
	if j.RecordsCount != 2 {
		t.Errorf("RecordsCount = %d, want 2 (unknown sections dropped)", j.RecordsCount)
	}
	for _, r := range stmtRepo.rows {
		if r.CompanyID != 1 {
			t.Errorf("CompanyID = %d, want 1", r.CompanyID)
		}
	}
}

func TestProcessScrapeFailure(t *testing.T) {
	jobRepo := &mockJobRepo{}
	ms := &mockScraper{err: errors.New("upstream down")}
	svc := newTestService(&mockStmtRepo{}, jobRepo, ms)

	j := &job.Job{ID: 1, Source: "screener", Ticker: "TCS", Status: job.StatusRunning}
	if err := svc.Process(context.Background(), j); err == nil {
		t.Fatal("expected error")
	}

	if j.Status != job.StatusFailed {
		t.Errorf("Status = %q, want failed", j.Status)
	}
	if j.Error == "" {
		t.Error("expected the failure reason on the job")
	}
}

func TestGetStatements(t *testing.T) {
	stmtRepo := &mockStmtRepo{rows: []Row{
		{CompanyID: 1, Kind: KindBalanceSheet, ReportDate: "2024-03-31", Parameter: "Total Assets", Value: 9800},
		{CompanyID: 1, Kind: KindProfitLoss, ReportDate: "2024-03-31", Parameter: "Expenses", Value: 1350},
	}}
	svc := newTestService(stmtRepo, &mockJobRepo{}, &mockScraper{})

	rows, err := svc.GetStatements(context.Background(), GetStatementsRequest{Ticker: "TCS", Kind: KindBalanceSheet})
	if err != nil {
		t.Fatalf("GetStatements() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Parameter != "Total Assets" {
		t.Errorf("unexpected rows: %+v", rows)
	}

	if _, err := svc.GetStatements(context.Background(), GetStatementsRequest{Ticker: "TCS", Kind: Kind("bogus")}); err == nil {
		t.Error("expected error for invalid kind")
	}
}
