package statement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niftydata/fundamentals-api/internal/apperror"
	"github.com/niftydata/fundamentals-api/internal/company"
	"github.com/niftydata/fundamentals-api/internal/job"
	"github.com/niftydata/fundamentals-api/internal/scraper"
)

type Service struct {
	stmtRepo  Repository
	jobRepo   job.Repository
	companies company.Repository
	registry  *scraper.Registry
	notify    func() // optional: wake worker pool
}

func NewService(stmtRepo Repository, jobRepo job.Repository, companies company.Repository, registry *scraper.Registry) *Service {
	return &Service{
		stmtRepo:  stmtRepo,
		jobRepo:   jobRepo,
		companies: companies,
		registry:  registry,
	}
}

// SetNotify sets a callback invoked when a new pending job is created.
func (s *Service) SetNotify(fn func()) { s.notify = fn }

func (s *Service) ListSources() []string {
	return s.registry.Sources()
}

// EnqueueScrape queues a scrape for one (source, ticker) pair. If an active
// job already covers the pair, that job is returned instead of a new one.
func (s *Service) EnqueueScrape(ctx context.Context, req EnqueueScrapeRequest) (*job.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.registry.Get(req.Source); err != nil {
		return nil, apperror.New(apperror.BadRequest, fmt.Sprintf("unknown source: %s", req.Source))
	}

	active, err := s.jobRepo.FindActive(ctx, req.Source, req.Ticker)
	if err != nil {
		return nil, fmt.Errorf("find active job: %w", err)
	}
	if active != nil {
		return active, nil
	}

	j := &job.Job{
		Source: req.Source,
		Ticker: req.Ticker,
		Status: job.StatusPending,
	}
	if err := s.jobRepo.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if s.notify != nil {
		s.notify()
	}
	return j, nil
}

// GetStatements returns stored rows of one statement kind for a company.
func (s *Service) GetStatements(ctx context.Context, req GetStatementsRequest) ([]Row, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.companies.GetByTicker(ctx, req.Ticker)
	if err != nil {
		return nil, err
	}
	return s.stmtRepo.ListRows(ctx, c.ID, req.Kind)
}

// Process implements job.Processor. Called by the worker pool with a claimed
// (running) job. It scrapes the ticker, upserts the rows, and marks the job
// completed or failed.
func (s *Service) Process(ctx context.Context, j *job.Job) error {
	sc, err := s.registry.Get(j.Source)
	if err != nil {
		return s.failJob(ctx, j, err)
	}

	c, err := s.companies.GetOrCreate(ctx, j.Ticker)
	if err != nil {
		return s.failJob(ctx, j, fmt.Errorf("resolve company: %w", err))
	}

	scraped, err := sc.Scrape(ctx, j.Ticker)
	if err != nil {
		return s.failJob(ctx, j, fmt.Errorf("scrape: %w", err))
	}

	rows := make([]Row, 0, len(scraped))
	for _, sr := range scraped {
		kind := Kind(sr.Statement)
		if !kind.Valid() {
			continue
		}
		rows = append(rows, Row{
			CompanyID:  c.ID,
			Kind:       kind,
			ReportDate: sr.ReportDate,
			Parameter:  sr.Parameter,
			Value:      sr.Value,
		})
	}

	n, err := s.stmtRepo.UpsertRows(ctx, rows)
	if err != nil {
		return s.failJob(ctx, j, fmt.Errorf("save rows: %w", err))
	}

	slog.Info("saved statement rows", "source", j.Source, "ticker", j.Ticker, "rows", n, "scraped", len(scraped))

	j.Status = job.StatusCompleted
	j.RecordsCount = n
	_ = s.jobRepo.Update(ctx, j)
	return nil
}

func (s *Service) failJob(ctx context.Context, j *job.Job, err error) error {
	j.Status = job.StatusFailed
	j.Error = err.Error()
	_ = s.jobRepo.Update(ctx, j)
	return err
}
