// Package filing resolves company numbers to exchange filing file IDs for
// annual and quarterly reports. The lookup tables are plain configuration
// loaded from a YAML file and handed to the service, not process globals.
package filing

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/niftydata/fundamentals-api/internal/apperror"
	"github.com/niftydata/fundamentals-api/internal/company"
)

// Config maps tickers to their ordered filing file IDs. Annual IDs run
// oldest-first starting at fiscal 2022; quarterly IDs run oldest-first with
// the most recent quarter last.
type Config struct {
	Annual    map[string][]string `yaml:"annual"`
	Quarterly map[string][]string `yaml:"quarterly"`
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read filings config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse filings config: %w", err)
	}
	return cfg, nil
}

// Annual file IDs are positional: index 0 is fiscal 2022.
const annualBaseYear = 2022

type Service struct {
	cfg       Config
	companies company.Repository
}

func NewService(cfg Config, companies company.Repository) *Service {
	return &Service{cfg: cfg, companies: companies}
}

type AnnualFiles struct {
	CompanyNumber int64    `json:"company_number"`
	Ticker        string   `json:"ticker"`
	AnnualFileIDs []string `json:"annual_file_ids"`
}

type AnnualFile struct {
	CompanyNumber int64  `json:"company_number"`
	Ticker        string `json:"ticker"`
	Year          int    `json:"year"`
	AnnualFileID  string `json:"annual_file_id"`
}

type QuarterlyFiles struct {
	CompanyNumber    int64    `json:"company_number"`
	Ticker           string   `json:"ticker"`
	QuarterlyFileIDs []string `json:"quarterly_file_ids"`
}

type QuarterlyFile struct {
	CompanyNumber   int64  `json:"company_number"`
	Ticker          string `json:"ticker"`
	Quarter         int    `json:"quarter"`
	QuarterlyFileID string `json:"quarterly_file_id"`
}

func (s *Service) AnnualAll(ctx context.Context, companyNumber int64) (*AnnualFiles, error) {
	ticker, ids, err := s.lookup(ctx, companyNumber, s.cfg.Annual, "no annual files found for this company")
	if err != nil {
		return nil, err
	}
	return &AnnualFiles{CompanyNumber: companyNumber, Ticker: ticker, AnnualFileIDs: ids}, nil
}

func (s *Service) AnnualByYear(ctx context.Context, companyNumber int64, year int) (*AnnualFile, error) {
	ticker, ids, err := s.lookup(ctx, companyNumber, s.cfg.Annual, "no annual files found for this company")
	if err != nil {
		return nil, err
	}

	idx := year - annualBaseYear
	if idx < 0 || idx >= len(ids) {
		return nil, apperror.New(apperror.NotFound, "annual file for the requested year not available")
	}
	return &AnnualFile{
		CompanyNumber: companyNumber,
		Ticker:        ticker,
		Year:          year,
		AnnualFileID:  ids[idx],
	}, nil
}

func (s *Service) QuarterlyAll(ctx context.Context, companyNumber int64) (*QuarterlyFiles, error) {
	ticker, ids, err := s.lookup(ctx, companyNumber, s.cfg.Quarterly, "no quarterly files found for this company")
	if err != nil {
		return nil, err
	}
	return &QuarterlyFiles{CompanyNumber: companyNumber, Ticker: ticker, QuarterlyFileIDs: ids}, nil
}

// QuarterlyByQuarter resolves quarter n to the n-th file ID from the end:
// the most recent entry is Q4, the one before it Q3, and so on.
func (s *Service) QuarterlyByQuarter(ctx context.Context, companyNumber int64, quarter int) (*QuarterlyFile, error) {
	ticker, ids, err := s.lookup(ctx, companyNumber, s.cfg.Quarterly, "no quarterly files found for this company")
	if err != nil {
		return nil, err
	}

	if quarter < 1 || quarter > 4 || quarter > len(ids) {
		return nil, apperror.New(apperror.NotFound, "quarterly file for the requested quarter not available")
	}
	return &QuarterlyFile{
		CompanyNumber:   companyNumber,
		Ticker:          ticker,
		Quarter:         quarter,
		QuarterlyFileID: ids[len(ids)-quarter],
	}, nil
}

func (s *Service) lookup(ctx context.Context, companyNumber int64, table map[string][]string, missing string) (string, []string, error) {
	c, err := s.companies.GetByID(ctx, companyNumber)
	if err != nil {
		return "", nil, err
	}

	ids := table[c.Ticker]
	if len(ids) == 0 {
		return "", nil, apperror.New(apperror.NotFound, missing)
	}
	return c.Ticker, ids, nil
}
