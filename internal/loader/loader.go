// Package loader walks directories of downloaded XBRL filings and loads
// parsed governance reports and related-party transactions into the store.
// Files are named by ticker (RELIANCE.xml); unknown tickers are skipped.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/niftydata/fundamentals-api/internal/apperror"
	"github.com/niftydata/fundamentals-api/internal/company"
	"github.com/niftydata/fundamentals-api/internal/governance"
	"github.com/niftydata/fundamentals-api/internal/rpt"
	"github.com/niftydata/fundamentals-api/internal/xbrl"
)

type Loader struct {
	companies  company.Repository
	governance governance.Repository
	rpt        rpt.Repository
}

func New(companies company.Repository, gov governance.Repository, rptRepo rpt.Repository) *Loader {
	return &Loader{
		companies:  companies,
		governance: gov,
		rpt:        rptRepo,
	}
}

// Result summarizes one directory load.
type Result struct {
	Loaded  int
	Skipped int
}

// LoadGovernanceDir parses each corporate-governance filing in dir and saves
// the report. A bad file is logged and skipped, not fatal to the run.
func (l *Loader) LoadGovernanceDir(ctx context.Context, dir string) (Result, error) {
	return l.loadDir(ctx, dir, func(ctx context.Context, companyID int64, facts []xbrl.Fact) error {
		report := governance.ParseReport(facts)
		if report.Empty() {
			return fmt.Errorf("no governance facts found")
		}
		return l.governance.SaveReport(ctx, companyID, report)
	})
}

// LoadRPTDir parses each related-party-transaction filing in dir and upserts
// the transactions.
func (l *Loader) LoadRPTDir(ctx context.Context, dir string) (Result, error) {
	return l.loadDir(ctx, dir, func(ctx context.Context, companyID int64, facts []xbrl.Fact) error {
		transactions := rpt.ParseTransactions(facts)
		if len(transactions) == 0 {
			return fmt.Errorf("no transactions found")
		}
		_, err := l.rpt.SaveTransactions(ctx, companyID, transactions)
		return err
	})
}

func (l *Loader) loadDir(ctx context.Context, dir string, save func(context.Context, int64, []xbrl.Fact) error) (Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, fmt.Errorf("read filings directory: %w", err)
	}

	var res Result
	for _, entry := range entries {
		if entry.IsDir() || !eligible(entry.Name()) {
			continue
		}

		if err := l.loadFile(ctx, filepath.Join(dir, entry.Name()), save); err != nil {
			slog.Warn("skipping filing", "file", entry.Name(), "error", err)
			res.Skipped++
			continue
		}
		res.Loaded++
	}
	return res, nil
}

func (l *Loader) loadFile(ctx context.Context, path string, save func(context.Context, int64, []xbrl.Fact) error) error {
	ticker := tickerFromFilename(path)

	c, err := l.companies.GetByTicker(ctx, ticker)
	if err != nil {
		if ae, ok := err.(*apperror.AppError); ok && ae.Code() == apperror.NotFound {
			return fmt.Errorf("ticker %s not registered", ticker)
		}
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	facts, err := xbrl.ExtractFacts(f)
	if err != nil {
		return fmt.Errorf("extract facts: %w", err)
	}

	return save(ctx, c.ID, facts)
}

// eligible filters directory entries to real filings. Windows copies leave
// ":Zone.Identifier" companions next to downloaded files.
func eligible(name string) bool {
	return strings.HasSuffix(name, ".xml") && !strings.Contains(name, ":Zone.Identifier")
}

func tickerFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
