package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/niftydata/fundamentals-api/internal/company"
	statementrepo "github.com/niftydata/fundamentals-api/internal/repository/statement"
	"github.com/niftydata/fundamentals-api/internal/scraper"
	"github.com/niftydata/fundamentals-api/internal/scraper/finchat"
	"github.com/niftydata/fundamentals-api/internal/scraper/screener"
	"github.com/niftydata/fundamentals-api/internal/statement"
)

var (
	scrapeAll     bool
	scrapeTimeout time.Duration
	rateLimit     float64
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <source> [ticker...]",
	Short: "Scrape financial statements and load them into the store",
	Long: `Scrape fetches statement tables for the given tickers from one source
(screener or finchat) and upserts the rows into the database. With --all the
whole NIFTY-50 universe is scraped.

Example:
  fundctl scrape screener TCS RELIANCE
  fundctl scrape finchat --all`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().BoolVar(&scrapeAll, "all", false, "scrape the full ticker universe")
	scrapeCmd.Flags().DurationVar(&scrapeTimeout, "timeout", 10*time.Minute, "overall scrape timeout")
	scrapeCmd.Flags().Float64Var(&rateLimit, "rate", 0.5, "upstream requests per second")
}

func runScrape(cmd *cobra.Command, args []string) error {
	source := args[0]
	tickers := normalizeTickers(args[1:])
	if scrapeAll {
		tickers = company.NiftyTickers
	}
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers given: pass tickers or --all")
	}

	db, companies, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	fetcher := scraper.NewFetcher(scraper.WithRateLimit(rateLimit))
	registry := scraper.NewRegistry()
	registry.Register(screener.New(screener.WithFetcher(fetcher)))
	registry.Register(finchat.New(finchat.WithFetcher(fetcher)))

	sc, err := registry.Get(source)
	if err != nil {
		return err
	}

	stmtRepo := statementrepo.NewRepository(db.DB)

	ctx, cancel := context.WithTimeout(cmd.Context(), scrapeTimeout)
	defer cancel()

	failed := 0
	for _, ticker := range tickers {
		c, err := companies.GetOrCreate(ctx, ticker)
		if err != nil {
			return fmt.Errorf("resolve company %s: %w", ticker, err)
		}

		scraped, err := sc.Scrape(ctx, ticker)
		if err != nil {
			slog.Error("scrape failed", "source", source, "ticker", ticker, "error", err)
			failed++
			continue
		}

		rows := make([]statement.Row, 0, len(scraped))
		for _, sr := range scraped {
			kind := statement.Kind(sr.Statement)
			if !kind.Valid() {
				continue
			}
			rows = append(rows, statement.Row{
				CompanyID:  c.ID,
				Kind:       kind,
				ReportDate: sr.ReportDate,
				Parameter:  sr.Parameter,
				Value:      sr.Value,
			})
		}

		n, err := stmtRepo.UpsertRows(ctx, rows)
		if err != nil {
			return fmt.Errorf("save rows for %s: %w", ticker, err)
		}
		slog.Info("scraped ticker", "source", source, "ticker", ticker, "rows", n)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tickers failed", failed, len(tickers))
	}
	return nil
}

// normalizeTickers upper-cases and trims tickers so CLI input matches the
// canonical form stored for companies. Blank arguments are dropped.
func normalizeTickers(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
