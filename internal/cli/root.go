// Package cli implements fundctl, the operational companion to the API
// server: it runs scrapes, loads XBRL filings into the store, and exports
// parsed filings to xlsx workbooks.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/niftydata/fundamentals-api/internal/config"
	"github.com/niftydata/fundamentals-api/internal/platform/sqlite"
	companyrepo "github.com/niftydata/fundamentals-api/internal/repository/company"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "fundctl",
	Short: "Scrape, load, and export Indian-equity fundamentals data",
	Long: `fundctl drives the fundamentals data pipelines from the command line:
scraping statement tables from upstream sites, loading corporate-governance
and related-party XBRL filings into the store, and exporting parsed filings
to xlsx workbooks.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		_ = godotenv.Load()
		if dbPath == "" {
			dbPath = config.Load().DBPath
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	})

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite database path (default: DB_PATH env or fundamentals.db)")
}

// openStore opens the database and the company repository every command needs.
func openStore() (*sqlite.DB, *companyrepo.Repository, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return db, companyrepo.NewRepository(db.DB), nil
}
