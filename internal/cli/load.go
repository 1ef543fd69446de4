package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/niftydata/fundamentals-api/internal/loader"
	governancerepo "github.com/niftydata/fundamentals-api/internal/repository/governance"
	rptrepo "github.com/niftydata/fundamentals-api/internal/repository/rpt"
)

var loadCGCmd = &cobra.Command{
	Use:   "load-cg <dir>",
	Short: "Load corporate-governance XBRL filings into the store",
	Long: `Load-cg parses every ticker-named XBRL file in the directory and writes
board composition, committee composition, and meeting rows. Files whose
ticker is unknown or that fail to parse are skipped with a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, closeStore, err := newLoader()
		if err != nil {
			return err
		}
		defer closeStore()

		res, err := l.LoadGovernanceDir(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		slog.Info("governance load finished", "loaded", res.Loaded, "skipped", res.Skipped)
		return nil
	},
}

var loadRPTCmd = &cobra.Command{
	Use:   "load-rpt <dir>",
	Short: "Load related-party-transaction XBRL filings into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, closeStore, err := newLoader()
		if err != nil {
			return err
		}
		defer closeStore()

		res, err := l.LoadRPTDir(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		slog.Info("rpt load finished", "loaded", res.Loaded, "skipped", res.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCGCmd)
	rootCmd.AddCommand(loadRPTCmd)
}

func newLoader() (*loader.Loader, func(), error) {
	db, companies, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	l := loader.New(
		companies,
		governancerepo.NewRepository(db.DB),
		rptrepo.NewRepository(db.DB),
	)
	return l, func() { _ = db.Close() }, nil
}
