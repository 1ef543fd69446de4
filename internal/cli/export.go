package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/niftydata/fundamentals-api/internal/export"
	"github.com/niftydata/fundamentals-api/internal/governance"
	"github.com/niftydata/fundamentals-api/internal/rpt"
	"github.com/niftydata/fundamentals-api/internal/xbrl"
)

var exportCGCmd = &cobra.Command{
	Use:   "export-cg <filing.xml> <out.xlsx>",
	Short: "Export a corporate-governance XBRL filing to an xlsx workbook",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		facts, err := factsFromFile(args[0])
		if err != nil {
			return err
		}
		return export.WriteGovernance(governance.ParseReport(facts), args[1])
	},
}

var exportRPTCmd = &cobra.Command{
	Use:   "export-rpt <filing.xml> <out.xlsx>",
	Short: "Export a related-party-transaction XBRL filing to an xlsx workbook",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		facts, err := factsFromFile(args[0])
		if err != nil {
			return err
		}
		txs := rpt.ParseTransactions(facts)
		if len(txs) == 0 {
			return fmt.Errorf("no transactions found in %s", args[0])
		}
		return export.WriteTransactions(txs, args[1])
	},
}

var exportBRSRCmd = &cobra.Command{
	Use:   "export-brsr <filing.xml> <out.xlsx>",
	Short: "Export a sustainability-report XBRL filing to an xlsx workbook",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		facts, err := factsFromFile(args[0])
		if err != nil {
			return err
		}
		return export.WriteBRSR(xbrl.GroupBRSR(facts), args[1])
	},
}

func init() {
	rootCmd.AddCommand(exportCGCmd)
	rootCmd.AddCommand(exportRPTCmd)
	rootCmd.AddCommand(exportBRSRCmd)
}

func factsFromFile(path string) ([]xbrl.Fact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return xbrl.ExtractFacts(f)
}
