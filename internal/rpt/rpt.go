// Package rpt turns related-party-transaction XBRL filings into one record
// per transaction, correlating current-period, previous-year, and outstanding
// amounts by the numeric suffix of their contexts.
package rpt

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/niftydata/fundamentals-api/internal/xbrl"
)

// Transaction is one persisted related-party transaction.
type Transaction struct {
	TransactionID          int64    `json:"transactionId"`
	CompanyName            string   `json:"companyName"`
	ScripCode              string   `json:"scripCode"`
	CounterParty           string   `json:"counterParty"`
	Relationship           string   `json:"relationship"`
	TransactionType        string   `json:"transactionType"`
	AmountReportingPeriod  *float64 `json:"amountReportingPeriod"`
	AmountOutstanding      *float64 `json:"amountOutstanding"`
	AmountPreviousYear     *float64 `json:"amountPreviousYear"`
	ValueApprovedByAuditCo *float64 `json:"valueApprovedByAuditCommittee"`
	DetailsOfOther         string   `json:"detailsOfOther"`
	RemarksOnApproval      string   `json:"remarksOnApproval"`
	EnteringEntity         string   `json:"enteringEntity"`
	InterestRateOfLoans    string   `json:"interestRateOfLoans"`
	LoanSecuredOrUnsecured string   `json:"loanSecuredOrUnsecured"`
	PurposeOfEndUsage      string   `json:"purposeOfEndUsage"`
}

type Repository interface {
	SaveTransactions(ctx context.Context, companyID int64, txs []Transaction) (int64, error)
	ListTransactions(ctx context.Context, companyID int64) ([]Transaction, error)
}

// Element names whose values feed the transaction record. The three long
// names at the bottom were truncated when the rpt table was agreed, so they
// carry their own mapping here.
const (
	elemCounterParty     = "NameOfCounterParty"
	elemRelationship     = "RelationshipOfTheCounterpartyWithTheListedEntityOrItsSubsidiary"
	elemTransactionType  = "TypeOfRelatedPartyTransaction"
	elemAmountReporting  = "AmountOfRelatedPartyTransactionDuringTheReportingPeriod"
	elemValueApproved    = "ValueOfTheRelatedPartyTransactionAsApprovedByTheAuditCommittee"
	elemDetailsOfOther   = "DetailsOfOtherRelatedPartyTransaction"
	elemRemarks          = "RemarksOnApprovalByAuditCommittee"
	elemEnteringEntity   = "NameOfListedEntityOrSubsidiaryEnteringIntoTheTransaction"
	elemInterestRate     = "InterestRateOfLoansOrInterCorporateDepositsOrAdvancesOrInvestments"
	elemSecuredUnsecured = "TypeOfOfLoansOrInterCorporateDepositsOrAdvancesOrInvestmentsSecuredOrUnsecured"
	elemPurpose          = "PurposeForWhichTheFundsWillBeUtilisedByTheUltimateRecipientOfFundsForEndusage"
)

var knownElements = map[string]bool{
	elemCounterParty:             true,
	elemRelationship:             true,
	elemTransactionType:          true,
	elemAmountReporting:          true,
	elemValueApproved:            true,
	elemDetailsOfOther:           true,
	elemRemarks:                  true,
	elemEnteringEntity:           true,
	elemInterestRate:             true,
	elemSecuredUnsecured:         true,
	elemPurpose:                  true,
	xbrl.FieldAmountPreviousYear: true,
	xbrl.FieldAmountOutstanding:  true,
}

// ParseTransactions groups a filing's facts into transactions, attaches the
// document-level company name and scrip code, and parses the amount fields as
// numerics (unparseable amounts become NULL). Elements with no mapped column
// are logged at debug level and skipped. Results are ordered by transaction id.
func ParseTransactions(facts []xbrl.Fact) []Transaction {
	grouped := xbrl.GroupTransactions(facts)
	if len(grouped) == 0 {
		return nil
	}

	companyName := xbrl.FindValue(facts, "NameOfTheCompany", "Unknown")
	scripCode := xbrl.FindValue(facts, "ScripCode", "Unknown")

	txs := make([]Transaction, 0, len(grouped))
	for _, id := range xbrl.SortedIDs(grouped) {
		g := grouped[id]
		for name := range g {
			if !knownElements[name] {
				slog.Debug("ignoring unmapped transaction element", "transaction", id, "element", name)
			}
		}
		txs = append(txs, Transaction{
			TransactionID:          int64(id),
			CompanyName:            companyName,
			ScripCode:              scripCode,
			CounterParty:           g[elemCounterParty],
			Relationship:           g[elemRelationship],
			TransactionType:        g[elemTransactionType],
			AmountReportingPeriod:  parseAmount(g[elemAmountReporting]),
			AmountOutstanding:      parseAmount(g[xbrl.FieldAmountOutstanding]),
			AmountPreviousYear:     parseAmount(g[xbrl.FieldAmountPreviousYear]),
			ValueApprovedByAuditCo: parseAmount(g[elemValueApproved]),
			DetailsOfOther:         g[elemDetailsOfOther],
			RemarksOnApproval:      g[elemRemarks],
			EnteringEntity:         g[elemEnteringEntity],
			InterestRateOfLoans:    g[elemInterestRate],
			LoanSecuredOrUnsecured: g[elemSecuredUnsecured],
			PurposeOfEndUsage:      g[elemPurpose],
		})
	}
	return txs
}

func parseAmount(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
