// Package statement models the normalized financial-statement rows produced
// by the scrapers: one (company, report date, parameter) cell per row.
package statement

import "context"

// Kind selects the destination table for a row.
type Kind string

const (
	KindBalanceSheet Kind = "balance-sheet"
	KindProfitLoss   Kind = "profit-loss"
	KindCashFlow     Kind = "cash-flow"
	KindQuarterly    Kind = "quarters"
)

// Table returns the relational table backing a statement kind.
func (k Kind) Table() string {
	switch k {
	case KindProfitLoss:
		return "profit_and_loss"
	case KindCashFlow:
		return "cash_flow"
	case KindQuarterly:
		return "quarterly_results"
	default:
		return "balance_sheet"
	}
}

func (k Kind) Valid() bool {
	switch k {
	case KindBalanceSheet, KindProfitLoss, KindCashFlow, KindQuarterly:
		return true
	}
	return false
}

// Row is one scraped statement cell, upserted on
// (company_id, report_date, parameter).
type Row struct {
	CompanyID  int64   `json:"companyId"`
	Kind       Kind    `json:"kind"`
	ReportDate string  `json:"reportDate"` // YYYY-MM-DD
	Parameter  string  `json:"parameter"`
	Value      float64 `json:"value"`
}

type Repository interface {
	UpsertRows(ctx context.Context, rows []Row) (int64, error)
	ListRows(ctx context.Context, companyID int64, kind Kind) ([]Row, error)
}
