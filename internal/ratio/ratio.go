// Package ratio serves precomputed financial ratios shaped for table
// display: one block per company with "Mar YYYY" column headers.
package ratio

import "context"

// Years covered by the precomputed ratio set.
const (
	MinYear = 2016
	MaxYear = 2025
)

// Ratio is one (company, ratio name, fiscal year) cell.
type Ratio struct {
	CompanyID int64
	Name      string
	IsPercent bool
	Year      int
	Value     *float64
}

type Repository interface {
	SaveRatios(ctx context.Context, ratios []Ratio) (int64, error)
	// ListRatios returns cells for the given companies, optionally filtered
	// by ratio name, within [startYear, endYear].
	ListRatios(ctx context.Context, companyIDs []int64, names []string, startYear, endYear int) ([]Ratio, error)
}
