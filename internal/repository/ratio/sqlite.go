package ratio

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	domain "github.com/niftydata/fundamentals-api/internal/ratio"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) SaveRatios(ctx context.Context, ratios []domain.Ratio) (int64, error) {
	if len(ratios) == 0 {
		return 0, nil
	}

	const query = `INSERT INTO financial_ratios (company_id, name, is_percent, year, value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(company_id, name, year) DO UPDATE SET
			value = excluded.value, is_percent = excluded.is_percent`

	var total int64
	for _, rt := range ratios {
		var value sql.NullFloat64
		if rt.Value != nil {
			value = sql.NullFloat64{Float64: *rt.Value, Valid: true}
		}
		if _, err := r.db.ExecContext(ctx, query,
			rt.CompanyID, rt.Name, rt.IsPercent, rt.Year, value,
		); err != nil {
			return total, fmt.Errorf("save ratio %s/%d: %w", rt.Name, rt.Year, err)
		}
		total++
	}
	return total, nil
}

func (r *Repository) ListRatios(ctx context.Context, companyIDs []int64, names []string, startYear, endYear int) ([]domain.Ratio, error) {
	if len(companyIDs) == 0 {
		return nil, nil
	}

	var args []any
	query := `SELECT company_id, name, is_percent, year, value FROM financial_ratios
		WHERE company_id IN (` + placeholders(len(companyIDs)) + `)`
	for _, id := range companyIDs {
		args = append(args, id)
	}

	if len(names) > 0 {
		query += ` AND name IN (` + placeholders(len(names)) + `)`
		for _, n := range names {
			args = append(args, n)
		}
	}

	query += ` AND year >= ? AND year <= ? ORDER BY company_id, name, year`
	args = append(args, startYear, endYear)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ratios: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ratios []domain.Ratio
	for rows.Next() {
		var rt domain.Ratio
		var value sql.NullFloat64
		if err := rows.Scan(&rt.CompanyID, &rt.Name, &rt.IsPercent, &rt.Year, &value); err != nil {
			return nil, fmt.Errorf("scan ratio: %w", err)
		}
		if value.Valid {
			v := value.Float64
			rt.Value = &v
		}
		ratios = append(ratios, rt)
	}
	return ratios, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
