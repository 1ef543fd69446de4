package statement

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	domain "github.com/niftydata/fundamentals-api/internal/statement"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// UpsertRows writes scraped cells in one transaction per call, updating the
// value on a (company_id, report_date, parameter) conflict. Rows may span
// statement kinds; they are routed to their tables inside the transaction so
// a failing company leaves no partial rows behind.
func (r *Repository) UpsertRows(ctx context.Context, rows []domain.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("upsert rows: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	byTable := make(map[string][]domain.Row)
	for _, row := range rows {
		byTable[row.Kind.Table()] = append(byTable[row.Kind.Table()], row)
	}

	const batchSize = 500
	var total int64

	for table, tableRows := range byTable {
		for i := 0; i < len(tableRows); i += batchSize {
			end := min(i+batchSize, len(tableRows))
			batch := tableRows[i:end]

			placeholders := make([]string, len(batch))
			args := make([]any, 0, len(batch)*4)
			for j, row := range batch {
				placeholders[j] = "(?, ?, ?, ?)"
				args = append(args, row.CompanyID, row.ReportDate, row.Parameter, row.Value)
			}

			query := fmt.Sprintf( //nolint:gosec // table names come from the Kind enum
				`INSERT INTO %s (company_id, report_date, parameter, value) VALUES %s
				ON CONFLICT(company_id, report_date, parameter)
				DO UPDATE SET value = excluded.value,
					updated_at = strftime('%%Y-%%m-%%dT%%H:%%M:%%SZ', 'now')`,
				table, strings.Join(placeholders, ", "),
			)

			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return 0, fmt.Errorf("upsert into %s: %w", table, err)
			}
			n, _ := res.RowsAffected()
			total += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("upsert rows: commit: %w", err)
	}
	return total, nil
}

func (r *Repository) ListRows(ctx context.Context, companyID int64, kind domain.Kind) ([]domain.Row, error) {
	query := fmt.Sprintf( //nolint:gosec // table names come from the Kind enum
		`SELECT company_id, report_date, parameter, value FROM %s
		WHERE company_id = ? ORDER BY report_date, parameter`,
		kind.Table(),
	)

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []domain.Row
	for rows.Next() {
		row := domain.Row{Kind: kind}
		if err := rows.Scan(&row.CompanyID, &row.ReportDate, &row.Parameter, &row.Value); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
