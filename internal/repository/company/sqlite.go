package company

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/niftydata/fundamentals-api/internal/apperror"
	domain "github.com/niftydata/fundamentals-api/internal/company"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByTicker(ctx context.Context, ticker string) (*domain.Company, error) {
	const query = `SELECT id, ticker, COALESCE(full_name, '') FROM company_detail WHERE ticker = ?`

	c := &domain.Company{}
	err := r.db.QueryRowContext(ctx, query, ticker).Scan(&c.ID, &c.Ticker, &c.FullName)
	if err == sql.ErrNoRows {
		return nil, apperror.New(apperror.NotFound, fmt.Sprintf("ticker %s not found", ticker))
	}
	if err != nil {
		return nil, fmt.Errorf("get company by ticker: %w", err)
	}
	return c, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	const query = `SELECT id, ticker, COALESCE(full_name, '') FROM company_detail WHERE id = ?`

	c := &domain.Company{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Ticker, &c.FullName)
	if err == sql.ErrNoRows {
		return nil, apperror.New(apperror.NotFound, "company not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get company by id: %w", err)
	}
	return c, nil
}

func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Company, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf( //nolint:gosec // placeholders are not user input
		`SELECT id, ticker, COALESCE(full_name, '') FROM company_detail WHERE id IN (%s) ORDER BY id`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get companies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var companies []domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Ticker, &c.FullName); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *Repository) GetOrCreate(ctx context.Context, ticker string) (*domain.Company, error) {
	c, err := r.GetByTicker(ctx, ticker)
	if err == nil {
		return c, nil
	}
	if ae, ok := err.(*apperror.AppError); !ok || ae.Code() != apperror.NotFound {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO company_detail (ticker) VALUES (?)`, ticker)
	if err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	id, _ := res.LastInsertId()
	return &domain.Company{ID: id, Ticker: ticker}, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Company, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ticker, COALESCE(full_name, '') FROM company_detail ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var companies []domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Ticker, &c.FullName); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
