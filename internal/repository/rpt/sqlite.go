package rpt

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/niftydata/fundamentals-api/internal/rpt"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveTransactions upserts a filing's transactions in one transaction,
// replacing earlier rows for the same (company, transaction id).
func (r *Repository) SaveTransactions(ctx context.Context, companyID int64, txs []domain.Transaction) (int64, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save transactions: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `INSERT INTO rpt
		(company_id, transaction_id, company_name, scrip_code, name_of_counter_party,
		 relationship_with_listed_entity, transaction_type, amount_reporting_period,
		 amount_outstanding, amount_previous_year, value_approved_by_audit_committee,
		 details_of_other_transaction, remarks_on_approval, entity_entering_transaction,
		 interest_rate_of_loans, loan_secured_or_unsecured, purpose_of_end_usage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_id, transaction_id) DO UPDATE SET
			company_name = excluded.company_name,
			scrip_code = excluded.scrip_code,
			name_of_counter_party = excluded.name_of_counter_party,
			relationship_with_listed_entity = excluded.relationship_with_listed_entity,
			transaction_type = excluded.transaction_type,
			amount_reporting_period = excluded.amount_reporting_period,
			amount_outstanding = excluded.amount_outstanding,
			amount_previous_year = excluded.amount_previous_year,
			value_approved_by_audit_committee = excluded.value_approved_by_audit_committee,
			details_of_other_transaction = excluded.details_of_other_transaction,
			remarks_on_approval = excluded.remarks_on_approval,
			entity_entering_transaction = excluded.entity_entering_transaction,
			interest_rate_of_loans = excluded.interest_rate_of_loans,
			loan_secured_or_unsecured = excluded.loan_secured_or_unsecured,
			purpose_of_end_usage = excluded.purpose_of_end_usage`

	var total int64
	for _, t := range txs {
		if _, err := tx.ExecContext(ctx, query,
			companyID, t.TransactionID, t.CompanyName, t.ScripCode,
			nullable(t.CounterParty), nullable(t.Relationship), nullable(t.TransactionType),
			nullFloat(t.AmountReportingPeriod), nullFloat(t.AmountOutstanding),
			nullFloat(t.AmountPreviousYear), nullFloat(t.ValueApprovedByAuditCo),
			nullable(t.DetailsOfOther), nullable(t.RemarksOnApproval), nullable(t.EnteringEntity),
			nullable(t.InterestRateOfLoans), nullable(t.LoanSecuredOrUnsecured),
			nullable(t.PurposeOfEndUsage),
		); err != nil {
			return 0, fmt.Errorf("insert transaction %d: %w", t.TransactionID, err)
		}
		total++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save transactions: commit: %w", err)
	}
	return total, nil
}

func (r *Repository) ListTransactions(ctx context.Context, companyID int64) ([]domain.Transaction, error) {
	const query = `SELECT transaction_id, company_name, scrip_code,
		name_of_counter_party, relationship_with_listed_entity, transaction_type,
		amount_reporting_period, amount_outstanding, amount_previous_year,
		value_approved_by_audit_committee, details_of_other_transaction,
		remarks_on_approval, entity_entering_transaction, interest_rate_of_loans,
		loan_secured_or_unsecured, purpose_of_end_usage
		FROM rpt WHERE company_id = ? ORDER BY transaction_id`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var counterParty, relationship, txType, details, remarks, entity sql.NullString
		var rateStr, secured, purpose sql.NullString
		var reporting, outstanding, previous, approved sql.NullFloat64

		if err := rows.Scan(
			&t.TransactionID, &t.CompanyName, &t.ScripCode,
			&counterParty, &relationship, &txType,
			&reporting, &outstanding, &previous, &approved,
			&details, &remarks, &entity, &rateStr, &secured, &purpose,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		t.CounterParty = counterParty.String
		t.Relationship = relationship.String
		t.TransactionType = txType.String
		t.AmountReportingPeriod = floatPtr(reporting)
		t.AmountOutstanding = floatPtr(outstanding)
		t.AmountPreviousYear = floatPtr(previous)
		t.ValueApprovedByAuditCo = floatPtr(approved)
		t.DetailsOfOther = details.String
		t.RemarksOnApproval = remarks.String
		t.EnteringEntity = entity.String
		t.InterestRateOfLoans = rateStr.String
		t.LoanSecuredOrUnsecured = secured.String
		t.PurposeOfEndUsage = purpose.String
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
