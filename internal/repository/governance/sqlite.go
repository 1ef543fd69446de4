package governance

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/niftydata/fundamentals-api/internal/governance"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveReport inserts every row of one filing in a single transaction so a
// mid-file failure leaves nothing behind for that company.
func (r *Repository) SaveReport(ctx context.Context, companyID int64, report domain.Report) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save report: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const boardQuery = `INSERT INTO cg_board_composition
		(company_id, director_name, din, pan, category, designation,
		 appointment_date, reappointment_date, cessation_date, tenure, date_of_birth,
		 directorships_in_listed_entities, memberships_in_committees,
		 chairmanships_in_committees, reason_for_cessation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, m := range report.Board {
		if _, err := tx.ExecContext(ctx, boardQuery,
			companyID, nullable(m.DirectorName), nullable(m.DIN), nullable(m.PAN),
			nullable(m.Category), nullable(m.Designation),
			nullable(m.AppointmentDate), nullable(m.ReappointmentDate), nullable(m.CessationDate),
			nullable(m.Tenure), nullable(m.DateOfBirth),
			nullable(m.DirectorshipsInListedEntities), nullable(m.MembershipsInCommittees),
			nullable(m.ChairmanshipsInCommittees), nullable(m.ReasonForCessation),
		); err != nil {
			return fmt.Errorf("insert board member: %w", err)
		}
	}

	const committeeQuery = `INSERT INTO cg_committee_composition
		(company_id, committee_name, director_name, din, category,
		 position_in_committee, appointment_date, cessation_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, m := range report.Committees {
		if _, err := tx.ExecContext(ctx, committeeQuery,
			companyID, nullable(m.CommitteeName), nullable(m.DirectorName), nullable(m.DIN),
			nullable(m.Category), nullable(m.PositionInCommittee),
			nullable(m.AppointmentDate), nullable(m.CessationDate), nullable(m.Notes),
		); err != nil {
			return fmt.Errorf("insert committee member: %w", err)
		}
	}

	const boardMeetingQuery = `INSERT INTO cg_board_meetings
		(company_id, meeting_date, meeting_type, quorum_met, directors_on_meeting_date,
		 directors_present, independent_directors_present, gap_between_meetings_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, m := range report.BoardMeetings {
		if _, err := tx.ExecContext(ctx, boardMeetingQuery,
			companyID, nullable(m.MeetingDate), nullable(m.MeetingType), nullable(m.QuorumMet),
			nullable(m.DirectorsOnMeetingDate), nullable(m.DirectorsPresent),
			nullable(m.IndependentDirectorsPresent), nullable(m.GapBetweenMeetingsDays),
		); err != nil {
			return fmt.Errorf("insert board meeting: %w", err)
		}
	}

	const committeeMeetingQuery = `INSERT INTO cg_committee_meetings
		(company_id, committee_name, meeting_date, meeting_type, quorum_met,
		 directors_on_meeting_date, directors_present, independent_directors_present,
		 gap_between_meetings_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, m := range report.CommitteeMeetings {
		if _, err := tx.ExecContext(ctx, committeeMeetingQuery,
			companyID, nullable(m.CommitteeName), nullable(m.MeetingDate), nullable(m.MeetingType),
			nullable(m.QuorumMet), nullable(m.DirectorsOnMeetingDate), nullable(m.DirectorsPresent),
			nullable(m.IndependentDirectorsPresent), nullable(m.GapBetweenMeetingsDays),
		); err != nil {
			return fmt.Errorf("insert committee meeting: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save report: commit: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
