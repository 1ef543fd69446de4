package governance

import (
	"context"
	"testing"

	domain "github.com/niftydata/fundamentals-api/internal/governance"
	"github.com/niftydata/fundamentals-api/internal/platform/sqlite"
	companyrepo "github.com/niftydata/fundamentals-api/internal/repository/company"
)

func setupTestDB(t *testing.T) (*sqlite.DB, int64) {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	c, err := companyrepo.NewRepository(db.DB).GetOrCreate(context.Background(), "HDFCBANK")
	if err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return db, c.ID
}

func countRows(t *testing.T, db *sqlite.DB, table string, companyID int64) int {
	t.Helper()
	var n int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM "+table+" WHERE company_id = ?", companyID,
	).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSaveReport(t *testing.T) {
	db, companyID := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	report := domain.Report{
		Board: []domain.BoardMember{
			{DirectorName: "A. Sharma", DIN: "00012345", Category: "Executive", Designation: "MD"},
			{DirectorName: "B. Rao", DIN: "00067890", Category: "Independent"},
		},
		Committees: []domain.CommitteeMember{
			{CommitteeName: "Audit Committee", DirectorName: "B. Rao", PositionInCommittee: "Chairperson"},
		},
		BoardMeetings: []domain.Meeting{
			{MeetingDate: "2024-04-15", MeetingType: "Previous Quarter", QuorumMet: "Yes"},
		},
		CommitteeMeetings: []domain.Meeting{
			{CommitteeName: "Audit Committee", MeetingDate: "2024-04-10", MeetingType: "Relevant Quarter"},
		},
	}

	if err := repo.SaveReport(ctx, companyID, report); err != nil {
		t.Fatalf("save report: %v", err)
	}

	if n := countRows(t, db, "cg_board_composition", companyID); n != 2 {
		t.Errorf("expected 2 board rows, got %d", n)
	}
	if n := countRows(t, db, "cg_committee_composition", companyID); n != 1 {
		t.Errorf("expected 1 committee row, got %d", n)
	}
	if n := countRows(t, db, "cg_board_meetings", companyID); n != 1 {
		t.Errorf("expected 1 board meeting, got %d", n)
	}
	if n := countRows(t, db, "cg_committee_meetings", companyID); n != 1 {
		t.Errorf("expected 1 committee meeting, got %d", n)
	}

	// Empty fields are stored as NULL, not as empty strings.
	var cessation any
	if err := db.QueryRow(
		"SELECT cessation_date FROM cg_board_composition WHERE director_name = ?", "A. Sharma",
	).Scan(&cessation); err != nil {
		t.Fatal(err)
	}
	if cessation != nil {
		t.Errorf("expected NULL cessation_date, got %v", cessation)
	}
}

func TestSaveReport_EmptyReport(t *testing.T) {
	db, companyID := setupTestDB(t)
	repo := NewRepository(db.DB)

	if err := repo.SaveReport(context.Background(), companyID, domain.Report{}); err != nil {
		t.Fatalf("save empty report: %v", err)
	}
	if n := countRows(t, db, "cg_board_composition", companyID); n != 0 {
		t.Errorf("expected 0 rows, got %d", n)
	}
}
