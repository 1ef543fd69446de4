package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/niftydata/fundamentals-api/internal/governance"
	"github.com/niftydata/fundamentals-api/internal/rpt"
	"github.com/niftydata/fundamentals-api/internal/xbrl"
)

func openSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read sheet %s: %v", sheet, err)
	}
	return rows
}

func TestWriteGovernance(t *testing.T) {
	report := governance.Report{
		General: map[string]string{"NameOfTheCompany": "Acme Ltd"},
		Board: []governance.BoardMember{
			{DirectorName: "A Sharma", DIN: "00012345", Category: "Executive Director"},
			{DirectorName: "R Gupta", DIN: "00067890", Category: "Independent Director"},
		},
		BoardMeetings: []governance.Meeting{
			{MeetingDate: "2024-04-18", MeetingType: "Previous Quarter", QuorumMet: "Yes"},
		},
	}

	path := filepath.Join(t.TempDir(), "cg.xlsx")
	if err := WriteGovernance(report, path); err != nil {
		t.Fatalf("WriteGovernance() error = %v", err)
	}

	board := openSheet(t, path, "Board_Composition")
	if len(board) != 3 {
		t.Fatalf("board rows = %d, want header + 2", len(board))
	}
	if board[0][0] != "Director Name" {
		t.Errorf("header = %q, want Director Name", board[0][0])
	}
	if board[1][0] != "A Sharma" || board[2][0] != "R Gupta" {
		t.Errorf("unexpected board rows: %v, %v", board[1], board[2])
	}

	meetings := openSheet(t, path, "Board_Meetings")
	if len(meetings) != 2 || meetings[1][0] != "2024-04-18" {
		t.Errorf("unexpected meetings sheet: %v", meetings)
	}

	general := openSheet(t, path, "General_Info")
	if general[0][0] != "NameOfTheCompany" || general[1][0] != "Acme Ltd" {
		t.Errorf("unexpected general info sheet: %v", general)
	}
}

func TestWriteTransactions(t *testing.T) {
	amount := 1500.0
	txs := []rpt.Transaction{
		{
			TransactionID:         1,
			CompanyName:           "Acme Ltd",
			CounterParty:          "Acme Subsidiary",
			AmountReportingPeriod: &amount,
		},
	}

	path := filepath.Join(t.TempDir(), "rpt.xlsx")
	if err := WriteTransactions(txs, path); err != nil {
		t.Fatalf("WriteTransactions() error = %v", err)
	}

	rows := openSheet(t, path, "Related Party Transactions")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if rows[1][3] != "Acme Subsidiary" {
		t.Errorf("counter party = %q, want Acme Subsidiary", rows[1][3])
	}
	if rows[1][6] != "1500" {
		t.Errorf("amount cell = %q, want 1500", rows[1][6])
	}
}

func TestWriteBRSR(t *testing.T) {
	report := xbrl.BRSRReport{
		GeneralInfo: map[string]string{"NameOfTheCompany_MainD": "Acme Ltd"},
		Holdings: map[int]xbrl.Group{
			1: {"NameOfTheHoldingSubsidiaryAssociateCompany": "Acme Infra Ltd"},
		},
		Employees: map[string]map[string]xbrl.Group{
			"Permanent": {
				"Male":   {"TotalNumberOfEmployees": "1200"},
				"Female": {"TotalNumberOfEmployees": "340"},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "brsr.xlsx")
	if err := WriteBRSR(report, path); err != nil {
		t.Fatalf("WriteBRSR() error = %v", err)
	}

	general := openSheet(t, path, "General_Info")
	if general[1][0] != "NameOfTheCompany_MainD" || general[1][1] != "Acme Ltd" {
		t.Errorf("unexpected general info: %v", general)
	}

	employees := openSheet(t, path, "Employee_Details")
	if len(employees) != 3 {
		t.Fatalf("employee rows = %d, want header + 2", len(employees))
	}
	// Female sorts before Male within the Permanent block.
	if employees[1][1] != "Female" || employees[1][2] != "340" {
		t.Errorf("unexpected first employee row: %v", employees[1])
	}
}

func TestWriteGovernanceEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := WriteGovernance(governance.Report{}, path); err == nil {
		t.Error("expected error for an empty report")
	}
}
