// Package export writes parsed filings to xlsx workbooks for offline review,
// mirroring the sheet layout analysts already work with.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/niftydata/fundamentals-api/internal/governance"
	"github.com/niftydata/fundamentals-api/internal/rpt"
	"github.com/niftydata/fundamentals-api/internal/xbrl"
)

// WriteGovernance writes one corporate-governance report as a workbook with
// one sheet per table.
func WriteGovernance(report governance.Report, path string) error {
	w := newWorkbook()
	defer w.close()

	if len(report.General) > 0 {
		keys := sortedKeys(report.General)
		row := make([]any, len(keys))
		for i, k := range keys {
			row[i] = report.General[k]
		}
		w.addSheet("General_Info", toAny(keys), [][]any{row})
	}

	if len(report.Board) > 0 {
		rows := make([][]any, len(report.Board))
		for i, m := range report.Board {
			rows[i] = []any{
				m.DirectorName, m.DIN, m.PAN, m.Category, m.Designation,
				m.AppointmentDate, m.ReappointmentDate, m.CessationDate,
				m.Tenure, m.DateOfBirth, m.DirectorshipsInListedEntities,
				m.MembershipsInCommittees, m.ChairmanshipsInCommittees,
				m.ReasonForCessation,
			}
		}
		w.addSheet("Board_Composition", []any{
			"Director Name", "DIN", "PAN", "Category", "Designation",
			"Appointment Date", "Reappointment Date", "Cessation Date",
			"Tenure", "Date Of Birth", "Directorships In Listed Entities",
			"Memberships In Committees", "Chairmanships In Committees",
			"Reason For Cessation",
		}, rows)
	}

	if len(report.Committees) > 0 {
		rows := make([][]any, len(report.Committees))
		for i, m := range report.Committees {
			rows[i] = []any{
				m.CommitteeName, m.DirectorName, m.DIN, m.Category,
				m.PositionInCommittee, m.AppointmentDate, m.CessationDate, m.Notes,
			}
		}
		w.addSheet("Committee_Composition", []any{
			"Committee Name", "Director Name", "DIN", "Category",
			"Position In Committee", "Appointment Date", "Cessation Date", "Notes",
		}, rows)
	}

	if len(report.BoardMeetings) > 0 {
		w.addSheet("Board_Meetings", []any{
			"Meeting Date", "Meeting Type", "Quorum Met",
			"Directors On Meeting Date", "Directors Present",
			"Independent Directors Present", "Gap Between Meetings (Days)",
		}, meetingRows(report.BoardMeetings, false))
	}

	if len(report.CommitteeMeetings) > 0 {
		w.addSheet("Committee_Meetings", []any{
			"Committee Name", "Meeting Date", "Meeting Type", "Quorum Met",
			"Directors On Meeting Date", "Directors Present",
			"Independent Directors Present", "Gap Between Meetings (Days)",
		}, meetingRows(report.CommitteeMeetings, true))
	}

	return w.save(path)
}

// WriteTransactions writes related-party transactions as a single sheet.
func WriteTransactions(txs []rpt.Transaction, path string) error {
	w := newWorkbook()
	defer w.close()

	rows := make([][]any, len(txs))
	for i, tx := range txs {
		rows[i] = []any{
			tx.TransactionID, tx.CompanyName, tx.ScripCode, tx.CounterParty,
			tx.Relationship, tx.TransactionType,
			amount(tx.AmountReportingPeriod), amount(tx.AmountOutstanding),
			amount(tx.AmountPreviousYear), amount(tx.ValueApprovedByAuditCo),
			tx.DetailsOfOther, tx.RemarksOnApproval, tx.EnteringEntity,
			tx.InterestRateOfLoans, tx.LoanSecuredOrUnsecured, tx.PurposeOfEndUsage,
		}
	}
	w.addSheet("Related Party Transactions", []any{
		"Transaction ID", "Company Name", "Scrip Code", "Counter Party",
		"Relationship", "Transaction Type", "Amount (Reporting Period)",
		"Amount Outstanding", "Amount (Previous Year)",
		"Value Approved By Audit Committee", "Details Of Other Transaction",
		"Remarks On Approval", "Entering Entity", "Interest Rate Of Loans",
		"Loan Secured Or Unsecured", "Purpose Of End Usage",
	}, rows)

	return w.save(path)
}

// WriteBRSR writes a Business Responsibility and Sustainability Report.
func WriteBRSR(report xbrl.BRSRReport, path string) error {
	w := newWorkbook()
	defer w.close()

	if len(report.GeneralInfo) > 0 {
		keys := sortedKeys(report.GeneralInfo)
		rows := make([][]any, len(keys))
		for i, k := range keys {
			rows[i] = []any{k, report.GeneralInfo[k]}
		}
		w.addSheet("General_Info", []any{"Field", "Value"}, rows)
	}

	if len(report.Holdings) > 0 {
		headers, rows := groupTable(report.Holdings)
		w.addSheet("Holdings_Subsidiaries", headers, rows)
	}

	if len(report.CSRProjects) > 0 {
		headers, rows := groupTable(report.CSRProjects)
		w.addSheet("CSR_Projects", headers, rows)
	}

	if len(report.Employees) > 0 {
		fieldSet := make(map[string]bool)
		for _, byGender := range report.Employees {
			for _, g := range byGender {
				for field := range g {
					fieldSet[field] = true
				}
			}
		}
		fields := sortedKeys(fieldSet)

		headers := append([]any{"Employee Type", "Gender"}, toAny(fields)...)
		var rows [][]any
		for _, empType := range sortedKeys(report.Employees) {
			byGender := report.Employees[empType]
			for _, gender := range sortedKeys(byGender) {
				row := []any{empType, gender}
				for _, field := range fields {
					row = append(row, byGender[gender][field])
				}
				rows = append(rows, row)
			}
		}
		w.addSheet("Employee_Details", headers, rows)
	}

	return w.save(path)
}

type workbook struct {
	file   *excelize.File
	sheets int
	err    error
}

func newWorkbook() *workbook {
	return &workbook{file: excelize.NewFile()}
}

func (w *workbook) addSheet(name string, headers []any, rows [][]any) {
	if w.err != nil {
		return
	}

	// The first sheet reuses the workbook's default sheet.
	if w.sheets == 0 {
		w.err = w.file.SetSheetName(w.file.GetSheetName(0), name)
	} else {
		_, w.err = w.file.NewSheet(name)
	}
	if w.err != nil {
		return
	}
	w.sheets++

	if w.err = w.file.SetSheetRow(name, "A1", &headers); w.err != nil {
		return
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			w.err = err
			return
		}
		if w.err = w.file.SetSheetRow(name, cell, &row); w.err != nil {
			return
		}
	}
}

func (w *workbook) save(path string) error {
	if w.err != nil {
		return fmt.Errorf("build workbook: %w", w.err)
	}
	if w.sheets == 0 {
		return fmt.Errorf("nothing to export")
	}
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (w *workbook) close() { _ = w.file.Close() }

// groupTable flattens suffix-grouped facts into a table: the union of element
// names becomes the header row, groups become rows in id order.
func groupTable(groups map[int]xbrl.Group) ([]any, [][]any) {
	nameSet := make(map[string]bool)
	for _, g := range groups {
		for name := range g {
			nameSet[name] = true
		}
	}
	names := sortedKeys(nameSet)

	rows := make([][]any, 0, len(groups))
	for _, id := range xbrl.SortedIDs(groups) {
		g := groups[id]
		row := make([]any, len(names))
		for i, name := range names {
			row[i] = g[name]
		}
		rows = append(rows, row)
	}
	return toAny(names), rows
}

func meetingRows(meetings []governance.Meeting, withCommittee bool) [][]any {
	rows := make([][]any, len(meetings))
	for i, m := range meetings {
		row := []any{
			m.MeetingDate, m.MeetingType, m.QuorumMet,
			m.DirectorsOnMeetingDate, m.DirectorsPresent,
			m.IndependentDirectorsPresent, m.GapBetweenMeetingsDays,
		}
		if withCommittee {
			row = append([]any{m.CommitteeName}, row...)
		}
		rows[i] = row
	}
	return rows
}

func amount(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
