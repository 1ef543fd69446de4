// Package governance turns corporate-governance XBRL filings into
// row-per-entity records: board members, committee members, and the meetings
// of both.
package governance

import (
	"context"

	"github.com/niftydata/fundamentals-api/internal/xbrl"
)

type BoardMember struct {
	DirectorName                  string
	DIN                           string
	PAN                           string
	Category                      string
	Designation                   string
	AppointmentDate               string
	ReappointmentDate             string
	CessationDate                 string
	Tenure                        string
	DateOfBirth                   string
	DirectorshipsInListedEntities string
	MembershipsInCommittees       string
	ChairmanshipsInCommittees     string
	ReasonForCessation            string
}

type CommitteeMember struct {
	CommitteeName       string
	DirectorName        string
	DIN                 string
	Category            string
	PositionInCommittee string
	AppointmentDate     string
	CessationDate       string
	Notes               string
}

type Meeting struct {
	CommitteeName               string // empty for board meetings
	MeetingDate                 string
	MeetingType                 string // "Previous Quarter" or "Relevant Quarter"
	QuorumMet                   string
	DirectorsOnMeetingDate      string
	DirectorsPresent            string
	IndependentDirectorsPresent string
	GapBetweenMeetingsDays      string
}

// Report is the grouped content of one CG filing.
type Report struct {
	General           map[string]string
	Board             []BoardMember
	Committees        []CommitteeMember
	BoardMeetings     []Meeting
	CommitteeMeetings []Meeting
}

type Repository interface {
	// SaveReport writes all rows of one filing in a single transaction.
	SaveReport(ctx context.Context, companyID int64, report Report) error
}

// ParseReport groups the filing's facts by context category and numeric
// suffix and maps the XBRL element names onto the persisted column set.
func ParseReport(facts []xbrl.Fact) Report {
	report := Report{General: xbrl.GeneralInfo(facts)}

	board := xbrl.GroupCategory(facts, xbrl.CategoryBoardComposition)
	for _, id := range xbrl.SortedIDs(board) {
		g := board[id]
		report.Board = append(report.Board, BoardMember{
			DirectorName:                  g["NameOftheDirector"],
			DIN:                           g["DirectorIdentificationNumberOfDirector"],
			PAN:                           g["PermanentAccountNumberOfDirector"],
			Category:                      g["PositionOfDirectorInBoardOne"],
			Designation:                   g["PositionOfDirectorInBoardTwo"],
			AppointmentDate:               g["DateOfAppointmentOfDirector"],
			ReappointmentDate:             g["DateOfReappointmentOfDirector"],
			CessationDate:                 g["DateOfCessationOfDirector"],
			Tenure:                        g["TenureOfDirector"],
			DateOfBirth:                   g["DateOfBirth"],
			DirectorshipsInListedEntities: g["NumberOfDirectorshipInListedEntitiesIncludingThisListedEntity"],
			MembershipsInCommittees:       g["NumberOfMembershipsInAuditOrStakeholderCommitteesIncludingThisListedEntity"],
			ChairmanshipsInCommittees:     g["NumberOfPostOfChairpersonInAuditOrStakeholderCommitteeHeldInListedEntitiesIncludingThisListedEntity"],
			ReasonForCessation:            g["ReasonForCessation"],
		})
	}

	committees := xbrl.GroupCategory(facts, xbrl.CategoryCommitteeComposition)
	for _, id := range xbrl.SortedIDs(committees) {
		g := committees[id]
		report.Committees = append(report.Committees, CommitteeMember{
			CommitteeName:       g["NameOfCommittee"],
			DirectorName:        g["NameOfCommitteeMembers"],
			DIN:                 g["DirectorIdentificationNumberOfDirector"],
			Category:            g["PositionOfDirectorInCommitteeOne"],
			PositionInCommittee: g["PositionOfDirectorInCommitteeTwo"],
			AppointmentDate:     g["DateOfAppointmentOfDirectorInCommittee"],
			CessationDate:       g["DateOfCessationOfDirectorInCommittee"],
			Notes:               g["DisclosureOfNotesOnCommitteeTextBlock"],
		})
	}

	boardMeetings := xbrl.GroupCategory(facts, xbrl.CategoryBoardMeetings)
	for _, id := range xbrl.SortedIDs(boardMeetings) {
		g := boardMeetings[id]
		m := Meeting{
			QuorumMet:                   g["WhetherRequirementOfQuorumMet"],
			DirectorsOnMeetingDate:      g["TotalNumberOfDirectorsAsOnDateOfTheMeeting"],
			DirectorsPresent:            g["NumberOfDirectorsPresentInMeetingOfBoardOfDirectors"],
			IndependentDirectorsPresent: g["NumberOfIndependentDirectorsAttendingTheMeeting"],
			GapBetweenMeetingsDays:      g["MaximumGapBetweenAnyTwoConsecutiveMeetings"],
		}
		m.MeetingDate, m.MeetingType = coalesceMeetingDate(
			g["DatesOfMeetingInThePreviousQuarter"],
			g["DatesOfMeetingIfAnyInTheRelevantQuarter"],
		)
		report.BoardMeetings = append(report.BoardMeetings, m)
	}

	committeeMeetings := xbrl.GroupCategory(facts, xbrl.CategoryCommitteeMeetings)
	for _, id := range xbrl.SortedIDs(committeeMeetings) {
		g := committeeMeetings[id]
		m := Meeting{
			CommitteeName:               g["NameOfCommittee"],
			QuorumMet:                   g["WhetherRequirementOfQuorumMet"],
			DirectorsOnMeetingDate:      g["TotalNumberOfDirectorsAsOnDateOfTheMeeting"],
			DirectorsPresent:            g["NumberOfDirectorPresentInMeetingOfCommitteeAllDirectorsIncludingIndependentDirector"],
			IndependentDirectorsPresent: g["NumberOfIndependentDirectorAttendingMeetingOfCommittee"],
			GapBetweenMeetingsDays:      g["MaximumGapBetweenAnyTwoConsecutiveMeetings"],
		}
		m.MeetingDate, m.MeetingType = coalesceMeetingDate(
			g["DatesOfMeetingOfTheCommitteeInThePreviousQuarter"],
			g["DatesOfMeetingOfTheCommitteeInTheRelevantQuarter"],
		)
		report.CommitteeMeetings = append(report.CommitteeMeetings, m)
	}

	return report
}

// The previous-quarter date wins when both are reported; the meeting type
// records which column the date came from.
func coalesceMeetingDate(previous, relevant string) (date, meetingType string) {
	if previous != "" {
		return previous, "Previous Quarter"
	}
	return relevant, "Relevant Quarter"
}

// Empty reports true when the filing produced no rows at all.
func (r Report) Empty() bool {
	return len(r.Board) == 0 && len(r.Committees) == 0 &&
		len(r.BoardMeetings) == 0 && len(r.CommitteeMeetings) == 0
}
