package xbrl

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Context categories used by corporate-governance filings. Facts whose
// context contains one of these substrings describe the n-th board member,
// committee member, or meeting, where n is the context's numeric suffix.
const (
	CategoryBoardComposition     = "CompBOD"
	CategoryCommitteeComposition = "CompComit"
	CategoryBoardMeetings        = "MeetingBOD"
	CategoryCommitteeMeetings    = "MeetingComit"
)

// Related-party transaction context classes.
const (
	rptCurrentPrefix      = "D_"
	rptPreviousYearPrefix = "RelatedPartyTransaction_PY"

	// Synthetic field names for the previous-year and outstanding variants of
	// the transaction amount, which share an element name across contexts.
	FieldAmountPreviousYear = "AmountOfRelatedPartyTransaction_PreviousYear"
	FieldAmountOutstanding  = "AmountOfRelatedPartyTransaction_Outstanding"
)

var groupIDPattern = regexp.MustCompile(`(\d+)$`)

// Group maps element names to values for one logical entity.
type Group map[string]string

// GroupID extracts the trailing numeric suffix of a context reference.
func GroupID(context string) (int, bool) {
	m := groupIDPattern.FindStringSubmatch(context)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// GroupTransactions correlates related-party-transaction facts by the numeric
// suffix of their context. A "D_" context carries the current-period fields
// under their element names; the "RelatedPartyTransaction_PY" class is the
// previous-year amount and any other suffixed context is the outstanding
// balance, both stored under synthetic field names so the three variants of
// the amount stay distinct. Contexts without a trailing digit are dropped.
// Within a group, last write in document order wins.
func GroupTransactions(facts []Fact) map[int]Group {
	grouped := make(map[int]Group)
	for _, f := range facts {
		id, ok := GroupID(f.Context)
		if !ok {
			continue
		}

		g := grouped[id]
		if g == nil {
			g = make(Group)
			grouped[id] = g
		}

		switch {
		case strings.HasPrefix(f.Context, rptCurrentPrefix):
			g[f.Name] = f.Value
		case strings.HasPrefix(f.Context, rptPreviousYearPrefix):
			g[FieldAmountPreviousYear] = f.Value
		default:
			g[FieldAmountOutstanding] = f.Value
		}
	}
	return grouped
}

// GroupCategory correlates facts whose context contains the category
// substring, keyed by the context's numeric suffix. Facts without a suffix
// are never merged into a numbered group.
func GroupCategory(facts []Fact, category string) map[int]Group {
	grouped := make(map[int]Group)
	for _, f := range facts {
		if !strings.Contains(f.Context, category) {
			continue
		}
		id, ok := GroupID(f.Context)
		if !ok {
			continue
		}
		g := grouped[id]
		if g == nil {
			g = make(Group)
			grouped[id] = g
		}
		g[f.Name] = f.Value
	}
	return grouped
}

// GeneralInfo collects document-level facts: those scoped by the bare "MainD"
// or "MainI" contexts rather than a numbered entity context.
func GeneralInfo(facts []Fact) map[string]string {
	info := make(map[string]string)
	for _, f := range facts {
		if f.Context == "MainD" || f.Context == "MainI" {
			info[f.Name] = f.Value
		}
	}
	return info
}

// SortedIDs returns the group ids in ascending order, preserving the entity
// order of the source document.
func SortedIDs(groups map[int]Group) []int {
	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
