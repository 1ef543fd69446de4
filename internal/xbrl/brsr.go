package xbrl

import "strings"

// BRSR context categories.
const (
	CategoryHoldings    = "HoldingSubsidiaryAssociateCompanies"
	CategoryCSRProjects = "CSRProjectsAxis"

	brsrEmployeeTable = "Employees_TableA"
)

// BRSRReport holds the grouped content of a Business Responsibility and
// Sustainability Report filing.
type BRSRReport struct {
	// GeneralInfo keys are "Element_Context" because the same element can
	// appear under several Main/Principle contexts.
	GeneralInfo map[string]string
	Holdings    map[int]Group
	CSRProjects map[int]Group
	// Employees is a pivot: employee type -> gender -> fields.
	Employees map[string]map[string]Group
}

// GroupBRSR categorizes BRSR facts. The employee table is a dimensional pivot
// whose gender and employment-type members are encoded in the context string;
// Main/Principle contexts carry document-level disclosures; the remaining
// categories group by numeric context suffix.
func GroupBRSR(facts []Fact) BRSRReport {
	report := BRSRReport{
		GeneralInfo: make(map[string]string),
		Holdings:    make(map[int]Group),
		CSRProjects: make(map[int]Group),
		Employees:   make(map[string]map[string]Group),
	}

	for _, f := range facts {
		if strings.Contains(f.Context, brsrEmployeeTable) {
			empType, gender := employeeDimensions(f.Context)
			byGender := report.Employees[empType]
			if byGender == nil {
				byGender = make(map[string]Group)
				report.Employees[empType] = byGender
			}
			g := byGender[gender]
			if g == nil {
				g = make(Group)
				byGender[gender] = g
			}
			g[f.Name] = f.Value
			continue
		}

		if strings.Contains(f.Context, "Main") || strings.Contains(f.Context, "Principle") {
			report.GeneralInfo[f.Name+"_"+f.Context] = f.Value
			continue
		}

		id, ok := GroupID(f.Context)
		if !ok {
			continue
		}
		switch {
		case strings.Contains(f.Context, CategoryHoldings):
			g := report.Holdings[id]
			if g == nil {
				g = make(Group)
				report.Holdings[id] = g
			}
			g[f.Name] = f.Value
		case strings.Contains(f.Context, CategoryCSRProjects):
			g := report.CSRProjects[id]
			if g == nil {
				g = make(Group)
				report.CSRProjects[id] = g
			}
			g[f.Name] = f.Value
		}
	}

	return report
}

func employeeDimensions(context string) (empType, gender string) {
	gender = "Total"
	switch {
	case strings.Contains(context, "Female"):
		gender = "Female"
	case strings.Contains(context, "Male"):
		gender = "Male"
	case strings.Contains(context, "OtherGender"):
		gender = "Other"
	}

	// OtherThanPermanentEmployees contains PermanentEmployees as a substring,
	// so it has to be checked first.
	empType = "Overall"
	switch {
	case strings.Contains(context, "OtherThanPermanentEmployees"):
		empType = "Other Than Permanent"
	case strings.Contains(context, "PermanentEmployees"):
		empType = "Permanent"
	}
	return empType, gender
}
