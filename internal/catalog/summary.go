package catalog

import (
	"creditcounter/internal/syllabus"
)

// GradeSummary totals the credits of one grade.
type GradeSummary struct {
	Grade       int
	Subjects    int
	General     int
	Specialized int
	Required    int
	Elective    int
	Total       int
}

// Summary totals credits per grade, subjects with a non numeric credit cell are counted
// as subjects but add no credits. The result has one entry per grade, 1 through MaxGrade.
func Summary(records []syllabus.SubjectRecord) []GradeSummary {
	out := make([]GradeSummary, syllabus.MaxGrade)
	for i := range out {
		out[i].Grade = i + 1
	}

	for _, record := range records {
		if record.Grade < 1 || record.Grade > syllabus.MaxGrade {
			continue
		}
		s := &out[record.Grade-1]
		s.Subjects++

		credits, ok := record.Credits()
		if !ok {
			continue
		}
		s.Total += credits
		switch record.Category {
		case syllabus.CATEGORY_GENERAL:
			s.General += credits
		case syllabus.CATEGORY_SPECIALIZED:
			s.Specialized += credits
		}
		switch record.Requirement {
		case syllabus.REQUIREMENT_REQUIRED:
			s.Required += credits
		case syllabus.REQUIREMENT_ELECTIVE:
			s.Elective += credits
		}
	}
	return out
}
