package syllabus

import (
	"fmt"
	"strings"
)

// Department is an academic department as the syllabus site knows it.
type Department struct {
	// Letter is the one-letter code used in identifiers and file names.
	Letter string `json:"code"`
	// ID is the numeric department_id query parameter.
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultDepartments is the department table of the school the scraper was built for.
var DefaultDepartments = []Department{
	{Letter: "M", ID: "11", Name: "機械工学科"},
	{Letter: "E", ID: "12", Name: "電気電子工学科"},
	{Letter: "D", ID: "13", Name: "電子制御工学科"},
	{Letter: "J", ID: "14", Name: "情報工学科"},
	{Letter: "C", ID: "15", Name: "環境都市工学科"},
}

// Departments is a lookup table between department letters and numeric ids.
type Departments []Department

// Lookup resolves either a department letter (case-insensitive) or a numeric id.
func (d Departments) Lookup(code string) (Department, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for _, dept := range d {
		if dept.Letter == normalized || dept.ID == normalized {
			return dept, nil
		}
	}
	return Department{}, fmt.Errorf("%w: %q", ErrUnknownDepartment, code)
}

// LetterFor maps a numeric department id to its letter.
func (d Departments) LetterFor(id string) (string, error) {
	for _, dept := range d {
		if dept.ID == id {
			return dept.Letter, nil
		}
	}
	return "", fmt.Errorf("%w: id %q", ErrUnknownDepartment, id)
}
