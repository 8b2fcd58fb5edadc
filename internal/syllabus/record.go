package syllabus

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

type Category int

const (
	CATEGORY_UNKNOWN Category = iota
	CATEGORY_GENERAL
	CATEGORY_SPECIALIZED
)

func (c Category) String() string {
	switch c {
	case CATEGORY_GENERAL:
		return "general"
	case CATEGORY_SPECIALIZED:
		return "specialized"
	}
	return "unknown"
}

type Requirement int

const (
	REQUIREMENT_UNKNOWN Requirement = iota
	REQUIREMENT_REQUIRED
	REQUIREMENT_ELECTIVE
)

func (r Requirement) String() string {
	switch r {
	case REQUIREMENT_REQUIRED:
		return "required"
	case REQUIREMENT_ELECTIVE:
		return "elective"
	}
	return "unknown"
}

// SubjectRecord is one row of the catalog.
type SubjectRecord struct {
	ID    string
	Name  string
	Grade int

	Category Category
	// CategoryText is the cell text the category was read from.
	CategoryText string

	Requirement Requirement
	// RequirementText is the cell text the requirement was read from, it can carry
	// more than the bare token (ex. "必修（留学生）").
	RequirementText string

	// CreditUnits is the credit cell exactly as rendered.
	CreditUnits string
}

// Credits returns CreditUnits as a number. Full-width digits are accepted.
func (r SubjectRecord) Credits() (int, bool) {
	n, err := strconv.Atoi(width.Narrow.String(strings.TrimSpace(r.CreditUnits)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Category classifies a category cell, the match is exact.
func (t Tokens) Category(text string) Category {
	switch text {
	case t.General:
		return CATEGORY_GENERAL
	case t.Specialized:
		return CATEGORY_SPECIALIZED
	}
	return CATEGORY_UNKNOWN
}

// Requirement classifies a requirement cell by substring, required wins when both match.
func (t Tokens) Requirement(text string) Requirement {
	switch {
	case strings.Contains(text, t.Required):
		return REQUIREMENT_REQUIRED
	case strings.Contains(text, t.Elective):
		return REQUIREMENT_ELECTIVE
	}
	return REQUIREMENT_UNKNOWN
}
