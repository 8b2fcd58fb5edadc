package syllabus

import (
	"errors"
	"fmt"
)

// IdentifierScheme decides which index a record identifier is built from.
type IdentifierScheme int

const (
	// IDENTIFIER_PER_SUBJECT builds {letter}-{year}-{i} from the subject's position.
	IDENTIFIER_PER_SUBJECT IdentifierScheme = iota
	// IDENTIFIER_PER_CELL takes the i-th per-cell identifier produced by the field scanner,
	// the number is then a cell position and carries no meaning about the subject.
	IDENTIFIER_PER_CELL
)

func ParseIdentifierScheme(s string) (IdentifierScheme, error) {
	switch s {
	case "", "per_subject":
		return IDENTIFIER_PER_SUBJECT, nil
	case "per_cell":
		return IDENTIFIER_PER_CELL, nil
	}
	return 0, fmt.Errorf("unknown identifier scheme %q", s)
}

// Sequences are the independently extracted per-subject sequences of one page.
type Sequences struct {
	Names  []string
	Grades []int
	Fields Fields
}

type sequenceLength struct {
	field string
	n     int
}

func (s Sequences) lengths(scheme IdentifierScheme) []sequenceLength {
	lengths := []sequenceLength{
		{"grades", len(s.Grades)},
		{"categories", len(s.Fields.Categories)},
		{"requirements", len(s.Fields.Requirements)},
		{"credit_units", len(s.Fields.CreditUnits)},
	}
	if scheme == IDENTIFIER_PER_CELL {
		lengths = append(lengths, sequenceLength{"identifiers", len(s.Fields.Identifiers)})
	}
	return lengths
}

// CheckAlignment returns a MismatchError for every sequence shorter than Names.
func (s Sequences) CheckAlignment(scheme IdentifierScheme) error {
	var errs []error
	for _, l := range s.lengths(scheme) {
		if l.n < len(s.Names) {
			errs = append(errs, &MismatchError{Field: l.field, Want: len(s.Names), Got: l.n})
		}
	}
	return errors.Join(errs...)
}

// Surplus returns, for every sequence longer than Names, how many entries will be ignored.
// Per-cell identifiers are expected to outnumber subjects and are not included.
func (s Sequences) Surplus() map[string]int {
	surplus := map[string]int{}
	for _, l := range s.lengths(IDENTIFIER_PER_SUBJECT) {
		if l.n > len(s.Names) {
			surplus[l.field] = l.n - len(s.Names)
		}
	}
	return surplus
}

type AssembleOptions struct {
	DepartmentLetter string
	Year             string
	Scheme           IdentifierScheme
	Tokens           Tokens
}

// Assemble zips the sequences into one record per subject name, in order.
// Every sequence must be at least as long as Names, otherwise nothing is assembled
// and the returned error wraps ErrStructuralMismatch.
func Assemble(seq Sequences, opts AssembleOptions) ([]SubjectRecord, error) {
	err := seq.CheckAlignment(opts.Scheme)
	if err != nil {
		return nil, err
	}

	tokens := opts.Tokens.WithDefaults()
	records := make([]SubjectRecord, len(seq.Names))
	for i, name := range seq.Names {
		id := CellIdentifier(opts.DepartmentLetter, opts.Year, i)
		if opts.Scheme == IDENTIFIER_PER_CELL {
			id = seq.Fields.Identifiers[i]
		}

		category := seq.Fields.Categories[i]
		requirement := seq.Fields.Requirements[i]
		records[i] = SubjectRecord{
			ID:              id,
			Name:            name,
			Grade:           seq.Grades[i],
			Category:        tokens.Category(category),
			CategoryText:    category,
			Requirement:     tokens.Requirement(requirement),
			RequirementText: requirement,
			CreditUnits:     seq.Fields.CreditUnits[i],
		}
	}
	return records, nil
}
