package syllabus

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralMismatch indicates that the independently scanned sequences of a page
	// do not line up with its subject names.
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrGradeOverflow indicates that blank-run grade detection went past the last grade.
	ErrGradeOverflow = errors.New("grade overflow")
	// ErrUnknownDepartment indicates a department code missing from the department table.
	ErrUnknownDepartment = errors.New("unknown department")
	// ErrInvalidYear indicates a year that is not a four digit string.
	ErrInvalidYear = errors.New("year must be a 4 digit string")
)

// MismatchError describes which sequence came up short during assembly.
type MismatchError struct {
	Field string
	Want  int
	Got   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("structural mismatch: %s has %d entries, expected at least %d", e.Field, e.Got, e.Want)
}

func (e *MismatchError) Unwrap() error {
	return ErrStructuralMismatch
}

// GradeOverflowError describes the grid block at which the grade went past MaxGrade.
type GradeOverflowError struct {
	Block int
	Grade int
}

func (e *GradeOverflowError) Error() string {
	return fmt.Sprintf("grade overflow: block %d would be grade %d, max is %d", e.Block, e.Grade, MaxGrade)
}

func (e *GradeOverflowError) Unwrap() error {
	return ErrGradeOverflow
}

// DepartmentError attaches the department (and year) an extraction error belongs to.
type DepartmentError struct {
	Department Department
	Year       string
	Err        error
}

func (e *DepartmentError) Error() string {
	return fmt.Sprintf("department %s (%s): %v", e.Department.Letter, e.Year, e.Err)
}

func (e *DepartmentError) Unwrap() error {
	return e.Err
}
