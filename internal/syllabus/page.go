package syllabus

import (
	"creditcounter/lib/htmlutil"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

const (
	// NameSelector selects the hidden elements that carry subject names.
	NameSelector = ".mcc-hide"
	// CellSelector selects every table cell of the catalog.
	CellSelector = "td"
)

// GradeColumnSelector selects the marker cells of a grade column, grade is 1-based.
func GradeColumnSelector(grade int) string {
	return fmt.Sprintf(".c%dm", grade)
}

// Page is a parsed syllabus page.
type Page struct {
	doc *goquery.Document
}

func NewPage(doc *goquery.Document) Page {
	return Page{doc: doc}
}

func ParsePage(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, fmt.Errorf("parse syllabus page: %w", err)
	}
	return NewPage(doc), nil
}

// SubjectNames returns the text of every name element in document order, verbatim.
// Empty names are kept so that positions stay aligned with the other sequences.
func (p Page) SubjectNames() []string {
	return htmlutil.Texts(p.doc.Find(NameSelector))
}

// Cells returns the raw cell stream: the text of every table cell in document order,
// with surrounding whitespace removed.
func (p Page) Cells() []string {
	return htmlutil.TrimmedTexts(p.doc.Find(CellSelector))
}

// GradeGrid collects the marker cells of every grade column. Whitespace-only cells are
// blank.
func (p Page) GradeGrid() GradeColumnGrid {
	var grid GradeColumnGrid
	for grade := 1; grade <= MaxGrade; grade++ {
		grid[grade-1] = htmlutil.TrimmedTexts(p.doc.Find(GradeColumnSelector(grade)))
	}
	return grid
}
