package syllabus

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Tokens are the rendered texts the field scanner keys on.
type Tokens struct {
	// General and Specialized are matched exactly against a cell.
	General     string `json:"general"`
	Specialized string `json:"specialized"`
	// Required and Elective are matched as substrings.
	Required string `json:"required"`
	Elective string `json:"elective"`
	// Credit labels the cell that precedes the credit value, matched as a substring.
	Credit string `json:"credit"`
	// TermMarkers are single character cells that can sit between a credit label and its
	// value ("first half" / "second half"), they are never taken as a credit value.
	TermMarkers []string `json:"term_markers"`
	// QuarterMarker ends the header block when header skipping is enabled.
	QuarterMarker string `json:"quarter_marker"`
}

var DefaultTokens = Tokens{
	General:       "一般",
	Specialized:   "専門",
	Required:      "必修",
	Elective:      "選択",
	Credit:        "単位",
	TermMarkers:   []string{"前", "後"},
	QuarterMarker: "1Q",
}

// WithDefaults fills every empty token from DefaultTokens. An empty substring token would
// otherwise match every cell.
func (t Tokens) WithDefaults() Tokens {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&t.General, DefaultTokens.General)
	fill(&t.Specialized, DefaultTokens.Specialized)
	fill(&t.Required, DefaultTokens.Required)
	fill(&t.Elective, DefaultTokens.Elective)
	fill(&t.Credit, DefaultTokens.Credit)
	fill(&t.QuarterMarker, DefaultTokens.QuarterMarker)
	if t.TermMarkers == nil {
		t.TermMarkers = DefaultTokens.TermMarkers
	}
	return t
}

// ScanState is the state of a FieldScanner between two cells.
type ScanState int

const (
	// STATE_IDLE: no pending label, category/requirement/credit label cells are recognized.
	STATE_IDLE ScanState = iota
	// STATE_AWAITING_CREDIT_VALUE: a credit label was seen, the next single character cell
	// that is not a term marker is the credit value.
	STATE_AWAITING_CREDIT_VALUE
	// STATE_SKIPPING_HEADER: header skipping is enabled and the quarter marker has not
	// been seen yet, cells are ignored.
	STATE_SKIPPING_HEADER
)

func (s ScanState) String() string {
	switch s {
	case STATE_IDLE:
		return "Idle"
	case STATE_AWAITING_CREDIT_VALUE:
		return "AwaitingCreditValue"
	case STATE_SKIPPING_HEADER:
		return "SkippingHeader"
	}
	return fmt.Sprintf("ScanState(%d)", int(s))
}

type ScanOptions struct {
	Tokens Tokens
	// SkipHeader ignores every cell before the first cell equal to Tokens.QuarterMarker.
	SkipHeader bool
	// DepartmentLetter and Year are used to synthesize per-cell identifiers.
	DepartmentLetter string
	Year             string
}

// Fields are the sequences produced by one pass of the field scanner.
type Fields struct {
	// Identifiers holds one identifier per scanned cell, not per subject.
	Identifiers  []string
	Categories   []string
	Requirements []string
	CreditUnits  []string
}

// FieldScanner classifies a stream of table cells one cell at a time.
//
// Transitions, checked in order for every cell:
//
//	SkippingHeader --cell == quarter marker--> Idle (the marker cell is then classified)
//	SkippingHeader --anything else-->          SkippingHeader (cell ignored)
//	*              --cell == general/specialized--> emit category
//	*              --cell contains required/elective--> emit requirement
//	*              --cell contains credit label--> AwaitingCreditValue
//	AwaitingCreditValue --single char, not a term marker--> emit credit, Idle
type FieldScanner struct {
	tokens    Tokens
	letter    string
	year      string
	state     ScanState
	cellIndex int
	fields    Fields
}

func NewFieldScanner(opts ScanOptions) *FieldScanner {
	s := &FieldScanner{
		tokens: opts.Tokens.WithDefaults(),
		letter: opts.DepartmentLetter,
		year:   opts.Year,
		state:  STATE_IDLE,
	}
	if opts.SkipHeader {
		s.state = STATE_SKIPPING_HEADER
	}
	return s
}

func (s *FieldScanner) State() ScanState {
	return s.state
}

// Feed consumes the next cell of the stream.
func (s *FieldScanner) Feed(cell string) {
	index := s.cellIndex
	s.cellIndex++

	if s.state == STATE_SKIPPING_HEADER {
		if cell != s.tokens.QuarterMarker {
			return
		}
		s.state = STATE_IDLE
	}

	s.fields.Identifiers = append(s.fields.Identifiers, CellIdentifier(s.letter, s.year, index))

	switch {
	case cell == s.tokens.General || cell == s.tokens.Specialized:
		s.fields.Categories = append(s.fields.Categories, cell)
	case strings.Contains(cell, s.tokens.Required) || strings.Contains(cell, s.tokens.Elective):
		s.fields.Requirements = append(s.fields.Requirements, cell)
	case strings.Contains(cell, s.tokens.Credit):
		s.state = STATE_AWAITING_CREDIT_VALUE
	case s.state == STATE_AWAITING_CREDIT_VALUE && s.isCreditValue(cell):
		s.fields.CreditUnits = append(s.fields.CreditUnits, cell)
		s.state = STATE_IDLE
	}
}

func (s *FieldScanner) isCreditValue(cell string) bool {
	return utf8.RuneCountInString(cell) == 1 && !slices.Contains(s.tokens.TermMarkers, cell)
}

// Fields returns what has been collected so far.
func (s *FieldScanner) Fields() Fields {
	return s.fields
}

// ScanFields runs a fresh FieldScanner over every cell.
func ScanFields(cells []string, opts ScanOptions) Fields {
	s := NewFieldScanner(opts)
	for _, c := range cells {
		s.Feed(c)
	}
	return s.Fields()
}

// CellIdentifier formats an identifier as {letter}-{year}-{index}.
func CellIdentifier(letter, year string, index int) string {
	return fmt.Sprintf("%s-%s-%d", letter, year, index)
}
