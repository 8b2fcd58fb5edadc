package syllabus

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestScanFieldsWithoutMarkers(t *testing.T) {
	fields := ScanFields([]string{"", "講義", "4月", "科目名"}, ScanOptions{
		DepartmentLetter: "J",
		Year:             "2025",
	})

	require.Empty(t, fields.Categories)
	require.Empty(t, fields.Requirements)
	require.Empty(t, fields.CreditUnits)
	require.Equal(t, []string{"J-2025-0", "J-2025-1", "J-2025-2", "J-2025-3"}, fields.Identifiers)
}

func TestScanFieldsCreditValue(t *testing.T) {
	testCases := []struct {
		name     string
		cells    []string
		expected []string
		state    ScanState
	}{
		{
			name:     "single character value",
			cells:    []string{"単位", "A"},
			expected: []string{"A"},
			state:    STATE_IDLE,
		},
		{
			name:     "multi character value is rejected",
			cells:    []string{"単位", "AB"},
			expected: nil,
			state:    STATE_AWAITING_CREDIT_VALUE,
		},
		{
			name:     "term marker is not a value",
			cells:    []string{"単位", "前"},
			expected: nil,
			state:    STATE_AWAITING_CREDIT_VALUE,
		},
		{
			name:     "value after a term marker",
			cells:    []string{"単位", "後", "2"},
			expected: []string{"2"},
			state:    STATE_IDLE,
		},
		{
			name:     "value without a label is ignored",
			cells:    []string{"2", "単位数", "1", "3"},
			expected: []string{"1"},
			state:    STATE_IDLE,
		},
		{
			name:     "empty cell does not complete the label",
			cells:    []string{"単位", "", "4"},
			expected: []string{"4"},
			state:    STATE_IDLE,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			s := NewFieldScanner(ScanOptions{DepartmentLetter: "M", Year: "2024"})
			for _, c := range test.cells {
				s.Feed(c)
			}
			require.Equal(t, test.expected, s.Fields().CreditUnits)
			require.Equal(t, test.state, s.State())
		})
	}
}

func TestScanFieldsCustomTokens(t *testing.T) {
	tokens := Tokens{
		General:     "general",
		Specialized: "specialized",
		Required:    "required",
		Elective:    "elective",
		Credit:      "credit",
		TermMarkers: []string{"F", "S"},
	}

	require.Equal(t, []string{"A"}, ScanFields([]string{"credit", "A"}, ScanOptions{Tokens: tokens}).CreditUnits)
	require.Empty(t, ScanFields([]string{"credit", "AB"}, ScanOptions{Tokens: tokens}).CreditUnits)
	require.Empty(t, ScanFields([]string{"credit", "F"}, ScanOptions{Tokens: tokens}).CreditUnits)

	fields := ScanFields(
		[]string{"general", "required", "credit", "2", "specialized", "elective course", "credit", "S", "1"},
		ScanOptions{Tokens: tokens},
	)
	require.Equal(t, []string{"general", "specialized"}, fields.Categories)
	require.Equal(t, []string{"required", "elective course"}, fields.Requirements)
	require.Equal(t, []string{"2", "1"}, fields.CreditUnits)
}

func TestScanFieldsRows(t *testing.T) {
	cells := []string{
		"国語", "一般", "必修", "履修単位", "2", "前",
		"応用数学", "専門", "選択必修", "学修単位", "後", "1",
		"一般科目", "必修得", "",
	}
	fields := ScanFields(cells, ScanOptions{DepartmentLetter: "E", Year: "2023"})

	expected := Fields{
		Categories:   []string{"一般", "専門"},
		Requirements: []string{"必修", "選択必修", "必修得"},
		CreditUnits:  []string{"2", "1"},
	}
	diff := cmp.Diff(expected, fields, cmpopts.IgnoreFields(Fields{}, "Identifiers"))
	if diff != "" {
		t.Fatal(diff)
	}
	require.Len(t, fields.Identifiers, len(cells))
	require.Equal(t, "E-2023-14", fields.Identifiers[14])
}

func TestScanFieldsSkipHeader(t *testing.T) {
	cells := []string{"一般", "必修", "単位", "9", "1Q", "専門", "選択", "単位", "3"}

	fields := ScanFields(cells, ScanOptions{
		SkipHeader:       true,
		DepartmentLetter: "J",
		Year:             "2025",
	})
	require.Equal(t, []string{"専門"}, fields.Categories)
	require.Equal(t, []string{"選択"}, fields.Requirements)
	require.Equal(t, []string{"3"}, fields.CreditUnits)
	require.Equal(t, []string{"J-2025-4", "J-2025-5", "J-2025-6", "J-2025-7", "J-2025-8"}, fields.Identifiers)

	s := NewFieldScanner(ScanOptions{SkipHeader: true})
	require.Equal(t, STATE_SKIPPING_HEADER, s.State())
	s.Feed("一般")
	require.Equal(t, STATE_SKIPPING_HEADER, s.State())
	require.Empty(t, s.Fields().Identifiers)
	s.Feed("1Q")
	require.Equal(t, STATE_IDLE, s.State())
	require.Len(t, s.Fields().Identifiers, 1)
}

func TestTokensWithDefaults(t *testing.T) {
	tokens := Tokens{Credit: "credit"}.WithDefaults()
	require.Equal(t, "credit", tokens.Credit)
	require.Equal(t, DefaultTokens.Required, tokens.Required)
	require.Equal(t, DefaultTokens.TermMarkers, tokens.TermMarkers)
	require.Equal(t, DefaultTokens.QuarterMarker, tokens.QuarterMarker)
}
