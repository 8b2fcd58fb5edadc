package catalog

import (
	"creditcounter/internal/syllabus"
	"creditcounter/lib/textutil"
	"regexp"
	"slices"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// the English drill subjects are listed once per class, only the first listing counts.
var repeatedSubjects = []string{"英語演習ⅠＡ", "英語演習ⅠＢ"}

const (
	japaneseMarker               = "日本語"
	requiredForInternationalText = "必修（留学生）"
)

// Normalize prepares records for display:
//   - records with an empty name are dropped
//   - only the first occurrence of each repeated English drill subject is kept
//   - whitespace is removed from requirement texts
//   - subjects whose name mentions 日本語 are required for international students
//
// Identifiers are left untouched so they still point at the subject's position on the page.
func Normalize(records []syllabus.SubjectRecord) []syllabus.SubjectRecord {
	seen := map[string]bool{}
	out := make([]syllabus.SubjectRecord, 0, len(records))

	for _, record := range records {
		record.Name = strings.TrimSpace(record.Name)
		if record.Name == "" {
			continue
		}

		if slices.Contains(repeatedSubjects, record.Name) {
			if seen[record.Name] {
				continue
			}
			seen[record.Name] = true
		}

		record.RequirementText = whitespaceRegex.ReplaceAllString(record.RequirementText, "")
		if textutil.MatchName(record.Name, []string{japaneseMarker}) {
			record.Requirement = syllabus.REQUIREMENT_REQUIRED
			record.RequirementText = requiredForInternationalText
		}

		out = append(out, record)
	}
	return out
}
