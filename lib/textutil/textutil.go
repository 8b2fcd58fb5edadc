package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName folds a subject name into a form suitable for comparison:
// NFKC (so full-width latin and roman numerals fold to their ascii forms),
// lowercase and without any whitespace.
func NormalizeName(name string) string {
	name = norm.NFKC.String(name)
	name = strings.ToLower(name)
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, NormalizeName(m)) {
			return true
		}
	}
	return false
}
