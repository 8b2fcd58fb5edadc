package syllabus

import (
	"fmt"
	"regexp"
	"strings"
)

var yearRegex = regexp.MustCompile(`^\d{4}$`)

// NormalizeYear validates a catalog year, an empty input resolves to def.
func NormalizeYear(input, def string) (string, error) {
	year := strings.TrimSpace(input)
	if year == "" {
		year = def
	}
	if !yearRegex.MatchString(year) {
		return "", fmt.Errorf("%w: %q", ErrInvalidYear, input)
	}
	return year, nil
}
