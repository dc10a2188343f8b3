package textutil

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

var integerRegex = regexp.MustCompile(`\d+`)

// FirstInt returns the first run of digits in s.
func FirstInt(s string) (int, bool) {
	digits := integerRegex.FindString(s)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FuzzyThreshold is the minimum Jaro-Winkler similarity for MatchName to
// consider two names the same.
const FuzzyThreshold = 0.85

// MatchName reports whether `name` contains `query` or is close enough to it
// after both are normalized.
func MatchName(name, query string) bool {
	name = NormalizeName(name)
	query = NormalizeName(query)
	if query == "" {
		return true
	}
	if strings.Contains(name, query) {
		return true
	}
	return matchr.JaroWinkler(name, query, false) >= FuzzyThreshold
}
