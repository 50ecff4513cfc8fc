package fieldmatch

import (
	"strings"
	"unicode"
)

// Normalize lower-cases s, turns punctuation into spaces and collapses whitespace.
func Normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// KeyMatches reports whether a binding key applies to a label: the whole key
// is a substring of the label, or they share a whitespace-delimited token.
func KeyMatches(key, label string) bool {
	key, label = Normalize(key), Normalize(label)
	if key == "" || label == "" {
		return false
	}
	if strings.Contains(label, key) {
		return true
	}
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(label) {
		tokens[t] = struct{}{}
	}
	for _, t := range strings.Fields(key) {
		if _, ok := tokens[t]; ok {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
