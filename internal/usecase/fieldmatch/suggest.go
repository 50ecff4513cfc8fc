package fieldmatch

import (
	"fmt"
	"strings"
)

var techKeywords = []struct {
	tech  string
	words []string
}{
	{"python", []string{"python"}},
	{"java", []string{"java"}},
	{"react", []string{"react"}},
	{"node", []string{"node"}},
	{"aws", []string{"aws", "cloud"}},
}

// SuggestAnswer proposes what to add to the configuration for a label nobody answered.
func SuggestAnswer(label string) string {
	l := strings.ToLower(label)

	switch {
	case containsAny(l, "ctc", "salary", "compensation", "expected"):
		if strings.Contains(l, "current") {
			return `Add to PROFILE: "current ctc": "0"`
		}
		return `Add to PROFILE: "expected ctc": "18"`

	case containsAny(l, "experience", "years"):
		for _, tk := range techKeywords {
			if containsAny(l, tk.words...) {
				return fmt.Sprintf(`Add to PROFILE: "%s": "2"`, tk.tech)
			}
		}
		return `Add to PROFILE: "experience": "2"`

	case strings.Contains(l, "notice"):
		return `Add to PROFILE: "notice": "0"`

	case containsAny(l, "willing", "comfortable", "authorized", "completed"):
		return fmt.Sprintf(`Add to ANSWERS: "%s": "Yes" or "No"`, questionKeyword(l))

	case containsAny(l, "select an option", "dropdown"):
		return "Check dropdown options and add to PROFILE or ANSWERS"
	}

	return "Review question and add appropriate value"
}

func questionKeyword(l string) string {
	switch {
	case containsAny(l, "bachelor", "degree"):
		return "bachelor"
	case strings.Contains(l, "background check"):
		return "background check"
	case strings.Contains(l, "remote"):
		return "remote"
	case strings.Contains(l, "relocate"):
		return "relocate"
	case containsAny(l, "time zone", "us time"):
		return "time zone"
	}
	words := strings.Fields(l)
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.Join(words, " ")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
