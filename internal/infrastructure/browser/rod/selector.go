package rod

import (
	"context"
	"strings"
	"time"

	"smart-apply/internal/application/port/output"

	"github.com/go-rod/rod"
)

const hasTextPseudo = ":has-text("

// part is one member of a selector union: plain CSS plus an optional text filter.
type part struct {
	css  string
	text string
}

// parseSelector splits a union and lifts :has-text('x') out of each member,
// since browsers do not support it. The filter is a case-insensitive contains.
func parseSelector(selector string) []part {
	var parts []part
	for _, raw := range splitUnion(selector) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p := part{css: raw}
		if i := strings.Index(raw, hasTextPseudo); i >= 0 {
			end := closingParen(raw, i+len(hasTextPseudo)-1)
			p.text = unquote(raw[i+len(hasTextPseudo) : end])
			p.css = strings.TrimSpace(raw[:i] + raw[min(end+1, len(raw)):])
			if p.css == "" {
				p.css = "*"
			}
		}
		parts = append(parts, p)
	}
	return parts
}

// queryAll runs selector through find. Without text filters the union goes to the
// browser as is and keeps document order; with them members are queried one by one.
func queryAll(ctx context.Context, selector string, timeout time.Duration, find func(css string) (rod.Elements, error)) ([]output.Element, error) {
	parts := parseSelector(selector)

	filtered := false
	for _, p := range parts {
		if p.text != "" {
			filtered = true
			break
		}
	}

	if !filtered {
		els, err := find(selector)
		if err != nil {
			return nil, err
		}
		return wrap(els, timeout), nil
	}

	var out []output.Element
	seen := make(map[string]bool)
	for _, p := range parts {
		els, err := find(p.css)
		if err != nil {
			return nil, err
		}
		for _, el := range els {
			id := string(el.Object.ObjectID)
			if seen[id] {
				continue
			}
			if p.text != "" {
				text, err := el.Context(ctx).Text()
				if err != nil || !strings.Contains(strings.ToLower(text), strings.ToLower(p.text)) {
					continue
				}
			}
			seen[id] = true
			out = append(out, &ElementAdapter{el: el, timeout: timeout})
		}
	}
	return out, nil
}

func wrap(els rod.Elements, timeout time.Duration) []output.Element {
	out := make([]output.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &ElementAdapter{el: el, timeout: timeout})
	}
	return out
}

func splitUnion(s string) []string {
	var (
		out   []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == ',' && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func closingParen(s string, open int) int {
	var quote byte
	for i := open + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ')':
			return i
		}
	}
	return len(s)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
