package testutil

import (
	"strings"
	"unicode"
)

// A tiny CSS subset: tag, .class, #id, [attr], [attr=v], [attr*=v], [attr^=v],
// :checked, :has-text('x'), descendant combinator and comma unions.

type attrCond struct {
	name string
	op   string
	val  string
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrCond
	hasText string
	checked bool
}

type complexSel []compound

func parseSelector(sel string) []complexSel {
	var out []complexSel
	for _, part := range splitTop(sel, func(r rune) bool { return r == ',' }) {
		var cx complexSel
		for _, c := range splitTop(part, unicode.IsSpace) {
			cx = append(cx, parseCompound(c))
		}
		if len(cx) > 0 {
			out = append(out, cx)
		}
	}
	return out
}

func splitTop(s string, sep func(rune) bool) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	var quote rune
	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			parts = append(parts, t)
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			depth--
		case depth == 0 && sep(r):
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return parts
}

func parseCompound(s string) compound {
	var c compound
	i := 0
	readIdent := func() string {
		start := i
		for i < len(s) && (isIdent(rune(s[i]))) {
			i++
		}
		return s[start:i]
	}
	c.tag = readIdent()
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			c.classes = append(c.classes, readIdent())
		case '#':
			i++
			c.id = readIdent()
		case '[':
			end := closing(s, i, '[', ']')
			c.attrs = append(c.attrs, parseAttr(s[i+1:end]))
			i = end + 1
		case ':':
			i++
			name := readIdent()
			switch name {
			case "checked":
				c.checked = true
			case "has-text":
				end := closing(s, i, '(', ')')
				c.hasText = unquote(s[i+1 : end])
				i = end + 1
			}
		default:
			i++
		}
	}
	return c
}

func closing(s string, start int, open, close byte) int {
	depth := 0
	var quote byte
	for j := start; j < len(s); j++ {
		switch {
		case quote != 0:
			if s[j] == quote {
				quote = 0
			}
		case s[j] == '\'' || s[j] == '"':
			quote = s[j]
		case s[j] == open:
			depth++
		case s[j] == close:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(s) - 1
}

func parseAttr(s string) attrCond {
	for _, op := range []string{"*=", "^=", "="} {
		if idx := strings.Index(s, op); idx >= 0 {
			return attrCond{
				name: strings.TrimSpace(s[:idx]),
				op:   op,
				val:  unquote(s[idx+len(op):]),
			}
		}
	}
	return attrCond{name: strings.TrimSpace(s)}
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, `\"`, `"`)
}

func isIdent(r rune) bool {
	return r == '-' || r == '_' || r == '*' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (c compound) matches(n *Node) bool {
	if c.tag != "" && c.tag != "*" && c.tag != n.Tag {
		return false
	}
	if c.id != "" && n.Attrs["id"] != c.id {
		return false
	}
	classes := strings.Fields(n.Attrs["class"])
	for _, want := range c.classes {
		found := false
		for _, have := range classes {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, a := range c.attrs {
		v, ok := n.attr(a.name)
		if !ok {
			return false
		}
		switch a.op {
		case "=":
			if v != a.val {
				return false
			}
		case "*=":
			if !strings.Contains(v, a.val) {
				return false
			}
		case "^=":
			if !strings.HasPrefix(v, a.val) {
				return false
			}
		}
	}
	if c.checked && !n.checked {
		return false
	}
	if c.hasText != "" && !strings.Contains(strings.ToLower(n.FullText()), strings.ToLower(c.hasText)) {
		return false
	}
	return true
}

func (cx complexSel) matches(n *Node) bool {
	last := len(cx) - 1
	if !cx[last].matches(n) {
		return false
	}
	i := last - 1
	for p := n.parent; p != nil && i >= 0; p = p.parent {
		if cx[i].matches(p) {
			i--
		}
	}
	return i < 0
}
