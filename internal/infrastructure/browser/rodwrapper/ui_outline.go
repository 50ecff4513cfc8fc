package rodwrapper

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Control is one interactive element found in a snapshot.
type Control struct {
	ID       string
	Type     string
	Label    string
	Disabled bool
}

func (c Control) String() string {
	s := fmt.Sprintf("%s %-8s %q", c.ID, c.Type, c.Label)
	if c.Disabled {
		s += " (disabled)"
	}
	return s
}

// Outline lists the buttons, inputs and selects of rawHTML in document order, up to limit entries.
func Outline(rawHTML string, limit int) ([]Control, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	var result []Control
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if typ := controlType(n); typ != "" {
				result = append(result, Control{
					ID:       fmt.Sprintf("ui-%04d", len(result)+1),
					Type:     typ,
					Label:    controlLabel(n),
					Disabled: hasAttr(n, "disabled") || attr(n, "aria-disabled") == "true",
				})
				if limit > 0 && len(result) >= limit {
					return false
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(doc)

	return result, nil
}

func controlType(n *html.Node) string {
	switch n.Data {
	case "button":
		return "button"
	case "select":
		return "select"
	case "textarea":
		return "text"
	case "input":
		switch t := attr(n, "type"); t {
		case "hidden":
			return ""
		case "", "text", "email", "tel", "number":
			return "text"
		default:
			return t
		}
	}
	if attr(n, "role") == "button" {
		return "button"
	}
	return ""
}

func controlLabel(n *html.Node) string {
	for _, key := range []string{"aria-label", "data-tooltip", "title", "placeholder", "name"} {
		if v := strings.TrimSpace(attr(n, key)); v != "" {
			return v
		}
	}
	if text := strings.Join(strings.Fields(textOf(n)), " "); text != "" {
		if len(text) > 60 {
			text = text[:60]
		}
		return text
	}
	return "no-label"
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textOf(c))
		sb.WriteByte(' ')
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
