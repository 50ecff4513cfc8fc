package rodwrapper

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

type CleanConfig struct {
	TagsToRemove  []string
	AttrsToRemove []string
	// KeepPrefixes lists attribute prefixes that survive; selectors depend on aria-* and data-*.
	KeepPrefixes  []string
	MaxOutputSize int
}

// DefaultCleanConfig подходит для снимков тупиковых шагов мастера.
var DefaultCleanConfig = CleanConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe",
		"link", "meta", "head", "title", "template",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "tabindex",
	},
	KeepPrefixes:  []string{"aria-", "data-test", "data-control"},
	MaxOutputSize: 200_000,
}

// CleanSnapshot strips the body of rawHTML down to what is useful when fixing a selector chain.
func CleanSnapshot(rawHTML string, cfg *CleanConfig) (string, error) {
	if cfg == nil {
		cfg = &DefaultCleanConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse snapshot: %w", err)
	}

	body := findElement(doc, "body")
	if body == nil {
		return "", fmt.Errorf("parse snapshot: no <body>")
	}

	prune(body, cfg)

	var sb strings.Builder
	if err := html.Render(&sb, body); err != nil {
		return "", fmt.Errorf("render snapshot: %w", err)
	}
	return truncate(sb.String(), cfg.MaxOutputSize), nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// prune удаляет комментарии, мусорные теги и лишние атрибуты.
func prune(n *html.Node, cfg *CleanConfig) {
	switch {
	case n.Type == html.CommentNode:
		n.Parent.RemoveChild(n)
		return
	case n.Type != html.ElementNode:
		return
	case slices.Contains(cfg.TagsToRemove, n.Data):
		n.Parent.RemoveChild(n)
		return
	}

	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		if keepAttr(attr.Key, cfg) {
			kept = append(kept, attr)
		}
	}
	n.Attr = kept

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		prune(c, cfg)
		c = next
	}
}

func keepAttr(key string, cfg *CleanConfig) bool {
	for _, prefix := range cfg.KeepPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	if slices.Contains(cfg.AttrsToRemove, key) {
		return false
	}
	// inline handlers and the remaining data-* payloads are noise in a snapshot
	return !strings.HasPrefix(key, "on") && !strings.HasPrefix(key, "data-")
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "\n<!-- snapshot truncated -->"
}
