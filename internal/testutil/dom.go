package testutil

import (
	"strings"
)

// Node is one element of the fake document.
type Node struct {
	Tag      string
	Attrs    map[string]string
	OwnText  string
	Hidden   bool
	ClickErr error
	FillErr  error
	OnClick  func(p *Page, n *Node)

	parent   *Node
	children []*Node

	value    string
	checked  bool
	files    []string
	clicks   int
	scrolled int
}

type Opt func(*Node)

// E builds a node: E("button", Attr("aria-label", "Next"), Text("Next")).
func E(tag string, opts ...Opt) *Node {
	n := &Node{Tag: tag, Attrs: make(map[string]string)}
	for _, o := range opts {
		o(n)
	}
	if v, ok := n.Attrs["value"]; ok {
		n.value = v
	}
	_, checked := n.Attrs["checked"]
	_, selected := n.Attrs["selected"]
	n.checked = checked || selected
	return n
}

func Attr(k, v string) Opt { return func(n *Node) { n.Attrs[k] = v } }

func ID(id string) Opt { return Attr("id", id) }

func Class(c string) Opt { return Attr("class", c) }

func Text(s string) Opt { return func(n *Node) { n.OwnText = s } }

func Hidden() Opt { return func(n *Node) { n.Hidden = true } }

func ClickErr(err error) Opt { return func(n *Node) { n.ClickErr = err } }

func FillErr(err error) Opt { return func(n *Node) { n.FillErr = err } }

func OnClick(fn func(p *Page, n *Node)) Opt { return func(n *Node) { n.OnClick = fn } }

func Kids(children ...*Node) Opt {
	return func(n *Node) {
		for _, c := range children {
			n.Append(c)
		}
	}
}

func (n *Node) Append(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
}

func (n *Node) Remove() {
	if n.parent == nil {
		return
	}
	kids := n.parent.children
	for i, c := range kids {
		if c == n {
			n.parent.children = append(kids[:i:i], kids[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *Node) ReplaceChildren(children ...*Node) {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	for _, c := range children {
		n.Append(c)
	}
}

func (n *Node) Value() string { return n.value }
func (n *Node) SetValue(v string) { n.value = v }
func (n *Node) Checked() bool { return n.checked }
func (n *Node) Files() []string { return n.files }
func (n *Node) Clicks() int { return n.clicks }
func (n *Node) Scrolled() int { return n.scrolled }

func (n *Node) attr(name string) (string, bool) {
	if name == "value" {
		return n.value, n.value != "" || n.Attrs["value"] != ""
	}
	v, ok := n.Attrs[name]
	return v, ok
}

func (n *Node) visible() bool {
	for p := n; p != nil; p = p.parent {
		if p.Hidden {
			return false
		}
	}
	return true
}

// FullText is the whitespace-joined text of the subtree.
func (n *Node) FullText() string {
	var parts []string
	var walk func(*Node)
	walk = func(x *Node) {
		if t := strings.TrimSpace(x.OwnText); t != "" {
			parts = append(parts, t)
		}
		for _, c := range x.children {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func (n *Node) descendants() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(x *Node) {
		for _, c := range x.children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

func (n *Node) query(sel string) []*Node {
	sels := parseSelector(sel)
	var out []*Node
	for _, d := range n.descendants() {
		for _, s := range sels {
			if s.matches(d) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

func (n *Node) render(sb *strings.Builder) {
	sb.WriteString("<" + n.Tag)
	for k, v := range n.Attrs {
		sb.WriteString(" " + k + `="` + v + `"`)
	}
	sb.WriteString(">")
	sb.WriteString(n.OwnText)
	for _, c := range n.children {
		c.render(sb)
	}
	sb.WriteString("</" + n.Tag + ">")
}
