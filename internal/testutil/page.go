package testutil

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
)

var (
	_ output.PagePort = (*Page)(nil)
	_ output.Element  = (*Element)(nil)
)

var ErrNotInteractable = errors.New("element is not interactable")

// Page is an in-memory PagePort over a Node tree rooted at <body>.
type Page struct {
	mu sync.Mutex

	Body      *Node
	URL       string
	QueryErrs map[string]error
	// OnNavigate lets a test swap the document when a URL is opened.
	OnNavigate func(p *Page, url string)

	navigations []string
	moves       []entity.Point
	wheel       float64
	shots       int
}

func NewPage(children ...*Node) *Page {
	return &Page{
		Body:      E("body", Kids(children...)),
		URL:       "about:blank",
		QueryErrs: make(map[string]error),
	}
}

func (p *Page) wrap(nodes []*Node) []output.Element {
	out := make([]output.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Element{page: p, node: n})
	}
	return out
}

func (p *Page) query(root *Node, sel string) ([]output.Element, error) {
	if err := p.QueryErrs[sel]; err != nil {
		return nil, err
	}
	return p.wrap(root.query(sel)), nil
}

func (p *Page) QueryAll(ctx context.Context, selector string) ([]output.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.query(p.Body, selector)
}

// Find returns the first node matching selector, or nil.
func (p *Page) Find(selector string) *Node {
	nodes := p.Body.query(selector)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.navigations = append(p.navigations, url)
	p.URL = url
	p.mu.Unlock()
	if p.OnNavigate != nil {
		p.OnNavigate(p, url)
	}
	return nil
}

func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

func (p *Page) CurrentURL() string { return p.URL }

func (p *Page) MovePointer(ctx context.Context, to entity.Point) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moves = append(p.moves, to)
	return nil
}

func (p *Page) Moves() []entity.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.Point(nil), p.moves...)
}

func (p *Page) Wheel(ctx context.Context, dx, dy float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wheel += dy
	return nil
}

func (p *Page) Scrolled() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wheel
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	var sb strings.Builder
	sb.WriteString("<html>")
	p.Body.render(&sb)
	sb.WriteString("</html>")
	return sb.String(), nil
}

func (p *Page) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	p.mu.Lock()
	p.shots++
	p.mu.Unlock()
	return &entity.Screenshot{Data: []byte{0xff, 0xd8, 0xff, 0xd9}, Format: "jpeg", Width: 1, Height: 1}, nil
}

func (p *Page) Screenshots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shots
}

// Element wraps a Node.
type Element struct {
	page *Page
	node *Node
}

func (e *Element) Node() *Node { return e.node }

func (e *Element) QueryAll(ctx context.Context, selector string) ([]output.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.page.query(e.node, selector)
}

func (e *Element) Visible(ctx context.Context) (bool, error) {
	return e.node.visible(), nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.node.FullText(), nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.node.Attrs[name]
	return v, ok, nil
}

func (e *Element) Value(ctx context.Context) (string, error) {
	if e.node.Tag == "select" {
		for _, o := range e.node.query("option") {
			if o.checked {
				if v, ok := o.Attrs["value"]; ok {
					return v, nil
				}
				return o.FullText(), nil
			}
		}
		return "", nil
	}
	return e.node.value, nil
}

func (e *Element) Checked(ctx context.Context) (bool, error) {
	return e.node.checked, nil
}

func (e *Element) Box(ctx context.Context) (entity.Box, error) {
	idx := 0
	for i, d := range e.page.Body.descendants() {
		if d == e.node {
			idx = i
			break
		}
	}
	return entity.Box{X: 20, Y: float64(20 + idx*24), Width: 120, Height: 20}, nil
}

func (e *Element) interactable() error {
	if !e.node.visible() {
		return ErrNotInteractable
	}
	return nil
}

func (e *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.interactable(); err != nil {
		return err
	}
	if e.node.ClickErr != nil {
		return e.node.ClickErr
	}
	e.node.clicks++

	if e.node.Tag == "label" {
		if target := e.labelTarget(); target != nil {
			e.page.check(target)
		}
	}
	if e.node.Tag == "input" && e.node.Attrs["type"] == "radio" {
		e.page.check(e.node)
	}
	if e.node.OnClick != nil {
		e.node.OnClick(e.page, e.node)
	}
	return nil
}

func (e *Element) labelTarget() *Node {
	if id := e.node.Attrs["for"]; id != "" {
		if nodes := e.page.Body.query(fmt.Sprintf("[id=%q]", id)); len(nodes) > 0 {
			return nodes[0]
		}
	}
	if nodes := e.node.query("input"); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

func (p *Page) check(n *Node) {
	if name := n.Attrs["name"]; name != "" {
		for _, other := range p.Body.query(fmt.Sprintf("input[name=%q]", name)) {
			other.checked = false
		}
	}
	n.checked = true
}

func (e *Element) Focus(ctx context.Context) error {
	return e.interactable()
}

func (e *Element) Fill(ctx context.Context, value string) error {
	if err := e.interactable(); err != nil {
		return err
	}
	if e.node.FillErr != nil {
		return e.node.FillErr
	}
	if e.node.Tag != "input" && e.node.Tag != "textarea" {
		return fmt.Errorf("cannot fill <%s>", e.node.Tag)
	}
	e.node.value = value
	return nil
}

func (e *Element) TypeRune(ctx context.Context, r rune) error {
	if err := e.interactable(); err != nil {
		return err
	}
	e.node.value += string(r)
	return nil
}

func (e *Element) Backspace(ctx context.Context) error {
	v := []rune(e.node.value)
	if len(v) > 0 {
		e.node.value = string(v[:len(v)-1])
	}
	return nil
}

func (e *Element) SelectOption(ctx context.Context, text string) error {
	if e.node.Tag != "select" {
		return fmt.Errorf("cannot select on <%s>", e.node.Tag)
	}
	re := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(text) + `\s*$`)
	options := e.node.query("option")
	for _, o := range options {
		if re.MatchString(o.FullText()) {
			for _, other := range options {
				other.checked = false
			}
			o.checked = true
			return nil
		}
	}
	return fmt.Errorf("option %q: %w", text, entity.ErrNotFound)
}

func (e *Element) SetFiles(ctx context.Context, paths []string) error {
	if e.node.Tag != "input" || e.node.Attrs["type"] != "file" {
		return fmt.Errorf("cannot set files on <%s>", e.node.Tag)
	}
	e.node.files = append([]string(nil), paths...)
	return nil
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	return nil
}

func (e *Element) ScrollBy(ctx context.Context, fraction float64) error {
	e.node.scrolled++
	return nil
}
