package rod

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.Element = (*ElementAdapter)(nil)

type ElementAdapter struct {
	el      *rod.Element
	timeout time.Duration
}

func (e *ElementAdapter) on(ctx context.Context) *rod.Element {
	return e.el.Context(ctx).Timeout(e.timeout)
}

func (e *ElementAdapter) QueryAll(ctx context.Context, selector string) ([]output.Element, error) {
	return queryAll(ctx, selector, e.timeout, func(css string) (rod.Elements, error) {
		return e.el.Context(ctx).Elements(css)
	})
}

func (e *ElementAdapter) Visible(ctx context.Context) (bool, error) {
	return e.on(ctx).Visible()
}

func (e *ElementAdapter) Text(ctx context.Context) (string, error) {
	return e.on(ctx).Text()
}

func (e *ElementAdapter) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.on(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *ElementAdapter) Value(ctx context.Context) (string, error) {
	v, err := e.on(ctx).Property("value")
	if err != nil {
		return "", err
	}
	if v.Nil() {
		return "", nil
	}
	return v.Str(), nil
}

// Checked reads "checked", or "selected" for an <option>.
func (e *ElementAdapter) Checked(ctx context.Context) (bool, error) {
	v, err := e.on(ctx).Eval(`function () { return this.tagName === "OPTION" ? this.selected : this.checked }`)
	if err != nil {
		return false, err
	}
	return v.Value.Bool(), nil
}

func (e *ElementAdapter) Box(ctx context.Context) (entity.Box, error) {
	shape, err := e.on(ctx).Shape()
	if err != nil {
		return entity.Box{}, err
	}
	box := shape.Box()
	if box == nil {
		return entity.Box{}, fmt.Errorf("element has no layout box")
	}
	return entity.Box{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
}

func (e *ElementAdapter) Click(ctx context.Context) error {
	if err := e.on(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (e *ElementAdapter) Focus(ctx context.Context) error {
	return e.on(ctx).Focus()
}

func (e *ElementAdapter) Fill(ctx context.Context, value string) error {
	el := e.on(ctx)
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (e *ElementAdapter) TypeRune(ctx context.Context, r rune) error {
	return e.on(ctx).Input(string(r))
}

func (e *ElementAdapter) Backspace(ctx context.Context) error {
	return e.on(ctx).Type(input.Backspace)
}

// SelectOption picks the option whose visible text is exactly text, ignoring surrounding space.
func (e *ElementAdapter) SelectOption(ctx context.Context, text string) error {
	pattern := `^\s*` + regexp.QuoteMeta(strings.TrimSpace(text)) + `\s*$`
	if err := e.on(ctx).Select([]string{pattern}, true, rod.SelectorTypeRegex); err != nil {
		return fmt.Errorf("option %q: %w: %w", text, entity.ErrNotFound, err)
	}
	return nil
}

func (e *ElementAdapter) SetFiles(ctx context.Context, paths []string) error {
	return e.on(ctx).SetFiles(paths)
}

func (e *ElementAdapter) ScrollIntoView(ctx context.Context) error {
	return e.on(ctx).ScrollIntoView()
}

func (e *ElementAdapter) ScrollBy(ctx context.Context, fraction float64) error {
	_, err := e.on(ctx).Eval(`function (f) { this.scrollBy(0, this.scrollHeight * f) }`, fraction)
	return err
}
