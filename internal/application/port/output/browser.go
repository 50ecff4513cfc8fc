package output

import (
	"context"

	"smart-apply/internal/domain/entity"
)

// Scope is a search root: the whole page or a narrower element.
type Scope interface {
	QueryAll(ctx context.Context, selector string) ([]Element, error)
}

type Element interface {
	Scope

	Visible(ctx context.Context) (bool, error)
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, bool, error)
	Value(ctx context.Context) (string, error)
	Checked(ctx context.Context) (bool, error)
	Box(ctx context.Context) (entity.Box, error)

	Click(ctx context.Context) error
	Focus(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	TypeRune(ctx context.Context, r rune) error
	Backspace(ctx context.Context) error
	SelectOption(ctx context.Context, text string) error
	SetFiles(ctx context.Context, paths []string) error
	ScrollIntoView(ctx context.Context) error
	ScrollBy(ctx context.Context, fraction float64) error
}

type PagePort interface {
	Scope

	Navigate(ctx context.Context, url string) error
	CurrentURL() string

	MovePointer(ctx context.Context, to entity.Point) error
	Wheel(ctx context.Context, dx, dy float64) error

	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) (*entity.Screenshot, error)
}

type BrowserPort interface {
	Page() PagePort
	Close()
}
