package rod

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) *BrowserAdapter {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	cfg := DefaultConfig()
	cfg.Headless = true
	cfg.NoSandbox = true

	adapter, err := NewBrowserAdapter(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(adapter.Close)
	return adapter
}

func serve(t *testing.T, html string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, html)
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func first(t *testing.T, scope output.Scope, selector string) output.Element {
	t.Helper()
	els, err := scope.QueryAll(context.Background(), selector)
	require.NoError(t, err)
	require.NotEmpty(t, els, selector)
	return els[0]
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Headless)
	assert.Equal(t, defaultTimeout, cfg.Timeout)
	assert.False(t, cfg.NoSandbox, "Should be secure by default")
	assert.False(t, cfg.DevTools)
	assert.Empty(t, cfg.UserDataDir)
}

func TestBrowserAdapter_IsReady(t *testing.T) {
	adapter := newTestAdapter(t)

	assert.True(t, adapter.IsReady())
	assert.NotNil(t, adapter.Page())

	adapter.Close()
	assert.False(t, adapter.IsReady())
	adapter.Close()
}

func TestPageAdapter_Navigate(t *testing.T) {
	adapter := newTestAdapter(t)
	url := serve(t, BasicHTML)
	ctx := context.Background()

	page := adapter.Page()
	require.NoError(t, page.Navigate(ctx, url))
	assert.Equal(t, url+"/", page.CurrentURL())

	html, err := page.HTML(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "Hello World")
}

func TestPageAdapter_Navigate_CanceledContext(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, adapter.Page().Navigate(ctx, serve(t, BasicHTML)))
}

func TestPageAdapter_QueryAll_HasText(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	page := adapter.Page()
	require.NoError(t, page.Navigate(ctx, serve(t, ApplyFormHTML)))

	els, err := page.QueryAll(ctx, "button:has-text('next')")
	require.NoError(t, err)
	assert.Len(t, els, 2)

	visible := 0
	for _, el := range els {
		if ok, err := el.Visible(ctx); err == nil && ok {
			visible++
		}
	}
	assert.Equal(t, 1, visible)
}

func TestElementAdapter_FormControls(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	page := adapter.Page()
	require.NoError(t, page.Navigate(ctx, serve(t, ApplyFormHTML)))

	modal := first(t, page, ".jobs-easy-apply-content")

	email := first(t, modal, "#email")
	require.NoError(t, email.Fill(ctx, "dev@example.com"))
	v, err := email.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", v)

	require.NoError(t, email.TypeRune(ctx, 'x'))
	require.NoError(t, email.Backspace(ctx))
	v, _ = email.Value(ctx)
	assert.Equal(t, "dev@example.com", v)

	ctc := first(t, modal, "#ctc")
	v, _ = ctc.Value(ctx)
	assert.Equal(t, "12", v)

	label := first(t, modal, "label[for='r-yes']")
	require.NoError(t, label.Click(ctx))
	checked, err := first(t, modal, "#r-yes").Checked(ctx)
	require.NoError(t, err)
	assert.True(t, checked)

	lang := first(t, modal, "#lang")
	require.NoError(t, lang.SelectOption(ctx, "Professional working proficiency"))
	v, _ = lang.Value(ctx)
	assert.Equal(t, "Professional working proficiency", v)
	err = lang.SelectOption(ctx, "Professional")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	text, ok, err := first(t, modal, "button").Attribute(ctx, "aria-label")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Continue to next step", text)
	_, ok, err = email.Attribute(ctx, "aria-label")
	require.NoError(t, err)
	assert.False(t, ok)

	box, err := email.Box(ctx)
	require.NoError(t, err)
	assert.Greater(t, box.Width, 0.0)

	require.NoError(t, modal.ScrollBy(ctx, 0.5))
	require.NoError(t, page.MovePointer(ctx, entity.Point{X: 10, Y: 10}))
	require.NoError(t, page.Wheel(ctx, 0, 100))
}

func TestElementAdapter_SetFilesOnHiddenInput(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	page := adapter.Page()
	require.NoError(t, page.Navigate(ctx, serve(t, ApplyFormHTML)))

	file := first(t, page, "#resume")
	visible, err := file.Visible(ctx)
	require.NoError(t, err)
	assert.False(t, visible)

	path := t.TempDir() + "/resume.pdf"
	require.NoError(t, writeFile(path))
	assert.NoError(t, file.SetFiles(ctx, []string{path}))
}

func TestElementAdapter_Click(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	page := adapter.Page()
	require.NoError(t, page.Navigate(ctx, serve(t, InteractiveHTML)))

	require.NoError(t, first(t, page, "#btn").Click(ctx))
	text, err := first(t, page, "#result").Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Clicked!", text)
}

func TestPageAdapter_Screenshot(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	page := adapter.Page()
	require.NoError(t, page.Navigate(ctx, serve(t, BasicHTML)))

	shot, err := page.Screenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", shot.Format)
	assert.NotEmpty(t, shot.Data)
	assert.LessOrEqual(t, shot.Width, maxScreenshotWidth)
}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("%PDF-1.4\n%%EOF\n"), 0o644)
}
