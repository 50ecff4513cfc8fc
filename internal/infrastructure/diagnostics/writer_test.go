package diagnostics_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-apply/internal/domain/entity"
	"smart-apply/internal/infrastructure/diagnostics"
	"smart-apply/internal/infrastructure/logger"
	"smart-apply/internal/testutil"
)

func stuckPage() *testutil.Page {
	page := testutil.NewPage(
		testutil.E("script", testutil.Text("track()")),
		testutil.E("div", testutil.Attr("role", "dialog"), testutil.Kids(
			testutil.E("button", testutil.Attr("aria-label", "Dismiss")),
			testutil.E("button", testutil.Text("Save")),
		)),
	)
	page.URL = "https://www.linkedin.com/jobs/view/42/"
	return page
}

func TestCapture_WritesSnapshotFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "diagnostics")
	w := diagnostics.NewWriter(dir, testutil.NewClock(), logger.NewNop())
	page := stuckPage()

	path, err := w.Capture(context.Background(), page, "stuck", "buttons: 2")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stuck_1736154000.html"), path)

	snapshot, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(snapshot), `aria-label="Dismiss"`)
	assert.NotContains(t, string(snapshot), "track()")

	report, err := os.ReadFile(filepath.Join(dir, "stuck_1736154000.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "url: https://www.linkedin.com/jobs/view/42/")
	assert.Contains(t, string(report), "buttons: 2")
	assert.Contains(t, string(report), "controls (2):")
	assert.Contains(t, string(report), `"Dismiss"`)
	assert.Contains(t, string(report), `"Save"`)

	shot, err := os.ReadFile(filepath.Join(dir, "stuck_1736154000.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xd9}, shot)
	assert.Equal(t, 1, page.Screenshots())
}

func TestCapture_SanitizesName(t *testing.T) {
	dir := t.TempDir()
	w := diagnostics.NewWriter(dir, testutil.NewClock(), logger.NewNop())

	path, err := w.Capture(context.Background(), stuckPage(), "no jobs/../x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "no_jobs____x_1736154000.html"), path)
}

type brokenPage struct {
	*testutil.Page
	htmlErr error
	shotErr error
}

func (p *brokenPage) HTML(ctx context.Context) (string, error) {
	if p.htmlErr != nil {
		return "", p.htmlErr
	}
	return p.Page.HTML(ctx)
}

func (p *brokenPage) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if p.shotErr != nil {
		return nil, p.shotErr
	}
	return p.Page.Screenshot(ctx)
}

func TestCapture_ScreenshotFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	w := diagnostics.NewWriter(dir, testutil.NewClock(), logger.NewNop())
	page := &brokenPage{Page: stuckPage(), shotErr: errors.New("target closed")}

	path, err := w.Capture(context.Background(), page, "stuck")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.NoFileExists(t, filepath.Join(dir, "stuck_1736154000.jpg"))
}

func TestCapture_HTMLFailure(t *testing.T) {
	w := diagnostics.NewWriter(t.TempDir(), testutil.NewClock(), logger.NewNop())
	page := &brokenPage{Page: stuckPage(), htmlErr: errors.New("target closed")}

	_, err := w.Capture(context.Background(), page, "stuck")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target closed")
}
