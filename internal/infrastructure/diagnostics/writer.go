package diagnostics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/infrastructure/browser/rodwrapper"
	"smart-apply/internal/usecase/timing"
)

var _ output.DiagnosticsPort = (*Writer)(nil)

const outlineLimit = 40

// Writer saves dead-end snapshots for manual triage: cleaned HTML, a text outline and a screenshot.
type Writer struct {
	dir    string
	clock  timing.Clock
	clean  *rodwrapper.CleanConfig
	logger output.LoggerPort
}

func NewWriter(dir string, clock timing.Clock, logger output.LoggerPort) *Writer {
	if clock == nil {
		clock = timing.RealClock()
	}
	return &Writer{
		dir:    dir,
		clock:  clock,
		clean:  &rodwrapper.DefaultCleanConfig,
		logger: logger,
	}
}

// Capture returns the path of the HTML file. Only a failure to write that file is an error.
func (w *Writer) Capture(ctx context.Context, page output.PagePort, name string, details ...string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("diagnostics dir: %w", err)
	}
	base := filepath.Join(w.dir, fmt.Sprintf("%s_%d", sanitize(name), w.clock.Now().Unix()))

	raw, err := page.HTML(ctx)
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}

	snapshot, err := rodwrapper.CleanSnapshot(raw, w.clean)
	if err != nil {
		w.logger.Warn("Snapshot cleanup failed, saving raw html", "error", err)
		snapshot = raw
	}

	htmlPath := base + ".html"
	if err := os.WriteFile(htmlPath, []byte(snapshot), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	if err := os.WriteFile(base+".txt", []byte(w.report(page, raw, details)), 0o644); err != nil {
		w.logger.Warn("Failed to write diagnostics report", "path", base+".txt", "error", err)
	}

	if shot, err := page.Screenshot(ctx); err != nil {
		w.logger.Warn("Diagnostics screenshot failed", "error", err)
	} else if err := os.WriteFile(base+"."+extension(shot.Format), shot.Data, 0o644); err != nil {
		w.logger.Warn("Failed to write screenshot", "error", err)
	}

	w.logger.Info("Diagnostics saved", "name", name, "path", htmlPath)
	return htmlPath, nil
}

func (w *Writer) report(page output.PagePort, raw string, details []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "url: %s\n", page.CurrentURL())
	fmt.Fprintf(&sb, "captured: %s\n", w.clock.Now().Format("2006-01-02 15:04:05"))

	if len(details) > 0 {
		sb.WriteString("\n")
		for _, d := range details {
			sb.WriteString(d)
			sb.WriteString("\n")
		}
	}

	controls, err := rodwrapper.Outline(raw, outlineLimit)
	if err != nil {
		fmt.Fprintf(&sb, "\noutline unavailable: %v\n", err)
		return sb.String()
	}
	fmt.Fprintf(&sb, "\ncontrols (%d):\n", len(controls))
	for _, c := range controls {
		sb.WriteString("  ")
		sb.WriteString(c.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func extension(format string) string {
	switch format {
	case "jpeg", "jpg", "":
		return "jpg"
	}
	return format
}

func sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "snapshot"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
