package rod

import (
	"context"
	"fmt"
	"time"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultSlowMotion = 0
	defaultTimeout    = 10 * time.Second
)

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *PageAdapter
	timeout  time.Duration
	closed   bool

	// keepProfile is set for a caller-provided user data dir, which Cleanup would delete.
	keepProfile bool
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	// UserDataDir keeps cookies between runs so a manual login survives restarts.
	UserDataDir string
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
		NoSandbox:  false,
		DevTools:   false,
	}
}

// NewBrowserAdapter launches Chrome and opens one stealth page. Any failure here
// means there is no session to work with, so it is reported as fatal.
func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	l := launcher.New().
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", "1366,900")
	if cfg.UserDataDir != "" {
		l = l.UserDataDir(cfg.UserDataDir)
	}

	url, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, entity.Fatal(fmt.Errorf("failed to launch browser: %w", err))
	}

	browser := rod.New().
		Context(ctx).
		ControlURL(url).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, entity.Fatal(fmt.Errorf("failed to connect to browser: %w", err))
	}

	page, err := stealth.Page(browser)
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, entity.Fatal(fmt.Errorf("failed to open stealth page: %w", err))
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     newPageAdapter(page, cfg.Timeout),
		timeout:  cfg.Timeout,

		keepProfile: cfg.UserDataDir != "",
	}, nil
}

func (b *BrowserAdapter) Page() output.PagePort {
	return b.page
}

func (b *BrowserAdapter) IsReady() bool {
	return !b.closed && b.browser != nil && b.page != nil
}

func (b *BrowserAdapter) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		if !b.keepProfile {
			b.launcher.Cleanup()
		}
	}
}
