package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"time"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.PagePort = (*PageAdapter)(nil)

const maxScreenshotWidth = 1024

type PageAdapter struct {
	page    *rod.Page
	timeout time.Duration
}

func newPageAdapter(page *rod.Page, timeout time.Duration) *PageAdapter {
	return &PageAdapter{page: page, timeout: timeout}
}

func (p *PageAdapter) QueryAll(ctx context.Context, selector string) ([]output.Element, error) {
	return queryAll(ctx, selector, p.timeout, func(css string) (rod.Elements, error) {
		return p.page.Context(ctx).Elements(css)
	})
}

func (p *PageAdapter) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.Timeout(3 * p.timeout).WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %w", err)
	}
	_ = page.WaitIdle(5 * time.Second)
	return nil
}

func (p *PageAdapter) CurrentURL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *PageAdapter) MovePointer(ctx context.Context, to entity.Point) error {
	return p.page.Context(ctx).Mouse.MoveTo(proto.Point{X: to.X, Y: to.Y})
}

func (p *PageAdapter) Wheel(ctx context.Context, dx, dy float64) error {
	return p.page.Context(ctx).Mouse.Scroll(dx, dy, 1)
}

func (p *PageAdapter) HTML(ctx context.Context) (string, error) {
	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (p *PageAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	imgBytes, err := p.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > maxScreenshotWidth {
		img = imaging.Resize(img, maxScreenshotWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}
