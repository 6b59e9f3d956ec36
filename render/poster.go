package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/listingpress/config"
	"github.com/use-agent/listingpress/engine"
	"github.com/use-agent/listingpress/models"
)

// PosterWidth is the CSS width of the poster in pixels.
const PosterWidth = 375

var posterTmpl = template.Must(template.New("poster").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
@import url('https://fonts.googleapis.com/css2?family=Noto+Sans+SC:wght@400;700&display=swap');
body { margin: 0; padding: 0; background-color: #f8fafc; font-family: 'Noto Sans SC', sans-serif; color: #1e293b; }
.poster { width: {{.Width}}px; background-color: white; margin: 0 auto; box-shadow: 0 10px 25px -5px rgba(0, 0, 0, 0.1); }
.header { padding: 40px 24px; background: linear-gradient(135deg, #4f46e5 0%, #7c3aed 100%); color: white; text-align: center; }
.header h1 { margin: 0; font-size: 24px; font-weight: 700; line-height: 1.3; }
.content { padding: 24px; line-height: 1.6; font-size: 15px; }
.content h1, .content h2 { color: #4f46e5; font-size: 20px; border-left: 4px solid #4f46e5; padding-left: 12px; margin-top: 24px; }
.content p { margin-bottom: 16px; color: #475569; }
.content ul { padding-left: 20px; color: #475569; }
.content li { margin-bottom: 8px; }
.content img { max-width: 100%; border-radius: 12px; margin-bottom: 16px; display: block; }
.footer { padding: 30px 24px; background-color: #f1f5f9; text-align: center; border-top: 1px solid #e2e8f0; }
.footer p { margin: 0; font-size: 13px; color: #94a3b8; }
.footer-logo { font-weight: 700; color: #4f46e5; font-size: 18px; margin-bottom: 8px; }
.qr { width: 80px; height: 80px; background: #ddd; margin: 20px auto 0; border-radius: 4px; display: flex; align-items: center; justify-content: center; font-size: 10px; color: #666; }
</style>
</head>
<body>
<div class="poster">
  <div class="header"><h1>{{.Title}}</h1></div>
  <div class="content">{{.Body}}</div>
  <div class="footer">
    <div class="footer-logo">PropertyGuru to WeChat</div>
    <p>扫描或长按识别二维码关注更多优质房源</p>
    <div class="qr">QR CODE</div>
  </div>
</div>
</body>
</html>`))

// PosterHTML renders the poster page. title is escaped; body is the
// editor's article HTML and is inserted as-is.
func PosterHTML(title, body string) (string, error) {
	var buf bytes.Buffer
	err := posterTmpl.Execute(&buf, struct {
		Width int
		Title string
		Body  template.HTML
	}{PosterWidth, title, template.HTML(body)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PosterRenderer screenshots poster pages with a throwaway browser.
type PosterRenderer struct {
	mu     sync.Mutex
	cfg    config.BrowserConfig
	settle time.Duration
}

// NewPosterRenderer creates a renderer. settle is how long remote fonts
// and images get to load before the screenshot.
func NewPosterRenderer(cfg config.BrowserConfig, settle time.Duration) *PosterRenderer {
	return &PosterRenderer{cfg: cfg, settle: settle}
}

// Render returns the poster as a PNG.
func (r *PosterRenderer) Render(ctx context.Context, title, body string) ([]byte, error) {
	doc, err := PosterHTML(title, body)
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeRenderFailed, "failed to build poster", err)
	}

	// One Chromium at a time keeps memory bounded on small hosts.
	r.mu.Lock()
	defer r.mu.Unlock()

	browser, release, err := engine.Launch(ctx, r.cfg, "")
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeRenderFailed, "failed to launch browser", err)
	}
	defer release()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeRenderFailed, "failed to open page", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             PosterWidth,
		Height:            800,
		DeviceScaleFactor: 2,
	}); err != nil {
		return nil, models.NewAPIError(models.ErrCodeRenderFailed, "failed to set viewport", err)
	}
	if err := page.SetDocumentContent(doc); err != nil {
		return nil, models.NewAPIError(models.ErrCodeRenderFailed, "failed to load poster", err)
	}

	select {
	case <-ctx.Done():
		return nil, models.NewAPIError(models.ErrCodeRenderFailed, "poster cancelled", ctx.Err())
	case <-time.After(r.settle):
	}

	el, err := page.Element(".poster")
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeRenderFailed, "poster element not found", err)
	}
	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeRenderFailed, fmt.Sprintf("screenshot failed for %q", title), err)
	}
	return png, nil
}
