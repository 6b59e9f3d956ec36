package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/listingpress/config"
	"github.com/ysmood/gson"
)

// BrowserEngine drives a stealth-patched headless Chromium against a
// persisted profile. It is the last and slowest strategy.
//
// Only one Fetch runs at a time: Chromium refuses a second instance on the
// same user-data directory.
type BrowserEngine struct {
	mu         sync.Mutex
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
}

// NewBrowserEngine creates a BrowserEngine. No process is started until
// the first Fetch.
func NewBrowserEngine(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) *BrowserEngine {
	return &BrowserEngine{browserCfg: browserCfg, scraperCfg: scraperCfg}
}

func (e *BrowserEngine) Name() string { return "browser" }

func (e *BrowserEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	browser, release, err := Launch(ctx, e.browserCfg, e.browserCfg.ProfileDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), err)
	}
	defer release()

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("%s: create page: %w", e.Name(), err)
	}
	defer func() { _ = page.Close() }()

	router := blockTrackers(page)
	defer func() { _ = router.Stop() }()

	// ── 1. Identity ───────────────────────────────────────────────────
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      e.scraperCfg.UserAgent,
		AcceptLanguage: "en-US,en;q=0.9",
	}); err != nil {
		return nil, fmt.Errorf("%s: set user agent: %w", e.Name(), err)
	}
	if len(req.Headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(req.Headers),
		}.Call(page)
	}

	// ── 2. Navigate ───────────────────────────────────────────────────
	navCtx, navCancel := context.WithTimeout(ctx, e.scraperCfg.NavigationTimeout)
	navErr := page.Context(navCtx).Navigate(req.URL)
	navCancel()
	if navErr != nil {
		return nil, fmt.Errorf("%s: navigate: %w", e.Name(), navErr)
	}

	// ── 3. Wait for the listing heading ───────────────────────────────
	// A missing heading usually means a challenge page is still showing.
	// The HTML is taken anyway so the extractor can classify it.
	if err := waitForElement(ctx, page, "h1", e.scraperCfg.HeadingWait); err != nil {
		slog.Warn("browser: heading did not appear", "url", req.URL, "error", err)
	}

	// ── 4. Trigger lazy images ────────────────────────────────────────
	if _, err := page.Eval(`() => window.scrollBy(0, 800)`); err != nil {
		slog.Debug("browser: scroll failed", "error", err)
	}
	if err := sleepCtx(ctx, e.scraperCfg.SettleDelay); err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), err)
	}
	if err := waitForElement(ctx, page, "img", e.scraperCfg.ImageWait); err != nil {
		slog.Debug("browser: no image appeared", "url", req.URL, "error", err)
	}

	// ── 5. Snapshot ───────────────────────────────────────────────────
	rawHTML, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%s: read html: %w", e.Name(), err)
	}

	finalURL := req.URL
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &FetchResult{
		Body:        []byte(rawHTML),
		ContentType: "text/html; charset=utf-8",
		StatusCode:  200,
		FinalURL:    finalURL,
		EngineName:  e.Name(),
	}, nil
}

// waitForElement waits up to d for selector to match.
func waitForElement(ctx context.Context, page *rod.Page, selector string, d time.Duration) error {
	wctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	_, err := page.Context(wctx).Element(selector)
	return err
}

// sleepCtx pauses for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		if k == "User-Agent" {
			continue
		}
		m[k] = gson.New(v)
	}
	return m
}
