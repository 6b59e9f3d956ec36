package scraper

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/listingpress/config"
	"github.com/use-agent/listingpress/engine"
	"github.com/use-agent/listingpress/extractor"
	"github.com/use-agent/listingpress/models"
)

// Fetcher walks a fixed chain of fetch strategies until one yields a
// listing with content. It never returns an error: exhausted chains
// degrade to a sentinel listing.
type Fetcher struct {
	attempts []engine.Engine
	fallback engine.Engine
	delay    time.Duration
}

// Result is a fetched listing plus the strategy that produced it.
type Result struct {
	Listing  models.Listing
	Engine   string
	Attempts int
}

// NewFetcher creates a Fetcher. attempts run in order with delay between
// them; fallback, when non-nil, runs last and its outcome is final.
func NewFetcher(attempts []engine.Engine, fallback engine.Engine, delay time.Duration) *Fetcher {
	return &Fetcher{attempts: attempts, fallback: fallback, delay: delay}
}

// New builds the production chain: four TLS identities, the
// challenge-aware client, then the headless browser.
func New(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) *Fetcher {
	var attempts []engine.Engine
	for _, id := range engine.DefaultIdentities() {
		attempts = append(attempts, engine.NewImpersonateEngine(id, scraperCfg.ImpersonateTimeout))
	}
	attempts = append(attempts, engine.NewChallengeEngine(scraperCfg.ChallengeTimeout, scraperCfg.ChallengeDelay))

	var fallback engine.Engine
	if scraperCfg.BrowserFallback {
		fallback = engine.NewBrowserEngine(browserCfg, scraperCfg)
	}
	return NewFetcher(attempts, fallback, scraperCfg.AttemptDelay)
}

// Fetch returns the best listing it could obtain for rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) models.Listing {
	return f.FetchResult(ctx, rawURL).Listing
}

// FetchResult is Fetch with the winning strategy attached.
func (f *Fetcher) FetchResult(ctx context.Context, rawURL string) Result {
	req := &engine.FetchRequest{URL: rawURL, Headers: engine.BrowserHeaders()}

	// last holds the most recent non-content listing so a chain without a
	// browser still reports blocked or empty instead of a render failure.
	var last *Result
	tried := 0

	for _, eng := range f.attempts {
		if tried > 0 {
			if err := sleepCtx(ctx, f.delay); err != nil {
				slog.Info("scraper: chain cancelled", "url", rawURL, "error", err)
				return f.exhausted(last, tried)
			}
		}
		tried++

		listing, ok := f.attempt(ctx, eng, req)
		if !ok {
			continue
		}
		if listing.Outcome() == models.OutcomeContent {
			slog.Info("scraper: listing fetched", "engine", eng.Name(), "url", rawURL, "attempts", tried)
			return Result{Listing: listing, Engine: eng.Name(), Attempts: tried}
		}
		slog.Warn("scraper: attempt yielded no listing",
			"engine", eng.Name(), "url", rawURL, "outcome", listing.Outcome())
		last = &Result{Listing: listing, Engine: eng.Name(), Attempts: tried}
	}

	if f.fallback == nil {
		return f.exhausted(last, tried)
	}

	if tried > 0 {
		if err := sleepCtx(ctx, f.delay); err != nil {
			return f.exhausted(last, tried)
		}
	}
	tried++

	slog.Info("scraper: falling back to browser", "url", rawURL)
	res, err := f.fallback.Fetch(ctx, req)
	if err != nil {
		slog.Error("scraper: browser fallback failed", "url", rawURL, "error", err)
		return Result{Listing: models.RenderFailedListing(), Engine: f.fallback.Name(), Attempts: tried}
	}
	listing, err := extractor.ExtractReader(bytes.NewReader(res.Body))
	if err != nil {
		slog.Error("scraper: browser html unparseable", "url", rawURL, "error", err)
		return Result{Listing: models.RenderFailedListing(), Engine: f.fallback.Name(), Attempts: tried}
	}
	slog.Info("scraper: browser fallback finished", "url", rawURL, "outcome", listing.Outcome())
	return Result{Listing: listing, Engine: f.fallback.Name(), Attempts: tried}
}

// attempt runs one HTTP strategy. ok is false on transport failure.
func (f *Fetcher) attempt(ctx context.Context, eng engine.Engine, req *engine.FetchRequest) (models.Listing, bool) {
	start := time.Now()
	res, err := eng.Fetch(ctx, req)
	if err != nil {
		slog.Warn("scraper: attempt failed",
			"engine", eng.Name(), "url", req.URL, "error", err, "elapsed", time.Since(start))
		return models.Listing{}, false
	}
	if !engine.IsHTML(res.ContentType) {
		slog.Warn("scraper: attempt failed",
			"engine", eng.Name(), "url", req.URL, "error", engine.ErrNotHTML, "contentType", res.ContentType)
		return models.Listing{}, false
	}
	listing, err := extractor.ExtractReader(bytes.NewReader(res.Body))
	if err != nil {
		slog.Warn("scraper: unparseable response", "engine", eng.Name(), "url", req.URL, "error", err)
		return models.Listing{}, false
	}
	return listing, true
}

func (f *Fetcher) exhausted(last *Result, tried int) Result {
	if last != nil {
		last.Attempts = tried
		return *last
	}
	return Result{Listing: models.RenderFailedListing(), Attempts: tried}
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
