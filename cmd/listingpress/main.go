package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/listingpress/api"
	"github.com/use-agent/listingpress/cache"
	"github.com/use-agent/listingpress/config"
	"github.com/use-agent/listingpress/llm"
	"github.com/use-agent/listingpress/media"
	"github.com/use-agent/listingpress/render"
	"github.com/use-agent/listingpress/scraper"
)

// posterSettle gives webfonts and images time to land before the screenshot.
const posterSettle = 2 * time.Second

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("listingpress starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browserFallback", cfg.Scraper.BrowserFallback,
		"llmConfigured", cfg.LLM.APIKey != "",
	)

	stop := make(chan struct{})

	// ── 3. Listing fetch chain ──────────────────────────────────────
	listings := scraper.New(cfg.Browser, cfg.Scraper)

	// ── 4. Image fetchers (shared cache) ────────────────────────────
	images := cache.New[media.Image](cfg.Media.CacheEntries, cfg.Media.CacheTTL, stop)
	embedder := media.New(cfg.Media.ImageTimeout, images)
	proxy := media.New(cfg.Media.ProxyTimeout, images)

	// ── 5. Article writer and poster renderer ───────────────────────
	writer := llm.NewWriter(llm.NewClient(cfg.LLM))
	if cfg.LLM.APIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, /api/generate will return placeholder articles")
	}
	posters := render.NewPosterRenderer(cfg.Browser, posterSettle)

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(api.Deps{
		Listings: listings,
		Writer:   writer,
		Images:   embedder,
		Proxy:    proxy,
		Posters:  posters,
		Markdown: render.NewMarkdownConverter(),
	}, cfg, startTime, stop)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	close(stop)
	slog.Info("listingpress stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
