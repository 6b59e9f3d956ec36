// Command listingscrape runs the listing fetch chain once and prints the
// extracted record as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/listingpress/config"
	"github.com/use-agent/listingpress/models"
	"github.com/use-agent/listingpress/scraper"
)

var (
	noBrowser = flag.Bool("no-browser", false, "Skip the headless browser fallback")
	timeout   = flag.Duration("timeout", 3*time.Minute, "Overall deadline for the fetch")
	verbose   = flag.Bool("v", false, "Debug logging on stderr")
)

type output struct {
	Outcome  models.Outcome `json:"outcome"`
	Engine   string         `json:"engine"`
	Attempts int            `json:"attempts"`
	Listing  models.Listing `json:"listing"`
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: listingscrape [flags] <listing-url>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	rawURL := flag.Arg(0)
	if !models.IsListingURL(rawURL) {
		fmt.Fprintf(os.Stderr, "not a PropertyGuru URL: %s\n", rawURL)
		os.Exit(2)
	}

	cfg := config.Load()
	if *noBrowser {
		cfg.Scraper.BrowserFallback = false
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	res := scraper.New(cfg.Browser, cfg.Scraper).FetchResult(ctx, rawURL)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(output{
		Outcome:  res.Listing.Outcome(),
		Engine:   res.Engine,
		Attempts: res.Attempts,
		Listing:  res.Listing,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}

	if res.Listing.Outcome() != models.OutcomeContent {
		os.Exit(1)
	}
}
