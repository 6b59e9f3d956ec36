package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	LLM       LLMConfig
	Media     MediaConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8000
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser used for the scrape fallback and
// for poster rendering.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is passed to Chromium's --proxy-server.
	Proxy string

	// ProfileDir is the persisted user-data directory reused across scrape
	// fallbacks so cookies and fingerprint survive between calls.
	ProfileDir string // default: $TMPDIR/pg_scraper_user_data_v2
}

// ScraperConfig controls the fallback chain.
type ScraperConfig struct {
	// AttemptDelay is the fixed pause between two strategies.
	AttemptDelay time.Duration // default: 2s

	// ImpersonateTimeout bounds each TLS-impersonation attempt.
	ImpersonateTimeout time.Duration // default: 20s

	// ChallengeTimeout bounds the challenge-aware client attempt,
	// including its retries.
	ChallengeTimeout time.Duration // default: 15s

	// ChallengeDelay is the wait before re-issuing a challenged request.
	ChallengeDelay time.Duration // default: 2s

	// NavigationTimeout is the max time for the browser navigation alone.
	NavigationTimeout time.Duration // default: 60s

	// HeadingWait is how long the browser waits for the listing <h1>.
	HeadingWait time.Duration // default: 30s

	// ImageWait is how long the browser waits for the first <img>.
	ImageWait time.Duration // default: 10s

	// SettleDelay is the pause after scrolling for lazy content.
	SettleDelay time.Duration // default: 2s

	// BrowserFallback toggles the headless browser as the last strategy.
	BrowserFallback bool // default: true

	// UserAgent is the browser fallback's user agent.
	UserAgent string
}

// LLMConfig controls article generation.
type LLMConfig struct {
	// APIKey is the Gemini API key. Empty means placeholder articles.
	APIKey string

	// BaseURL is an OpenAI-compatible endpoint.
	BaseURL string // default: Gemini's OpenAI-compatible endpoint

	// Model is the chat model name.
	Model string // default: "gemini-2.5-flash"

	// Timeout bounds one generation call.
	Timeout time.Duration // default: 60s
}

// MediaConfig controls image proxying and embedding.
type MediaConfig struct {
	// EmbedImages is how many listing images are embedded into an article.
	EmbedImages int // default: 5

	// ImageTimeout bounds one embedded-image download.
	ImageTimeout time.Duration // default: 10s

	// ProxyTimeout bounds one /api/proxy-image download.
	ProxyTimeout time.Duration // default: 15s

	// CacheEntries is the proxied image cache capacity.
	CacheEntries int // default: 256

	// CacheTTL is how long a proxied image stays cached.
	CacheTTL time.Duration // default: 1h
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per client IP.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultUserAgent is the desktop Chrome user agent used by the browser.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36"

// DefaultLLMBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultLLMBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: envOr("LISTINGPRESS_HOST", "0.0.0.0"),
			Port: envIntOr("LISTINGPRESS_PORT", 8000),
			Mode: envOr("LISTINGPRESS_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("LISTINGPRESS_HEADLESS", true),
			NoSandbox:  envBoolOr("LISTINGPRESS_NO_SANDBOX", true),
			BrowserBin: os.Getenv("LISTINGPRESS_BROWSER_BIN"),
			Proxy:      os.Getenv("LISTINGPRESS_PROXY"),
			ProfileDir: envOr("LISTINGPRESS_PROFILE_DIR", filepath.Join(os.TempDir(), "pg_scraper_user_data_v2")),
		},
		Scraper: ScraperConfig{
			AttemptDelay:       envDurationOr("LISTINGPRESS_ATTEMPT_DELAY", 2*time.Second),
			ImpersonateTimeout: envDurationOr("LISTINGPRESS_IMPERSONATE_TIMEOUT", 20*time.Second),
			ChallengeTimeout:   envDurationOr("LISTINGPRESS_CHALLENGE_TIMEOUT", 15*time.Second),
			ChallengeDelay:     envDurationOr("LISTINGPRESS_CHALLENGE_DELAY", 2*time.Second),
			NavigationTimeout:  envDurationOr("LISTINGPRESS_NAV_TIMEOUT", 60*time.Second),
			HeadingWait:        envDurationOr("LISTINGPRESS_HEADING_WAIT", 30*time.Second),
			ImageWait:          envDurationOr("LISTINGPRESS_IMAGE_WAIT", 10*time.Second),
			SettleDelay:        envDurationOr("LISTINGPRESS_SETTLE_DELAY", 2*time.Second),
			BrowserFallback:    envBoolOr("LISTINGPRESS_BROWSER_FALLBACK", true),
			UserAgent:          envOr("LISTINGPRESS_USER_AGENT", DefaultUserAgent),
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			BaseURL: envOr("LISTINGPRESS_LLM_BASE_URL", DefaultLLMBaseURL),
			Model:   envOr("LISTINGPRESS_LLM_MODEL", "gemini-2.5-flash"),
			Timeout: envDurationOr("LISTINGPRESS_LLM_TIMEOUT", 60*time.Second),
		},
		Media: MediaConfig{
			EmbedImages:  envIntOr("LISTINGPRESS_EMBED_IMAGES", 5),
			ImageTimeout: envDurationOr("LISTINGPRESS_IMAGE_TIMEOUT", 10*time.Second),
			ProxyTimeout: envDurationOr("LISTINGPRESS_PROXY_TIMEOUT", 15*time.Second),
			CacheEntries: envIntOr("LISTINGPRESS_IMAGE_CACHE", 256),
			CacheTTL:     envDurationOr("LISTINGPRESS_IMAGE_CACHE_TTL", time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("LISTINGPRESS_RATE_RPS", 2.0),
			Burst:             envIntOr("LISTINGPRESS_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("LISTINGPRESS_LOG_LEVEL", "info"),
			Format: envOr("LISTINGPRESS_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}
