package engine

import (
	"context"
	"errors"
	"strings"
)

// Engine is the interface that every fetch strategy implements.
type Engine interface {
	// Name returns the strategy identifier (e.g. "chrome120", "challenge", "browser").
	Name() string

	// Fetch retrieves the page for the given request. A non-200 response is
	// reported as an error wrapping ErrStatus.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL string

	// Headers are sent in addition to the engine's own User-Agent.
	Headers map[string]string
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	// Body is the decoded response body.
	Body        []byte
	ContentType string
	StatusCode  int
	FinalURL    string
	EngineName  string
}

var (
	// ErrStatus is returned when the origin answers with anything but 200.
	ErrStatus = errors.New("unexpected status")

	// ErrNotHTML is returned when a page fetch yields a non-HTML body.
	ErrNotHTML = errors.New("response is not html")

	// ErrBodyTooLarge is returned when a response exceeds maxBody.
	ErrBodyTooLarge = errors.New("response body too large")
)

// maxBody caps every response read into memory.
const maxBody = 10 << 20

// BrowserHeaders returns the navigation headers a desktop browser arriving
// from a search result would send. User-Agent is left to the engine.
func BrowserHeaders() map[string]string {
	return map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Referer":                   "https://www.google.com/",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
	}
}

// IsHTML reports whether a Content-Type header looks like HTML. An empty
// header is accepted; some origins omit it on challenge pages.
func IsHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
