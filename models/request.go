package models

import (
	"net/url"
	"strings"
)

// Article styles accepted by /api/generate.
const (
	ModeNote = "note" // professional, no emoji
	ModeXHS  = "xhs"  // Xiaohongshu style
)

// ListingHost is the only site listings are accepted from.
const ListingHost = "propertyguru.com.sg"

// IsListingURL reports whether rawURL is an absolute http(s) URL on the
// listing site.
func IsListingURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return strings.Contains(strings.ToLower(u.Host), ListingHost)
}

// GenerateRequest is the payload for POST /api/generate.
type GenerateRequest struct {
	// URL is the listing page. Required; must be a PropertyGuru URL.
	URL string `json:"url" binding:"required"`

	// Mode selects the article style: "note" (default) or "xhs".
	Mode string `json:"mode,omitempty" binding:"omitempty,oneof=note xhs"`
}

// Defaults applies default values to unset fields.
func (r *GenerateRequest) Defaults() {
	if r.Mode == "" {
		r.Mode = ModeNote
	}
}

// ScrapeRequest is the payload for POST /api/scrape.
type ScrapeRequest struct {
	URL string `json:"url" binding:"required"`
}

// PosterRequest is the payload for POST /api/generate-poster.
type PosterRequest struct {
	// HTML is the article body placed inside the poster.
	HTML string `json:"html" binding:"required"`

	// Title is shown in the poster header.
	Title string `json:"title"`
}
